// Package auth provides minimal authentication helpers.
//
// It intentionally avoids policy decisions and storage concerns.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

const (
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"

	DefaultAdminUsername = "movexa_admin"
)

// Validator validates a username/password pair.
type Validator interface {
	Validate(username, password string) error
}

// Credentials is a single shared admin credential pair. An empty password
// denies every request, so an unconfigured deployment fails closed.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Validate(username, password string) error {
	if c.Password == "" {
		return ErrUnauthorized
	}
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
	if !userOK || !passOK {
		return ErrUnauthorized
	}
	return nil
}

// FromEnv builds admin credentials from ADMIN_USERNAME/ADMIN_PASSWORD.
func FromEnv() Credentials {
	username := os.Getenv(EnvAdminUsername)
	if username == "" {
		username = DefaultAdminUsername
	}
	return Credentials{
		Username: username,
		Password: os.Getenv(EnvAdminPassword),
	}
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(username, password string) error

func (f FuncValidator) Validate(username, password string) error {
	return f(username, password)
}

// Basic gates a route group behind HTTP basic authentication, answering
// 401 with the challenge header the original admin console used.
func Basic(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || v.Validate(username, password) != nil {
			c.Header("WWW-Authenticate", `Basic realm="Admin Login"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
