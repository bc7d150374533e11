package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		username string
		password string
		wantErr  error
	}{
		{name: "empty password denies everything", creds: Credentials{Username: "admin"}, username: "admin", password: "", wantErr: ErrUnauthorized},
		{name: "wrong password denied", creds: Credentials{Username: "admin", Password: "s3cret"}, username: "admin", password: "nope", wantErr: ErrUnauthorized},
		{name: "wrong username denied", creds: Credentials{Username: "admin", Password: "s3cret"}, username: "root", password: "s3cret", wantErr: ErrUnauthorized},
		{name: "matching pair accepted", creds: Credentials{Username: "admin", Password: "s3cret"}, username: "admin", password: "s3cret", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.creds.Validate(tc.username, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFromEnvDefaultsUsername(t *testing.T) {
	t.Setenv(EnvAdminUsername, "")
	t.Setenv(EnvAdminPassword, "pw")

	creds := FromEnv()
	if creds.Username != DefaultAdminUsername {
		t.Fatalf("expected default username, got %q", creds.Username)
	}
	if creds.Password != "pw" {
		t.Fatalf("expected password from env, got %q", creds.Password)
	}
}

func TestFuncValidator(t *testing.T) {
	validator := FuncValidator(func(username, password string) error {
		if username != "ok" || password != "pw" {
			return ErrUnauthorized
		}
		return nil
	})

	if err := validator.Validate("bad", "pw"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for bad username, got %v", err)
	}
	if err := validator.Validate("ok", "pw"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestBasicMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Basic(Credentials{Username: "admin", Password: "s3cret"}))
	r.GET("/admin", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected basic auth challenge header")
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.SetBasicAuth("admin", "s3cret")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with credentials, got %d", rr.Code)
	}
}
