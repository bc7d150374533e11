package server

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/movexa/trackctl/internal/observability"
	"github.com/movexa/trackctl/internal/quote"
	"github.com/movexa/trackctl/internal/store"
)

// packageView flattens a stored package for template rendering; nullable
// columns become display strings.
type packageView struct {
	TrackingID   string
	Recipient    string
	Status       string
	CreatedAt    string
	Weight       string
	Dimensions   string
	ShipmentType string
	Location     string
}

func viewFromPackage(pkg store.Package) packageView {
	v := packageView{
		TrackingID:   pkg.TrackingID,
		Recipient:    pkg.Recipient,
		Status:       pkg.Status,
		CreatedAt:    pkg.CreatedAt,
		Weight:       "N/A",
		Dimensions:   "N/A",
		ShipmentType: "N/A",
		Location:     "N/A",
	}
	if pkg.Weight.Valid {
		v.Weight = strconv.FormatFloat(pkg.Weight.Float64, 'f', -1, 64) + " kg"
	}
	if pkg.Dimensions.Valid && pkg.Dimensions.String != "" {
		v.Dimensions = pkg.Dimensions.String
	}
	if pkg.ShipmentType.Valid && pkg.ShipmentType.String != "" {
		v.ShipmentType = pkg.ShipmentType.String
	}
	if pkg.Location.Valid && pkg.Location.String != "" {
		v.Location = pkg.Location.String
	}
	return v
}

// notFoundView mirrors the original behavior: an unknown tracking ID still
// renders a results page, with status "Not Found".
func notFoundView(trackingID string) packageView {
	return packageView{
		TrackingID:   trackingID,
		Recipient:    "N/A",
		Status:       "Not Found",
		CreatedAt:    "N/A",
		Weight:       "N/A",
		Dimensions:   "N/A",
		ShipmentType: "N/A",
		Location:     "N/A",
	}
}

func (s *Server) handleTrack(c *gin.Context) {
	trackingID := strings.TrimSpace(c.PostForm("tracking_id"))
	if trackingID == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/results/"+url.PathEscape(trackingID))
}

func (s *Server) handleResults(c *gin.Context) {
	trackingID := c.Param("tracking_id")

	var view packageView
	pkg, err := s.store.GetPackage(c.Request.Context(), trackingID)
	switch {
	case err == nil:
		view = viewFromPackage(pkg)
	case errors.Is(err, store.ErrNotFound):
		view = notFoundView(trackingID)
	default:
		log.Error().Str("tracking_id", trackingID).Err(err).Msg("package lookup failed")
		c.String(http.StatusInternalServerError, "tracking lookup failed")
		return
	}

	history, err := s.store.History(c.Request.Context(), trackingID)
	if err != nil {
		log.Warn().Str("tracking_id", trackingID).Err(err).Msg("history lookup failed")
		history = nil
	}

	c.HTML(http.StatusOK, "results.html", gin.H{
		"Package": view,
		"History": history,
	})
}

type quoteRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Weight      float64 `json:"weight"`
}

func (s *Server) handleQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	q, err := quote.Calculate(req.Origin, req.Destination, req.Weight)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Weight must be a valid number greater than zero."})
		return
	}

	observability.RecordQuote(q.International)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"quote":    q.Amount,
		"currency": q.Currency,
	})
}

func (s *Server) handleAdminHome(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_home.html", nil)
}

func (s *Server) handleAdminNewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_new.html", gin.H{
		"PlaceholderID": quote.PlaceholderID(time.Now()),
	})
}

func (s *Server) handleAdminCreate(c *gin.Context) {
	trackingID := strings.ToUpper(strings.TrimSpace(c.PostForm("tracking_id")))
	recipient := strings.TrimSpace(c.PostForm("recipient"))
	if trackingID == "" || recipient == "" {
		s.renderAdminNewError(c, "Tracking ID and recipient are required.")
		return
	}

	pkg := store.Package{
		TrackingID: trackingID,
		Recipient:  recipient,
		Status:     "Shipment Created",
		CreatedAt:  store.Timestamp(time.Now()),
	}
	if raw := strings.TrimSpace(c.PostForm("weight")); raw != "" {
		if w, err := strconv.ParseFloat(raw, 64); err == nil {
			pkg.Weight = sql.NullFloat64{Float64: w, Valid: true}
		}
	}
	if v := strings.TrimSpace(c.PostForm("dimensions")); v != "" {
		pkg.Dimensions = sql.NullString{String: v, Valid: true}
	}
	if v := strings.TrimSpace(c.PostForm("shipment_type")); v != "" {
		pkg.ShipmentType = sql.NullString{String: v, Valid: true}
	}

	if err := s.store.CreatePackage(c.Request.Context(), pkg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.renderAdminNewError(c, fmt.Sprintf("Tracking ID %s already exists.", trackingID))
			return
		}
		log.Error().Str("tracking_id", trackingID).Err(err).Msg("package create failed")
		s.renderAdminNewError(c, "Error creating package.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/update/"+url.PathEscape(trackingID))
}

func (s *Server) renderAdminNewError(c *gin.Context, msg string) {
	c.HTML(http.StatusOK, "admin_new.html", gin.H{
		"Error":         msg,
		"PlaceholderID": quote.PlaceholderID(time.Now()),
	})
}

func (s *Server) handleAdminUpdateForm(c *gin.Context) {
	trackingID := c.Param("tracking_id")

	pkg, err := s.store.GetPackage(c.Request.Context(), trackingID)
	if errors.Is(err, store.ErrNotFound) {
		c.HTML(http.StatusNotFound, "admin_update_status.html", gin.H{
			"Error": fmt.Sprintf("Package ID %s not found.", trackingID),
		})
		return
	}
	if err != nil {
		log.Error().Str("tracking_id", trackingID).Err(err).Msg("package lookup failed")
		c.String(http.StatusInternalServerError, "package lookup failed")
		return
	}

	c.HTML(http.StatusOK, "admin_update_status.html", gin.H{
		"Package": viewFromPackage(pkg),
	})
}

func (s *Server) handleAdminUpdate(c *gin.Context) {
	trackingID := c.Param("tracking_id")
	status := strings.TrimSpace(c.PostForm("status"))
	location := strings.TrimSpace(c.PostForm("location"))
	if status == "" || location == "" {
		c.HTML(http.StatusOK, "admin_update_status.html", gin.H{
			"Error":   "Status and location are required.",
			"Package": packageView{TrackingID: trackingID},
		})
		return
	}

	err := s.store.UpdateStatus(c.Request.Context(), trackingID, status, location, store.Timestamp(time.Now()))
	if errors.Is(err, store.ErrNotFound) {
		c.HTML(http.StatusNotFound, "admin_update_status.html", gin.H{
			"Error": fmt.Sprintf("Package ID %s not found.", trackingID),
		})
		return
	}
	if err != nil {
		log.Error().Str("tracking_id", trackingID).Err(err).Msg("status update failed")
		c.String(http.StatusInternalServerError, "status update failed")
		return
	}

	c.Redirect(http.StatusSeeOther, "/results/"+url.PathEscape(trackingID))
}
