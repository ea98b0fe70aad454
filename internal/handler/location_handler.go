package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bubble/internal/middleware"
	"bubble/internal/service"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locationSvc *service.LocationService
}

func NewLocationHandler(locationSvc *service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// UpdateLocation records one sample and runs the geofence check for every
// live schedule. Called by the app in the background every 5-10 minutes.
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Coords struct {
			Lat *float64 `json:"lat" binding:"required"`
			Lng *float64 `json:"lng" binding:"required"`
		} `json:"coords" binding:"required"`
		AccuracyM  *float64   `json:"accuracy_m"`
		RecordedAt *time.Time `json:"recorded_at"`
		ScheduleID *string    `json:"schedule_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.locationSvc.ProcessUpdate(c.Request.Context(), userID, service.LocationUpdate{
		Coords:     service.Coords{Lat: *req.Coords.Lat, Lng: *req.Coords.Lng},
		AccuracyM:  req.AccuracyM,
		RecordedAt: req.RecordedAt,
		ScheduleID: req.ScheduleID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "location update failed"})
		return
	}

	notifications := result.Notifications
	if notifications == nil {
		notifications = []service.NotificationSummary{}
	}
	updates := result.Updates
	if updates == nil {
		updates = []service.ScheduleUpdate{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":                 fmt.Sprintf("location recorded, %d geofence events processed", len(result.Events)),
		"location_recorded":       true,
		"triggered_notifications": notifications,
		"schedule_updates":        updates,
	})
}

// GetStatus returns the latest sample and per-schedule status with distance.
func (h *LocationHandler) GetStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)

	latest, err := h.locationSvc.LatestLocation(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status lookup failed"})
		return
	}
	statuses, err := h.locationSvc.ActiveScheduleStatus(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status lookup failed"})
		return
	}

	resp := gin.H{"active_schedules": statuses}
	if latest != nil {
		resp["current_location"] = gin.H{"lat": latest.Latitude, "lng": latest.Longitude}
		resp["last_updated"] = latest.RecordedAt
	} else {
		resp["current_location"] = nil
		resp["last_updated"] = nil
	}
	c.JSON(http.StatusOK, resp)
}
