package handler

import (
	"errors"
	"net/http"
	"time"

	"bubble/internal/domain"
	"bubble/internal/middleware"
	"bubble/internal/service"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	scheduleSvc *service.ScheduleService
}

func NewScheduleHandler(scheduleSvc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

type coordsBody struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		DestinationName    string     `json:"destination_name" binding:"required"`
		DestinationAddress string     `json:"destination_address"`
		DestinationCoords  coordsBody `json:"destination_coords" binding:"required"`
		GeofenceRadiusM    int        `json:"geofence_radius_m"`
		NotifyToUserIDs    []string   `json:"notify_to_user_ids" binding:"required"`
		StartTime          time.Time  `json:"start_time" binding:"required"`
		EndTime            time.Time  `json:"end_time" binding:"required"`
		Recurrence         *string    `json:"recurrence"`
		NotifyOnArrival    *bool      `json:"notify_on_arrival"`
		NotifyAfterMinutes int        `json:"notify_after_minutes"`
		NotifyOnDeparture  *bool      `json:"notify_on_departure"`
		Favorite           bool       `json:"favorite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// arrival/departure notifications default to on
	notifyOnArrival := req.NotifyOnArrival == nil || *req.NotifyOnArrival
	notifyOnDeparture := req.NotifyOnDeparture == nil || *req.NotifyOnDeparture

	sched, err := h.scheduleSvc.Create(c.Request.Context(), userID, service.ScheduleInput{
		DestinationName:    req.DestinationName,
		DestinationAddress: req.DestinationAddress,
		DestinationCoords:  service.Coords{Lat: *req.DestinationCoords.Lat, Lng: *req.DestinationCoords.Lng},
		GeofenceRadiusM:    req.GeofenceRadiusM,
		NotifyToUserIDs:    req.NotifyToUserIDs,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Recurrence:         req.Recurrence,
		NotifyOnArrival:    notifyOnArrival,
		NotifyAfterMinutes: req.NotifyAfterMinutes,
		NotifyOnDeparture:  notifyOnDeparture,
		Favorite:           req.Favorite,
	})
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sched)
}

func (h *ScheduleHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var status *domain.ScheduleStatus
	if q := c.Query("status"); q != "" {
		st, err := domain.ParseScheduleStatus(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = &st
	}
	list, err := h.scheduleSvc.List(c.Request.Context(), userID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": list, "total": len(list)})
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sched, err := h.scheduleSvc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		DestinationName    *string     `json:"destination_name"`
		DestinationAddress *string     `json:"destination_address"`
		DestinationCoords  *coordsBody `json:"destination_coords"`
		GeofenceRadiusM    *int        `json:"geofence_radius_m"`
		NotifyToUserIDs    []string    `json:"notify_to_user_ids"`
		StartTime          *time.Time  `json:"start_time"`
		EndTime            *time.Time  `json:"end_time"`
		Recurrence         *string     `json:"recurrence"`
		NotifyOnArrival    *bool       `json:"notify_on_arrival"`
		NotifyAfterMinutes *int        `json:"notify_after_minutes"`
		NotifyOnDeparture  *bool       `json:"notify_on_departure"`
		Favorite           *bool       `json:"favorite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.SchedulePatch{
		DestinationName:    req.DestinationName,
		DestinationAddress: req.DestinationAddress,
		GeofenceRadiusM:    req.GeofenceRadiusM,
		NotifyToUserIDs:    req.NotifyToUserIDs,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Recurrence:         req.Recurrence,
		NotifyOnArrival:    req.NotifyOnArrival,
		NotifyAfterMinutes: req.NotifyAfterMinutes,
		NotifyOnDeparture:  req.NotifyOnDeparture,
		Favorite:           req.Favorite,
	}
	if req.DestinationCoords != nil {
		patch.DestinationCoords = &service.Coords{Lat: *req.DestinationCoords.Lat, Lng: *req.DestinationCoords.Lng}
	}

	sched, err := h.scheduleSvc.Update(c.Request.Context(), c.Param("id"), userID, patch)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.scheduleSvc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your schedule"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "schedule operation failed"})
	}
}
