package handler

import (
	"fmt"
	"net/http"

	"bubble/internal/service"

	"github.com/gin-gonic/gin"
)

// BatchHandler exposes the sweep and retention jobs to an external
// scheduler. Every endpoint is safe to re-run; double work degrades to a
// no-op via the same idempotency guards the live path uses.
type BatchHandler struct {
	notifySvc  *service.NotifyService
	cleanupSvc *service.CleanupService
}

func NewBatchHandler(notifySvc *service.NotifyService, cleanupSvc *service.CleanupService) *BatchHandler {
	return &BatchHandler{notifySvc: notifySvc, cleanupSvc: cleanupSvc}
}

// StayNotifications runs the dwell-time sweep. Recommended cadence: 5 min.
func (h *BatchHandler) StayNotifications(c *gin.Context) {
	sent, err := h.notifySvc.SweepStayNotifications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("sent %d stay notifications", sent),
		"details": gin.H{"sent_count": sent},
	})
}

// UpdateExpiredSchedules runs the forced-expiration sweep. Recommended
// cadence: 10 min.
func (h *BatchHandler) UpdateExpiredSchedules(c *gin.Context) {
	updated, err := h.cleanupSvc.ExpireOverdueSchedules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("expired %d schedules", updated),
		"details": gin.H{"updated_count": updated},
	})
}

// Cleanup runs the TTL purge. Recommended cadence: hourly.
func (h *BatchHandler) Cleanup(c *gin.Context) {
	result, err := h.cleanupSvc.PurgeExpiredData(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("purged %d rows", result.Total()),
		"details": result,
	})
}

// CleanupStats reports purge-eligible counts without deleting anything.
func (h *BatchHandler) CleanupStats(c *gin.Context) {
	stats, err := h.cleanupSvc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "cleanup stats", "details": stats})
}

// RunAll chains all three jobs; convenient for development and one-shot
// cron setups.
func (h *BatchHandler) RunAll(c *gin.Context) {
	ctx := c.Request.Context()

	expired, err := h.cleanupSvc.ExpireOverdueSchedules(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	sent, err := h.notifySvc.SweepStayNotifications(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	purged, err := h.cleanupSvc.PurgeExpiredData(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "all batch jobs completed",
		"details": gin.H{
			"expired_schedules_updated": expired,
			"stay_notifications_sent":   sent,
			"data_cleaned":              purged.Total(),
			"cleanup_breakdown":         purged,
		},
	})
}
