package service

import (
	"bubble/internal/domain"
	"bubble/internal/models"
	"bubble/pkg/location"
)

// Coords is a validated lat/lng pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeofenceEvent is a detected boundary crossing. Transient: produced and
// consumed within a single ingest cycle, never persisted.
type GeofenceEvent struct {
	Schedule  *models.Schedule
	EventType domain.GeofenceEventType
	Coords    Coords
	DistanceM float64
}

// GeofenceService decides whether a location sample crossed a schedule's
// geofence boundary. Pure given its inputs; no store access.
type GeofenceService struct {
	defaultRadiusM int
}

// NewGeofenceService takes the deployment-wide fallback radius, used for
// schedules stored without one. Zero or negative means the built-in default.
func NewGeofenceService(defaultRadiusM int) *GeofenceService {
	if defaultRadiusM <= 0 {
		defaultRadiusM = domain.DefaultGeofenceRadiusM
	}
	return &GeofenceService{defaultRadiusM: defaultRadiusM}
}

func (g *GeofenceService) radius(s *models.Schedule) float64 {
	if s.GeofenceRadiusM > 0 {
		return float64(s.GeofenceRadiusM)
	}
	return float64(g.defaultRadiusM)
}

func (g *GeofenceService) distance(s *models.Schedule, c Coords) float64 {
	return location.HaversineM(c.Lat, c.Lng, s.DestinationLat, s.DestinationLng)
}

// CheckEntry reports whether the sample just entered the geofence, plus the
// distance to the destination. An ARRIVED schedule never re-enters. With no
// previous sample, being inside counts as arrival (first-ever record).
// Otherwise entry requires the previous sample to have been outside, which
// debounces a single stray in-range reading.
func (g *GeofenceService) CheckEntry(s *models.Schedule, cur Coords, prev *Coords) (bool, float64) {
	dist := g.distance(s, cur)
	if s.LifecycleStatus() == domain.StatusArrived {
		return false, dist
	}
	radius := g.radius(s)
	if dist > radius {
		return false, dist
	}
	if prev == nil {
		return true, dist
	}
	if g.distance(s, *prev) > radius {
		return true, dist
	}
	return false, dist
}

// CheckExit reports whether the sample just left the geofence. Only an
// ARRIVED schedule can exit, and only when the previous sample was inside:
// missing history never signals a departure.
func (g *GeofenceService) CheckExit(s *models.Schedule, cur Coords, prev *Coords) (bool, float64) {
	dist := g.distance(s, cur)
	if s.LifecycleStatus() != domain.StatusArrived {
		return false, dist
	}
	radius := g.radius(s)
	if dist <= radius {
		return false, dist
	}
	if prev == nil {
		return false, dist
	}
	if g.distance(s, *prev) <= radius {
		return true, dist
	}
	return false, dist
}
