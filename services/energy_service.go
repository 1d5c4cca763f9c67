package services

import (
	"context"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"

	"classroom-energy-api/models"
)

// DecisionsChannel is the Redis pub/sub channel the websocket feed listens on.
const DecisionsChannel = "classroom:decisions"

// EnergyService records energy decisions and serves dashboard aggregates.
type EnergyService struct {
	db        *gorm.DB
	cache     *CacheService
	publisher *DirectivePublisher
}

func NewEnergyService(db *gorm.DB, cache *CacheService, publisher *DirectivePublisher) *EnergyService {
	return &EnergyService{db: db, cache: cache, publisher: publisher}
}

// LogDecision persists the decision, fans it out over Redis for live
// dashboards and pushes the device directive over MQTT.
func (s *EnergyService) LogDecision(ctx context.Context, decision *models.EnergyDecision) error {
	if decision.Timestamp.IsZero() {
		decision.Timestamp = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(decision).Error; err != nil {
		return err
	}

	if err := s.cache.Publish(ctx, DecisionsChannel, decision); err != nil {
		log.Printf("Failed to publish decision: %v", err)
	}
	if err := s.publisher.PublishDirective(decision); err != nil {
		log.Printf("Failed to publish MQTT directive: %v", err)
	}
	return nil
}

// RecentDecisions returns the latest decisions, newest first.
func (s *EnergyService) RecentDecisions(ctx context.Context, limit int) ([]models.EnergyDecision, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var decisions []models.EnergyDecision
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&decisions).Error
	return decisions, err
}

// DashboardStats is the analytics payload for the admin dashboard.
type DashboardStats struct {
	EnergySavedKWH   float64 `json:"energy_saved_kwh"`
	ActiveClassrooms int64   `json:"active_classrooms"`
	AvgOccupancy     float64 `json:"avg_occupancy"`
	CO2ReducedTons   float64 `json:"co2_reduced_tons"`
	TotalDecisions   int64   `json:"total_decisions"`
}

// Stats aggregates all decisions to date. Average occupancy maps the
// predicted level onto a rough percentage midpoint per band.
func (s *EnergyService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.WithContext(ctx).Model(&models.EnergyDecision{}).
		Count(&stats.TotalDecisions).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Classroom{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveClassrooms).Error; err != nil {
		return nil, err
	}

	var saved float64
	if err := s.db.WithContext(ctx).Model(&models.EnergyDecision{}).
		Select("COALESCE(SUM(energy_saved_kwh), 0)").
		Scan(&saved).Error; err != nil {
		return nil, err
	}
	stats.EnergySavedKWH = round1(saved)
	// 0.5 kg CO2 per kWh, reported in tons.
	stats.CO2ReducedTons = round2(saved * 0.0005)

	var levels []string
	if err := s.db.WithContext(ctx).Model(&models.EnergyDecision{}).
		Pluck("predicted_occupancy", &levels).Error; err != nil {
		return nil, err
	}
	if len(levels) > 0 {
		samples := make([]float64, len(levels))
		for i, level := range levels {
			samples[i] = occupancyMidpoint(level)
		}
		stats.AvgOccupancy = round1(stat.Mean(samples, nil))
	}

	return stats, nil
}

func occupancyMidpoint(level string) float64 {
	switch level {
	case "High":
		return 80
	case "Medium":
		return 45
	default:
		return 15
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
