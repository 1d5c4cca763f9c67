package models

import "time"

// EnergyDecision is one logged device directive derived from a prediction.
type EnergyDecision struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ClassroomID        uint      `gorm:"column:classroom_id;not null" json:"classroom_id"`
	Timestamp          time.Time `gorm:"column:timestamp" json:"timestamp"`
	PredictedOccupancy string    `gorm:"column:predicted_occupancy;size:20" json:"occupancy"`
	LightsAction       string    `gorm:"column:lights_action;size:10" json:"lights"`
	ACAction           string    `gorm:"column:ac_action;size:10" json:"ac"`
	EnergySavedKWH     float64   `gorm:"column:energy_saved_kwh;default:0" json:"saved"`
	Classroom          Classroom `gorm:"foreignKey:ClassroomID" json:"-"`
}

func (EnergyDecision) TableName() string { return "energy_decisions" }

// DailyEnergyLog is the per-day rollup used by the analytics dashboard.
type DailyEnergyLog struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Date                time.Time `gorm:"column:date;uniqueIndex" json:"date"`
	TotalConsumptionKWH float64   `gorm:"column:total_consumption_kwh;default:0" json:"total_consumption_kwh"`
	TotalSavingsKWH     float64   `gorm:"column:total_savings_kwh;default:0" json:"total_savings_kwh"`
	AvgOccupancyPercent float64   `gorm:"column:avg_occupancy_percent;default:0" json:"avg_occupancy_percent"`
	TotalDecisions      int       `gorm:"column:total_decisions;default:0" json:"total_decisions"`
}

func (DailyEnergyLog) TableName() string { return "daily_energy_logs" }
