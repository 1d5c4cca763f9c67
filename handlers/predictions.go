package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"classroom-energy-api/ml"
	"classroom-energy-api/models"
	"classroom-energy-api/services"
)

// energySavedPerOptimization is the kWh credited every time a prediction
// lets us keep the AC off.
const energySavedPerOptimization = 2.5

type PredictionHandler struct {
	db            *gorm.DB
	engine        *ml.Engine
	energyService *services.EnergyService
}

func NewPredictionHandler(db *gorm.DB, engine *ml.Engine, energyService *services.EnergyService) *PredictionHandler {
	return &PredictionHandler{db: db, engine: engine, energyService: energyService}
}

type sweepResult struct {
	ClassroomID    uint    `json:"classroom_id"`
	ClassroomName  string  `json:"classroom"`
	Day            string  `json:"day"`
	Time           string  `json:"time"`
	Subject        string  `json:"subject"`
	Occupancy      string  `json:"occupancy"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
	Recommendation string  `json:"recommendation"`
	Lights         string  `json:"lights"`
	AC             string  `json:"ac"`
	EnergySavedKWH float64 `json:"energy_saved_kwh"`
}

// PredictAll sweeps the full timetable, classifies every scheduled class and
// logs one energy decision per entry.
func (h *PredictionHandler) PredictAll(c *gin.Context) {
	var entries []models.TimetableEntry
	if err := h.db.Preload("Classroom").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	results := make([]sweepResult, 0, len(entries))
	for _, entry := range entries {
		pred, err := h.engine.Predict(
			entry.DayOfWeek,
			entry.TimeSlot,
			entry.SubjectType,
			formatAttendance(entry.ExpectedAttendance),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
			return
		}

		lights := "ON"
		if pred.LevelIndex == 0 {
			lights = "OFF"
		}
		ac := "OFF"
		if pred.LevelIndex == 2 {
			ac = "ON"
		}
		var saved float64
		if pred.LevelIndex < 2 {
			saved = energySavedPerOptimization
		}

		decision := &models.EnergyDecision{
			ClassroomID:        entry.ClassroomID,
			Timestamp:          time.Now(),
			PredictedOccupancy: pred.LevelName,
			LightsAction:       lights,
			ACAction:           ac,
			EnergySavedKWH:     saved,
		}
		if err := h.energyService.LogDecision(c.Request.Context(), decision); err != nil {
			log.Printf("Failed to log decision for classroom %d: %v", entry.ClassroomID, err)
		}

		results = append(results, sweepResult{
			ClassroomID:    entry.ClassroomID,
			ClassroomName:  entry.Classroom.Name,
			Day:            entry.DayOfWeek,
			Time:           entry.TimeSlot,
			Subject:        entry.Subject,
			Occupancy:      pred.LevelName,
			Confidence:     pred.Confidence,
			Reasoning:      pred.Reasoning,
			Recommendation: pred.Level.Recommendation(),
			Lights:         lights,
			AC:             ac,
			EnergySavedKWH: saved,
		})
	}

	c.JSON(http.StatusOK, gin.H{"predictions": results, "count": len(results)})
}

// UploadTrain ingests an uploaded CSV into the history corpus and retrains.
func (h *PredictionHandler) UploadTrain(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	defer file.Close()

	ds, err := ml.ReadCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse CSV"})
		return
	}

	report, err := h.engine.Digest(ds)
	if err != nil {
		var missing *ml.MissingColumnsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, ml.ErrNoHistory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no data to train on"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "training failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Model retrained",
		"report":  report,
	})
}

// PredictBatch classifies an uploaded dataset without absorbing it.
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	defer file.Close()

	ds, err := ml.ReadCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse CSV"})
		return
	}

	predictions, err := h.engine.PredictBatch(ds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	optimized := 0
	for _, p := range predictions {
		if p.EnergyAction == "Optimized" {
			optimized++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": predictions,
		"summary": gin.H{
			"total_rows":      len(predictions),
			"optimized_count": optimized,
			"full_power":      len(predictions) - optimized,
		},
	})
}

// ModelStatus exposes engine introspection for the admin panel.
func (h *PredictionHandler) ModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

// Retrain refits the model from the persisted corpus without new data.
func (h *PredictionHandler) Retrain(c *gin.Context) {
	report, err := h.engine.Train()
	if err != nil {
		if errors.Is(err, ml.ErrNoHistory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no history to train on"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "training failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model retrained", "report": report})
}

type attendanceRequest struct {
	TimetableEntryID uint    `json:"timetable_entry_id" binding:"required"`
	ActualAttendance float64 `json:"actual_attendance" binding:"gte=0"`
}

// RecordAttendance stores the actual turnout for a scheduled class and
// digests it back into the model, closing the self-learning loop.
func (h *PredictionHandler) RecordAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var entry models.TimetableEntry
	if err := h.db.First(&entry, req.TimetableEntryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "timetable entry not found"})
		return
	}

	record := models.AttendanceRecord{
		TimetableEntryID: entry.ID,
		Date:             time.Now(),
		ActualAttendance: req.ActualAttendance,
	}
	if err := h.db.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record attendance"})
		return
	}

	ds := &ml.Dataset{
		Columns: []string{"day", "hour", "type", "attendance"},
		Rows: []map[string]string{{
			"day":        entry.DayOfWeek,
			"hour":       entry.TimeSlot,
			"type":       entry.SubjectType,
			"attendance": formatAttendance(req.ActualAttendance),
		}},
	}
	report, err := h.engine.Digest(ds)
	if err != nil {
		// The record is saved either way; a training failure should not
		// lose the observation.
		log.Printf("Failed to digest attendance feedback: %v", err)
		c.JSON(http.StatusCreated, gin.H{"message": "Attendance recorded", "record_id": record.ID})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Attendance recorded and model updated",
		"record_id": record.ID,
		"report":    report,
	})
}

// formatAttendance renders the timetable value back to its raw string form
// so it goes through the same parsing door as uploaded CSVs.
func formatAttendance(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
