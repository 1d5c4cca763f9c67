package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"classroom-energy-api/ml"
	"classroom-energy-api/models"
)

type TimetableHandler struct {
	db *gorm.DB
}

func NewTimetableHandler(db *gorm.DB) *TimetableHandler {
	return &TimetableHandler{db: db}
}

// List returns timetable entries, optionally filtered by classroom or day.
func (h *TimetableHandler) List(c *gin.Context) {
	query := h.db.Preload("Classroom").Order("id ASC")
	if classroomID := c.Query("classroom_id"); classroomID != "" {
		query = query.Where("classroom_id = ?", classroomID)
	}
	if day := c.Query("day"); day != "" {
		query = query.Where("day_of_week = ?", day)
	}

	var entries []models.TimetableEntry
	if err := query.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

type createEntryRequest struct {
	ClassroomID        uint    `json:"classroom_id" binding:"required"`
	DayOfWeek          string  `json:"day" binding:"required"`
	TimeSlot           string  `json:"time" binding:"required"`
	Subject            string  `json:"subject"`
	SubjectType        string  `json:"type"`
	TeacherName        string  `json:"teacher"`
	TeacherEmail       string  `json:"email"`
	ExpectedAttendance float64 `json:"attendance"`
}

func (h *TimetableHandler) Create(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var classroom models.Classroom
	if err := h.db.First(&classroom, req.ClassroomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "classroom not found"})
		return
	}

	entry := models.TimetableEntry{
		ClassroomID:        req.ClassroomID,
		DayOfWeek:          req.DayOfWeek,
		TimeSlot:           req.TimeSlot,
		Subject:            req.Subject,
		SubjectType:        req.SubjectType,
		TeacherName:        req.TeacherName,
		TeacherEmail:       req.TeacherEmail,
		ExpectedAttendance: req.ExpectedAttendance,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create entry"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *TimetableHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	result := h.db.Delete(&models.TimetableEntry{}, uint(id))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

// BulkImport loads timetable entries from a CSV with the columns
// classroom_id, day, time, subject, type, teacher, email and attendance.
func (h *TimetableHandler) BulkImport(c *gin.Context) {
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
	if err := ds.RequireColumns("classroom_id", "day", "time"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := 0
	var skippedRows []int
	for i, row := range ds.Rows {
		classroomID, err := strconv.ParseUint(strings.TrimSpace(row["classroom_id"]), 10, 64)
		if err != nil || row["day"] == "" || row["time"] == "" {
			skippedRows = append(skippedRows, i+1)
			continue
		}

		var count int64
		h.db.Model(&models.Classroom{}).Where("id = ?", uint(classroomID)).Count(&count)
		if count == 0 {
			skippedRows = append(skippedRows, i+1)
			continue
		}

		attendance, _ := strconv.ParseFloat(strings.TrimSpace(row["attendance"]), 64)
		entry := models.TimetableEntry{
			ClassroomID:        uint(classroomID),
			DayOfWeek:          row["day"],
			TimeSlot:           row["time"],
			Subject:            row["subject"],
			SubjectType:        row["type"],
			TeacherName:        row["teacher"],
			TeacherEmail:       row["email"],
			ExpectedAttendance: attendance,
		}
		if err := h.db.Create(&entry).Error; err != nil {
			skippedRows = append(skippedRows, i+1)
			continue
		}
		created++
	}

	c.JSON(http.StatusOK, gin.H{"created": created, "skipped_rows": skippedRows})
}
