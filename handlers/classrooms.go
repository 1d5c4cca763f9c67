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

type ClassroomHandler struct {
	db *gorm.DB
}

func NewClassroomHandler(db *gorm.DB) *ClassroomHandler {
	return &ClassroomHandler{db: db}
}

// List returns all active classrooms.
func (h *ClassroomHandler) List(c *gin.Context) {
	var classrooms []models.Classroom
	if err := h.db.Where("is_active = ?", true).Order("name ASC").Find(&classrooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"classrooms": classrooms, "count": len(classrooms)})
}

type createClassroomRequest struct {
	Name      string `json:"name" binding:"required"`
	Building  string `json:"building"`
	Capacity  int    `json:"capacity" binding:"required,gt=0"`
	NumLights int    `json:"lights"`
	NumACs    int    `json:"acs"`
}

func (h *ClassroomHandler) Create(c *gin.Context) {
	var req createClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classroom := models.Classroom{
		Name:      req.Name,
		Building:  req.Building,
		Capacity:  req.Capacity,
		NumLights: req.NumLights,
		NumACs:    req.NumACs,
		IsActive:  true,
	}
	if classroom.NumLights == 0 {
		classroom.NumLights = 8
	}
	if classroom.NumACs == 0 {
		classroom.NumACs = 2
	}

	if err := h.db.Create(&classroom).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create classroom"})
		return
	}
	c.JSON(http.StatusCreated, classroom)
}

// Delete soft-deletes by flagging the room inactive, keeping its decision
// history intact for analytics.
func (h *ClassroomHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classroom id"})
		return
	}

	var classroom models.Classroom
	if err := h.db.First(&classroom, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "classroom not found"})
		return
	}

	classroom.IsActive = false
	if err := h.db.Save(&classroom).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete classroom"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Classroom removed"})
}

// BulkImport loads classrooms from a CSV with the columns name, building
// and capacity.
func (h *ClassroomHandler) BulkImport(c *gin.Context) {
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
	if err := ds.RequireColumns("name", "building", "capacity"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := 0
	var skipped []string
	for _, row := range ds.Rows {
		name := strings.TrimSpace(row["name"])
		capacity, err := strconv.Atoi(strings.TrimSpace(row["capacity"]))
		if name == "" || err != nil || capacity <= 0 {
			skipped = append(skipped, name)
			continue
		}

		var count int64
		h.db.Model(&models.Classroom{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			skipped = append(skipped, name)
			continue
		}

		classroom := models.Classroom{
			Name:      name,
			Building:  strings.TrimSpace(row["building"]),
			Capacity:  capacity,
			NumLights: 8,
			NumACs:    2,
			IsActive:  true,
		}
		if err := h.db.Create(&classroom).Error; err != nil {
			skipped = append(skipped, name)
			continue
		}
		created++
	}

	c.JSON(http.StatusOK, gin.H{"created": created, "skipped": skipped})
}
