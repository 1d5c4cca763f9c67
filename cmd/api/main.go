package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"classroom-energy-api/config"
	"classroom-energy-api/handlers"
	"classroom-energy-api/middleware"
	"classroom-energy-api/ml"
	"classroom-energy-api/models"
	"classroom-energy-api/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.TimetableEntry{},
		&models.AttendanceRecord{},
		&models.EnergyDecision{},
		&models.DailyEnergyLog{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	authService := services.NewAuthService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	if err := seedDatabase(db, authService); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	cache, err := services.NewCacheService(&cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache: %v", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	var publisher *services.DirectivePublisher
	if cfg.MQTT.URL != "" {
		publisher, err = services.NewDirectivePublisher(&cfg.MQTT)
		if err != nil {
			log.Printf("MQTT unavailable, continuing without directives: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	var mailer *services.SMTPMailer
	if cfg.Mail.Server != "" {
		mailer = services.NewSMTPMailer(&cfg.Mail)
	}

	engine := ml.NewEngine(cfg.ML.HistoryPath, cfg.ML.ModelPath)
	energyService := services.NewEnergyService(db, cache, publisher)

	router := setupRouter(cfg, db, authService, cache, engine, energyService, mailer)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func setupRouter(
	cfg *config.Config,
	db *gorm.DB,
	authService *services.AuthService,
	cache *services.CacheService,
	engine *ml.Engine,
	energyService *services.EnergyService,
	mailer *services.SMTPMailer,
) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS(&cfg.CORS))

	authHandler := handlers.NewAuthHandler(db, authService, mailer)
	classroomHandler := handlers.NewClassroomHandler(db)
	timetableHandler := handlers.NewTimetableHandler(db)
	predictionHandler := handlers.NewPredictionHandler(db, engine, energyService)
	analyticsHandler := handlers.NewAnalyticsHandler(energyService, cache, engine)
	notificationHandler := handlers.NewNotificationHandler(db)
	wsHandler := handlers.NewWebSocketHandler(authService, cache)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", analyticsHandler.Health)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/activate/:token", authHandler.Activate)
			auth.GET("/verify", middleware.RequireAuth(authService), authHandler.VerifyToken)
		}

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(authService))
		{
			authed.GET("/classrooms", classroomHandler.List)
			authed.GET("/timetable", timetableHandler.List)
			authed.GET("/predict", predictionHandler.PredictAll)
			authed.POST("/attendance", predictionHandler.RecordAttendance)
			authed.GET("/analytics/dashboard", analyticsHandler.Dashboard)
			authed.GET("/analytics/decisions", analyticsHandler.RecentDecisions)
			authed.GET("/notifications", notificationHandler.List)
			authed.POST("/notifications/:id/read", notificationHandler.MarkRead)

			mlRoutes := authed.Group("/ml")
			{
				mlRoutes.POST("/upload-train", predictionHandler.UploadTrain)
				mlRoutes.POST("/predict-batch", predictionHandler.PredictBatch)
				mlRoutes.GET("/status", predictionHandler.ModelStatus)
			}

			admin := authed.Group("")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.GET("/users", authHandler.ListUsers)
				admin.POST("/users", authHandler.CreateUser)
				admin.POST("/users/bulk", authHandler.BulkImportUsers)
				admin.PUT("/users/:id", authHandler.UpdateUser)
				admin.DELETE("/users/:id", authHandler.DeleteUser)
				admin.GET("/users/pending-admins", authHandler.PendingAdmins)
				admin.POST("/users/:id/approve-admin", authHandler.ApproveAdmin)
				admin.POST("/users/:id/activate", authHandler.ActivateManual)

				admin.POST("/classrooms", classroomHandler.Create)
				admin.DELETE("/classrooms/:id", classroomHandler.Delete)
				admin.POST("/classrooms/bulk", classroomHandler.BulkImport)

				admin.POST("/timetable", timetableHandler.Create)
				admin.DELETE("/timetable/:id", timetableHandler.Delete)
				admin.POST("/timetable/bulk", timetableHandler.BulkImport)

				admin.POST("/ml/retrain", predictionHandler.Retrain)
			}
		}

		api.GET("/ws/decisions", wsHandler.LiveDecisions)
	}

	return router
}

// seedDatabase provisions the default admin and demo rooms on first boot.
func seedDatabase(db *gorm.DB, authService *services.AuthService) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		hash, err := authService.HashPassword("admin123")
		if err != nil {
			return err
		}
		admin := models.User{
			Username:        "admin",
			Email:           "admin@classroom.local",
			PasswordHash:    hash,
			Role:            "admin",
			IsActiveAccount: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("Seeded default admin account")
	}

	var classroomCount int64
	if err := db.Model(&models.Classroom{}).Count(&classroomCount).Error; err != nil {
		return err
	}
	if classroomCount > 0 {
		return nil
	}

	room := models.Classroom{Name: "Room 101", Building: "A", Capacity: 50, NumLights: 8, NumACs: 2, IsActive: true}
	lab := models.Classroom{Name: "Lab 202", Building: "B", Capacity: 30, NumLights: 8, NumACs: 2, IsActive: true}
	if err := db.Create(&room).Error; err != nil {
		return err
	}
	if err := db.Create(&lab).Error; err != nil {
		return err
	}

	entries := []models.TimetableEntry{
		{
			ClassroomID: room.ID, DayOfWeek: "Monday", TimeSlot: "08:00",
			Subject: "Mathematics", SubjectType: "theory",
			TeacherName: "Dr. Sharma", TeacherEmail: "sharma@classroom.local",
			ExpectedAttendance: 85,
		},
		{
			ClassroomID: lab.ID, DayOfWeek: "Tuesday", TimeSlot: "10:30",
			Subject: "Physics Lab", SubjectType: "lab",
			TeacherName: "Prof. Iyer", TeacherEmail: "iyer@classroom.local",
			ExpectedAttendance: 40,
		},
	}
	if err := db.Create(&entries).Error; err != nil {
		return err
	}

	log.Println("Seeded demo classrooms and timetable")
	return nil
}
