package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/lingopath/internal/adaptive"
	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/economy"
	"github.com/example/lingopath/internal/event"
	"github.com/example/lingopath/internal/excel"
	"github.com/example/lingopath/internal/handlers"
	"github.com/example/lingopath/internal/path"
	"github.com/example/lingopath/internal/scheduler"
	"github.com/example/lingopath/internal/service"
	"github.com/example/lingopath/internal/session"
	"github.com/example/lingopath/internal/srs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	importFile := flag.String("import", "", "Import course content from an Excel or CSV file and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if *importFile != "" {
		runImport(*importFile)
		return
	}

	// The broker is optional; a nil publisher drops all events
	var publisher *event.Publisher
	if amqpURL := os.Getenv("RABBITMQ_URI"); amqpURL != "" {
		exchange := os.Getenv("RABBITMQ_EXCHANGE")
		if exchange == "" {
			exchange = "lingopath.events"
		}
		p, err := event.NewPublisher(amqpURL, exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = p
		defer publisher.Close()
	}

	contentRepo := database.NewContentRepository()
	content, err := contentRepo.GetPath(context.Background())
	if err != nil {
		log.Fatalf("Failed to load course content: %v", err)
	}
	if err := path.ValidateContent(content); err != nil {
		log.Fatalf("Invalid course content: %v", err)
	}

	graph := path.NewGraph(content)

	reviewService := service.NewReviewService(srs.NewScheduler(), database.NewReviewRepository(), publisher)
	performanceService := service.NewPerformanceService(adaptive.NewEstimator(nil), database.NewPerformanceRepository())
	economyService := service.NewEconomyService(economy.NewLedger(), database.NewEconomyRepository(), publisher)
	pathService := service.NewPathService(graph, database.NewProgressRepository(), database.NewEconomyRepository(), publisher)

	jobs := scheduler.New(economyService, reviewService, publisher)
	jobs.Start()
	defer jobs.Stop()

	router := setupRouter(reviewService, performanceService, pathService, economyService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server started on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func setupRouter(
	reviews *service.ReviewService,
	performance *service.PerformanceService,
	paths *service.PathService,
	econ *service.EconomyService,
) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	reviewHandler := handlers.NewReviewHandler(reviews)
	performanceHandler := handlers.NewPerformanceHandler(performance)
	pathHandler := handlers.NewPathHandler(paths)
	economyHandler := handlers.NewEconomyHandler(econ, paths)
	sessionHandler := handlers.NewSessionHandler(session.NewBuilder(reviews, performance))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/srs/review", reviewHandler.RecordReview)
		api.GET("/srs/due", reviewHandler.DueItems)
		api.GET("/srs/weak", reviewHandler.WeakItems)
		api.GET("/srs/mastery", reviewHandler.MasteryLevel)

		api.POST("/attempts", performanceHandler.RecordAttempt)
		api.GET("/adaptive/difficulty", performanceHandler.CalculateDifficulty)
		api.GET("/adaptive/weak-areas", performanceHandler.WeakAreas)
		api.GET("/adaptive/should-review", performanceHandler.ShouldReview)
		api.GET("/adaptive/learning-speed", performanceHandler.LearningSpeed)

		api.GET("/path", pathHandler.GetPath)
		api.GET("/path/progress", pathHandler.GetProgress)
		api.POST("/path/skill", pathHandler.UpdateSkillProgress)
		api.GET("/path/skill/unlocked", pathHandler.IsSkillUnlocked)
		api.GET("/path/next", pathHandler.NextUnlockedSkill)

		api.GET("/economy", economyHandler.GetState)
		api.POST("/economy/xp", economyHandler.AddXP)
		api.POST("/economy/hearts/lose", economyHandler.LoseHeart)
		api.POST("/economy/hearts/regenerate", economyHandler.RegenerateHearts)
		api.POST("/economy/hearts/earn", economyHandler.EarnHeart)
		api.POST("/economy/hearts/restore", economyHandler.RestoreAllHearts)
		api.GET("/economy/hearts/next", economyHandler.TimeUntilNextHeart)
		api.GET("/economy/hearts/available", economyHandler.HasHearts)

		api.GET("/session", sessionHandler.Build)
	}

	return r
}

func runImport(file string) {
	config := excel.DefaultImportConfig()
	config.FilePath = file

	result, err := excel.ImportContent(context.Background(), config)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import finished: %d rows processed, %d units, %d lessons, %d skills",
		result.TotalProcessed, result.Units, result.Lessons, result.Skills)
	for _, e := range result.Errors {
		log.Printf("Import warning: %s", e)
	}
}
