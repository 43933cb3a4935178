package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/tenzind12/housing/internal/config"
	"github.com/tenzind12/housing/internal/geocode"
	"github.com/tenzind12/housing/internal/handler"
	"github.com/tenzind12/housing/internal/middleware"
	"github.com/tenzind12/housing/internal/mongo"
	"github.com/tenzind12/housing/internal/repository"
	"github.com/tenzind12/housing/internal/service"
	"github.com/tenzind12/housing/internal/uploader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	mongoClient := mongo.NewClient(cfg.MongoURI)

	listingRepo := repository.NewListingRepository(db)
	photoRepo := repository.NewPhotoRepository(mongoClient, cfg.MongoDB, cfg.PublicBaseURL)

	geocoder := geocode.NewClient(cfg.Geocode.Endpoint, cfg.Geocode.APIKey, cfg.Geocode.Timeout)
	coordinator := uploader.NewCoordinator(photoRepo)
	submission := service.NewSubmissionService(geocoder, coordinator, listingRepo)

	listingHandler := &handler.ListingHandler{Repo: listingRepo, Submission: submission}
	photoHandler := &handler.PhotoHandler{Repo: photoRepo}

	r := gin.Default()
	api := r.Group("/api")

	protected := api.Group("/")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))

	listingHandler.RegisterRoutes(api, protected)
	photoHandler.RegisterRoutes(api)

	log.Printf("Housing service running on :%s …", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
