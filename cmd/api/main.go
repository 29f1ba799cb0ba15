package main

import (
	"net/http"

	"components-api/internal/config"
	"components-api/internal/geocode"
	"components-api/internal/handler"
	"components-api/internal/location"
	"components-api/internal/repository"
	"components-api/internal/selector"
	"components-api/internal/service"
	"components-api/internal/uploader"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	// Geocoding result cache
	rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddress})
	defer rdb.Close()
	cache := repository.NewResultCache(rdb, config.GeocodeCacheTTL)

	// Initialize layers
	client := geocode.NewClient(config.NominatimBaseURL, config.NominatimUserAgent, log.Logger)
	searchService := service.NewSearchService(client, cache, log.Logger)
	sessions := location.NewManager(searchService, config.DebounceWait, log.Logger)

	geocodeHandler := handler.NewGeocodeHandler(searchService)
	locationHandler := handler.NewLocationHandler(sessions)
	uploadHandler := handler.NewUploadHandler(func() *uploader.Uploader {
		return uploader.New(config.ImageUploadURL, config.ImageMaxBytes, log.Logger)
	})
	selectorHandler := handler.NewSelectorHandler(func(dashboardID string) *selector.Selector {
		return selector.New(config.DashboardBaseURL, dashboardID, config.DebounceWait, log.Logger)
	})

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/geocode", geocodeHandler.Geocode)

	components := r.Group("/components")
	locationHandler.RegisterRoutes(components.Group("/location"))
	components.GET("/scroll", locationHandler.ScrollState)
	components.POST("/upload", uploadHandler.Upload)
	components.GET("/dashboard/:dashboardID/users/search", selectorHandler.SearchUsers)
	components.PUT("/dashboard/:dashboardID/select", selectorHandler.SelectUser)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.Run(config.ServerAddress)
}
