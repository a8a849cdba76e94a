package main

import (
	"log"
	"net/http"
	"time"

	"shuttle-tracker/api"
	"shuttle-tracker/cache"
	"shuttle-tracker/config"
	"shuttle-tracker/eta"
	"shuttle-tracker/fleet"
)

func main() {
	// Initialize configuration
	config.InitConfig()
	cfg := config.Cfg

	// Open the persisted collections
	registry, err := fleet.NewRegistry(cfg.Data.Dir)
	if err != nil {
		log.Fatal(err)
	}

	// Optional Redis rank cache
	rankCache := cache.InitRankCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.Redis.RankTTLSeconds)*time.Second)

	server := &api.Server{
		Registry:       registry,
		ETA:            eta.NewCalculator(cfg.ETA.AverageSpeedMPH),
		Rank:           rankCache,
		PublicURL:      cfg.Server.PublicURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}

	// Start the server
	log.Printf("Server started on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, server.Routes()))
}
