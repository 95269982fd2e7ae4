package main

import (
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/trial-reports/internal/config"
	"github.com/yourusername/trial-reports/internal/exports"
)

func setupExports(cfg *config.Config) (*exports.Store, error) {
	opt, err := redis.ParseURL(cfg.ExportRedisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	ttlMinutes := cfg.ExportExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 10
	}
	return exports.NewStore(client, time.Duration(ttlMinutes)*time.Minute), nil
}
