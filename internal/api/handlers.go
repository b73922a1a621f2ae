package api

import (
	"time"

	"github.com/vytor/flashrecall/internal/repository"
	"github.com/vytor/flashrecall/internal/services"
)

// Server exposes learner progress over JSON.
type Server struct {
	ReviewService services.ReviewService
	StatsService  services.StatsService
	Store         repository.ProgressRepository
	PingTimeout   time.Duration
}

type envelope map[string]any
