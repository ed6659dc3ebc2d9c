package config

import (
	"achievify/configs"
	"achievify/internal/metrics"
	"achievify/internal/service"
	"achievify/internal/storage"
	"achievify/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// Dependencies are the process-scoped resources every handler is built from.
// They are created once in main and passed down explicitly.
type Dependencies struct {
	Config  configs.Config
	Log     *logger.Loggers
	Metrics *metrics.Metrics
	Store   service.Store
	Blobs   storage.BlobStore
	// Redis is nil when no Redis host is configured.
	Redis *redis.Client

	Auth      *service.AuthService
	Todos     *service.TodoService
	Timetable *service.TimetableService
	Planner   *service.PlannerService
	Wall      *service.WallService
}

func NewDependencies(cfg configs.Config, log *logger.Loggers, m *metrics.Metrics, store service.Store, blobStore storage.BlobStore, rdb *redis.Client) *Dependencies {
	v := service.NewValidator()
	blobs := service.NewBlobs(blobStore, cfg.UploadMaxBytes, log, m)
	return &Dependencies{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		Store:     store,
		Blobs:     blobStore,
		Redis:     rdb,
		Auth:      service.NewAuthService(store, v, log, cfg.TokenSecret, cfg.TokenTTL),
		Todos:     service.NewTodoService(store, v, log),
		Timetable: service.NewTimetableService(store, blobs, log),
		Planner:   service.NewPlannerService(store, v, log),
		Wall:      service.NewWallService(store, v, blobs, log),
	}
}
