package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/config"
	"github.com/oksasatya/eduflex-backend/internal/application"
	"github.com/oksasatya/eduflex-backend/internal/container"
	"github.com/oksasatya/eduflex-backend/internal/infrastructure/filestore"
	"github.com/oksasatya/eduflex-backend/internal/infrastructure/notify"
	"github.com/oksasatya/eduflex-backend/internal/infrastructure/search"
	handlers "github.com/oksasatya/eduflex-backend/internal/interface/http"
	"github.com/oksasatya/eduflex-backend/internal/router/modules"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

// Deps is everything the modules are built from. Optional collaborators
// (Redis, Index, Files) may be nil.
type Deps struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Store    container.Store
	Redis    *redis.Client
	JWT      *helpers.JWTManager
	Hasher   *helpers.PasswordHasher
	Notifier application.AccountNotifier
	Index    application.CourseIndex
	Files    application.FileStore
	Health   []modules.HealthCheck
}

func depsFromContainer() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	d := Deps{
		Config: cfg,
		Logger: logger,
		Store:  container.GetStore(),
		Redis:  container.GetRedis(),
		JWT:    container.GetJWT(),
		Hasher: helpers.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers),
	}
	if pub := container.GetRabbitPub(); pub != nil {
		d.Notifier = notify.NewQueueNotifier(pub, cfg, logger)
	} else {
		d.Notifier = notify.LogNotifier{Logger: logger}
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewCourseIndex(es, cfg.ESCoursesIndex)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Files = filestore.NewGCS(gcs, cfg.GCSBucket)
	}
	if pool := container.GetPGPool(); pool != nil {
		d.Health = append(d.Health, modules.HealthCheck{Name: "postgres", Check: pool.Ping})
	}
	if d.Redis != nil {
		d.Health = append(d.Health, modules.HealthCheck{Name: "redis", Check: modules.RedisPing(d.Redis)})
	}
	return d
}

// Wire builds services and handlers from d and adds every module to r. The
// returned drain blocks until background work started by requests has finished.
func Wire(r *Registry, d Deps) (drain func()) {
	cfg := d.Config
	s := d.Store

	authSvc := application.NewAuthService(s.Users, d.JWT, d.Hasher, d.Notifier, d.Logger, cfg.PasswordMinLength)
	resetSvc := application.NewPasswordResetService(s.Users, d.Hasher, d.Notifier, d.Logger, cfg.ResetTokenTTL, cfg.PasswordMinLength)
	resetSvc.AsyncDelivery = true
	profiles := application.NewProfileResolver(s.Users, d.Redis, cfg.ProfileCacheTTL, d.Logger)
	courseSvc := application.NewCourseService(s.Courses, s.Users, profiles, d.Index, d.Logger)
	assignmentSvc := application.NewAssignmentService(s.Assignments, s.Courses, d.Files, d.Logger)
	userSvc := application.NewUserService(s.Users, authSvc, profiles, d.Logger)

	r.Add(modules.NewHealthModule(d.Health...))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, resetSvc, s.AuditLogs, d.Logger), authSvc))
	r.Add(modules.NewCourseModule(handlers.NewCourseHandler(courseSvc, d.Logger), authSvc))
	r.Add(modules.NewAssignmentModule(handlers.NewAssignmentHandler(assignmentSvc, d.Logger), authSvc))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, d.Logger), authSvc))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	return resetSvc.Wait
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) (drain func()) {
	return Wire(r, depsFromContainer())
}
