package app

import (
	"github.com/adanyl0v/go-task-manager/internal/config"
	"github.com/adanyl0v/go-task-manager/internal/password"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

type serviceSet struct {
	auth     services.AuthService
	users    services.UserService
	statuses services.TaskStatusService
	labels   services.LabelService
	tasks    services.TaskService
}

var globalServices serviceSet

// InitServices wires the services to the opened storage.
func InitServices() {
	jwtCfg := config.Global().JWT
	logger := componentLogger("services")
	hasher := password.NewHasher()

	globalServices = serviceSet{
		auth: services.NewAuthService(
			logger,
			globalStore,
			hasher,
			jwtCfg.Issuer,
			[]byte(jwtCfg.SigningKey),
			jwtCfg.AccessTokenTTL,
		),
		users:    services.NewUserService(logger, globalStore, hasher),
		statuses: services.NewTaskStatusService(logger, globalStore),
		labels:   services.NewLabelService(logger, globalStore),
		tasks:    services.NewTaskService(logger, globalStore),
	}
	globalLogger.Debug().Msg("initialized services")
}
