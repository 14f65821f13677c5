package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleHealthz(c *gin.Context)

	HandleCreateUser(c *gin.Context)
	HandleGetUser(c *gin.Context)
	HandleListUsers(c *gin.Context)
	HandleUpdateUser(c *gin.Context)
	HandleDeleteUser(c *gin.Context)

	HandleCreateTaskStatus(c *gin.Context)
	HandleGetTaskStatus(c *gin.Context)
	HandleListTaskStatuses(c *gin.Context)
	HandleUpdateTaskStatus(c *gin.Context)
	HandleDeleteTaskStatus(c *gin.Context)

	HandleCreateLabel(c *gin.Context)
	HandleGetLabel(c *gin.Context)
	HandleListLabels(c *gin.Context)
	HandleUpdateLabel(c *gin.Context)
	HandleDeleteLabel(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleListTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

// Pinger reports whether the storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlerImpl struct {
	logger   zerolog.Logger
	pinger   Pinger
	auth     services.AuthService
	users    services.UserService
	statuses services.TaskStatusService
	labels   services.LabelService
	tasks    services.TaskService
}

func New(
	logger zerolog.Logger,
	pinger Pinger,
	authService services.AuthService,
	userService services.UserService,
	taskStatusService services.TaskStatusService,
	labelService services.LabelService,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger:   logger,
		pinger:   pinger,
		auth:     authService,
		users:    userService,
		statuses: taskStatusService,
		labels:   labelService,
		tasks:    taskService,
	}
}

// RegisterRoutes mounts the API under router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.POST("/login", h.HandleLogin)
	router.GET("/healthz", h.HandleHealthz)
	router.POST("/users", h.HandleCreateUser)

	authorized := router.Group("", h.HandleAuthMiddleware)

	authorized.GET("/users", h.HandleListUsers)
	authorized.GET("/users/:id", h.HandleGetUser)
	authorized.PUT("/users/:id", h.HandleUpdateUser)
	authorized.DELETE("/users/:id", h.HandleDeleteUser)

	authorized.GET("/task_statuses", h.HandleListTaskStatuses)
	authorized.POST("/task_statuses", h.HandleCreateTaskStatus)
	authorized.GET("/task_statuses/:id", h.HandleGetTaskStatus)
	authorized.PUT("/task_statuses/:id", h.HandleUpdateTaskStatus)
	authorized.DELETE("/task_statuses/:id", h.HandleDeleteTaskStatus)

	authorized.GET("/labels", h.HandleListLabels)
	authorized.POST("/labels", h.HandleCreateLabel)
	authorized.GET("/labels/:id", h.HandleGetLabel)
	authorized.PUT("/labels/:id", h.HandleUpdateLabel)
	authorized.DELETE("/labels/:id", h.HandleDeleteLabel)

	authorized.GET("/tasks", h.HandleListTasks)
	authorized.POST("/tasks", h.HandleCreateTask)
	authorized.GET("/tasks/:id", h.HandleGetTask)
	authorized.PUT("/tasks/:id", h.HandleUpdateTask)
	authorized.DELETE("/tasks/:id", h.HandleDeleteTask)
}
