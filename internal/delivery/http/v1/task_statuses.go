package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/nullable"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

const totalCountHeader = "X-Total-Count"

type taskStatusResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func newTaskStatusResponse(status *models.TaskStatus) taskStatusResponse {
	return taskStatusResponse{
		ID:        status.ID,
		Name:      status.Name,
		Slug:      status.Slug,
		CreatedAt: status.CreatedAt,
	}
}

type createTaskStatusRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Slug string `json:"slug" binding:"required,slug,max=255"`
}

func (h *handlerImpl) HandleCreateTaskStatus(c *gin.Context) {
	var req createTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	status, err := h.statuses.Create(c, services.CreateTaskStatusParams{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, newTaskStatusResponse(status))
}

func (h *handlerImpl) HandleGetTaskStatus(c *gin.Context) {
	status, err := h.statuses.GetByID(c, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newTaskStatusResponse(status))
}

func (h *handlerImpl) HandleListTaskStatuses(c *gin.Context) {
	statuses, err := h.statuses.List(c)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	response := make([]taskStatusResponse, len(statuses))
	for i, status := range statuses {
		response[i] = newTaskStatusResponse(status)
	}
	c.Header(totalCountHeader, strconv.Itoa(len(response)))
	c.JSON(http.StatusOK, response)
}

type updateTaskStatusRequest struct {
	Name nullable.Field[string] `json:"name"`
	Slug nullable.Field[string] `json:"slug"`
}

func (h *handlerImpl) HandleUpdateTaskStatus(c *gin.Context) {
	var req updateTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	status, err := h.statuses.Update(c, c.Param("id"), services.UpdateTaskStatusParams{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newTaskStatusResponse(status))
}

func (h *handlerImpl) HandleDeleteTaskStatus(c *gin.Context) {
	err := h.statuses.Delete(c, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
