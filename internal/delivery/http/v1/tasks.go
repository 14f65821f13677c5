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

type taskResponse struct {
	ID           string    `json:"id"`
	Index        *int      `json:"index"`
	Title        string    `json:"title"`
	Content      *string   `json:"content"`
	Status       string    `json:"status"`
	AssigneeID   *string   `json:"assignee_id"`
	TaskLabelIDs []string  `json:"task_label_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	labelIDs := task.LabelIDs
	if labelIDs == nil {
		labelIDs = []string{}
	}
	return taskResponse{
		ID:           task.ID,
		Index:        task.Index,
		Title:        task.Title,
		Content:      task.Description,
		Status:       task.Status,
		AssigneeID:   task.AssigneeID,
		TaskLabelIDs: labelIDs,
		CreatedAt:    task.CreatedAt,
	}
}

type createTaskRequest struct {
	Index        *int     `json:"index"`
	Title        string   `json:"title" binding:"required,max=255"`
	Content      *string  `json:"content"`
	Status       string   `json:"status" binding:"required"`
	AssigneeID   *string  `json:"assignee_id"`
	TaskLabelIDs []string `json:"task_label_ids" binding:"omitempty,dive,required"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	task, err := h.tasks.Create(c, services.CreateTaskParams{
		Index:       req.Index,
		Title:       req.Title,
		Description: req.Content,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.TaskLabelIDs,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.GetByID(c, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

// listTasksQuery holds the filter criteria. Absent parameters impose no
// constraint.
type listTasksQuery struct {
	TitleCont  *string `form:"titleCont"`
	AssigneeID *string `form:"assigneeId"`
	Status     *string `form:"status"`
	LabelID    *string `form:"labelId"`
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	var query listTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBindError(err))
		return
	}

	tasks, err := h.tasks.List(c, models.TaskFilter{
		TitleCont:  query.TitleCont,
		AssigneeID: query.AssigneeID,
		Status:     query.Status,
		LabelID:    query.LabelID,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}
	c.Header(totalCountHeader, strconv.Itoa(len(response)))
	c.JSON(http.StatusOK, response)
}

type updateTaskRequest struct {
	Index        nullable.Field[int]      `json:"index"`
	Title        nullable.Field[string]   `json:"title"`
	Content      nullable.Field[string]   `json:"content"`
	Status       nullable.Field[string]   `json:"status"`
	AssigneeID   nullable.Field[string]   `json:"assignee_id"`
	TaskLabelIDs nullable.Field[[]string] `json:"task_label_ids"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	task, err := h.tasks.Update(c, c.Param("id"), services.UpdateTaskParams{
		Index:       req.Index,
		Title:       req.Title,
		Description: req.Content,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.TaskLabelIDs,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	err := h.tasks.Delete(c, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
