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

type labelResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func newLabelResponse(label *models.Label) labelResponse {
	return labelResponse{
		ID:        label.ID,
		Name:      label.Name,
		CreatedAt: label.CreatedAt,
	}
}

type createLabelRequest struct {
	Name string `json:"name" binding:"required,min=3,max=1000"`
}

func (h *handlerImpl) HandleCreateLabel(c *gin.Context) {
	var req createLabelRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	label, err := h.labels.Create(c, services.CreateLabelParams{Name: req.Name})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, newLabelResponse(label))
}

func (h *handlerImpl) HandleGetLabel(c *gin.Context) {
	label, err := h.labels.GetByID(c, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newLabelResponse(label))
}

func (h *handlerImpl) HandleListLabels(c *gin.Context) {
	labels, err := h.labels.List(c)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	response := make([]labelResponse, len(labels))
	for i, label := range labels {
		response[i] = newLabelResponse(label)
	}
	c.Header(totalCountHeader, strconv.Itoa(len(response)))
	c.JSON(http.StatusOK, response)
}

type updateLabelRequest struct {
	Name nullable.Field[string] `json:"name"`
}

func (h *handlerImpl) HandleUpdateLabel(c *gin.Context) {
	var req updateLabelRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	label, err := h.labels.Update(c, c.Param("id"), services.UpdateLabelParams{Name: req.Name})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newLabelResponse(label))
}

func (h *handlerImpl) HandleDeleteLabel(c *gin.Context) {
	err := h.labels.Delete(c, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
