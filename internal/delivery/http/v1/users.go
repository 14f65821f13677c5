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

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

type createUserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=255"`
	FirstName *string `json:"first_name" binding:"omitempty,max=255"`
	LastName  *string `json:"last_name" binding:"omitempty,max=255"`
	Password  string  `json:"password" binding:"required,min=3,max=255"`
}

// HandleCreateUser is the public sign-up. It never grants admin rights.
func (h *handlerImpl) HandleCreateUser(c *gin.Context) {
	var req createUserRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	user, err := h.users.Create(c, services.CreateUserParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *handlerImpl) HandleGetUser(c *gin.Context) {
	user, err := h.users.GetByID(c, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *handlerImpl) HandleListUsers(c *gin.Context) {
	users, err := h.users.List(c)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	response := make([]userResponse, len(users))
	for i, user := range users {
		response[i] = newUserResponse(user)
	}
	c.Header(totalCountHeader, strconv.Itoa(len(response)))
	c.JSON(http.StatusOK, response)
}

type updateUserRequest struct {
	Email     nullable.Field[string] `json:"email"`
	FirstName nullable.Field[string] `json:"first_name"`
	LastName  nullable.Field[string] `json:"last_name"`
	Password  nullable.Field[string] `json:"password"`
}

func (h *handlerImpl) HandleUpdateUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		h.logger.Error().Err(errMissingActor).Msg("failed to get actor")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	var req updateUserRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	user, err := h.users.Update(c, actor, c.Param("id"), services.UpdateUserParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *handlerImpl) HandleDeleteUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		h.logger.Error().Err(errMissingActor).Msg("failed to get actor")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	err := h.users.Delete(c, actor, c.Param("id"))
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
