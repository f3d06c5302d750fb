// Package handler exposes user management over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"user-management-api/internal/account/domain"
	"user-management-api/internal/server/middleware"
	"user-management-api/internal/user/service"
)

// Handler serves the /users routes.
type Handler struct {
	users *service.UserService
}

// NewHandler returns the user HTTP handler.
func NewHandler(users *service.UserService) *Handler {
	return &Handler{users: users}
}

// Register mounts the user routes on the given group. Deletion is restricted
// to admins and the account owner.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", middleware.RequireAdminOrSelf("id"), h.Delete)
}

type createRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

type updateRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	Status    *string `json:"status"`
}

// List returns all users.
// GET /users
func (h *Handler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	out := make([]*userResponse, len(users))
	for i, u := range users {
		out[i] = userToResponse(u)
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one user by id.
// GET /users/:id
func (h *Handler) Get(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, userToResponse(u))
}

// Create registers a new user.
// POST /users
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	u, err := h.users.Create(c.Request.Context(), service.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      domain.Role(req.Role),
		Status:    domain.Status(req.Status),
	})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, userToResponse(u))
}

// Update applies a partial update to one user.
// PUT /users/:id
func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in := service.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		in.Status = &status
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, userToResponse(u))
}

// Delete removes one user and, through the schema cascade, their sessions.
// DELETE /users/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userToResponse(a *domain.Account) *userResponse {
	if a == nil {
		return nil
	}
	return &userResponse{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      string(a.Role),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
