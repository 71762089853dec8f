package handler

import (
	"net/http"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewUserHandler(authService *service.AuthService, userService *service.UserService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

// Authenticate logs the caller in, registering the account on first contact.
func (h *UserHandler) Authenticate(c *gin.Context) {
	var req service.AuthRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Authentication request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.authService.Authenticate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	status, message := http.StatusOK, "User authenticated"
	if res.Created {
		status, message = http.StatusCreated, "User created and authenticated"
	}

	c.JSON(status, gin.H{
		"success":  true,
		"message":  message,
		"token":    res.Token,
		"id":       res.User.ID,
		"email":    res.User.Email,
		"username": res.User.Username,
		"role":     res.User.Role,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

func (h *UserHandler) Update(c *gin.Context) {
	var in map[string]any
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), currentActor(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) AddFavourite(c *gin.Context) {
	favourites, err := h.userService.AddFavourite(c.Request.Context(), currentActor(c), c.Param("id"), c.Param("trailId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Trail added to favourites",
		"favourites": favourites,
	})
}

func (h *UserHandler) RemoveFavourite(c *gin.Context) {
	if err := h.userService.RemoveFavourite(c.Request.Context(), currentActor(c), c.Param("id"), c.Param("trailId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Favourites(c *gin.Context) {
	trails, err := h.userService.Favourites(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if trails == nil {
		trails = []models.Trail{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(trails),
		"favourites": trails,
	})
}
