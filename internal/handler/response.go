package handler

import (
	"errors"
	"net/http"

	"github.com/Baaaki/trail-catalog/internal/middleware"
	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindBadRequest, service.KindUnsupportedMedia:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"success": false, "message": ..., "errors": ...}.
// Errors that are not service errors are logged and hidden behind a generic
// message.
func respondError(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	body := gin.H{
		"success": false,
		"message": se.Message,
	}
	if len(se.Fields) > 0 {
		body["errors"] = se.Fields
	}
	c.JSON(statusOf(se.Kind), body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": msg,
	})
}

// currentActor reads the caller set by middleware.AuthMiddleware.
func currentActor(c *gin.Context) service.Actor {
	actor := service.Actor{UserID: c.GetString(middleware.ContextUserID)}
	if role, ok := c.Get(middleware.ContextUserRole); ok {
		actor.Role, _ = role.(models.Role)
	}
	return actor
}
