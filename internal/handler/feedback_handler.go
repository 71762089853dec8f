package handler

import (
	"net/http"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// Create handles POST /feedbacks/:id where id names the rated trail.
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req service.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	feedback, err := h.feedbackService.Create(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) List(c *gin.Context) {
	feedbacks, err := h.feedbackService.List(c.Request.Context(), c.Query("valutazione"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedbackList(feedbacks))
}

func (h *FeedbackHandler) Get(c *gin.Context) {
	feedback, err := h.feedbackService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) Update(c *gin.Context) {
	var req service.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	feedback, err := h.feedbackService.Update(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) Delete(c *gin.Context) {
	if err := h.feedbackService.Delete(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FeedbackHandler) ListByTrail(c *gin.Context) {
	feedbacks, err := h.feedbackService.ListByTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedbackList(feedbacks))
}

func (h *FeedbackHandler) ListByUser(c *gin.Context) {
	feedbacks, err := h.feedbackService.ListByUser(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedbackList(feedbacks))
}

func feedbackList(feedbacks []models.Feedback) []models.Feedback {
	if feedbacks == nil {
		return []models.Feedback{}
	}
	return feedbacks
}
