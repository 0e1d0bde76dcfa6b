package api

import (
	"net/http"

	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler serves trainer/trainee messages.
type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SendFeedbackRequest names the other party. A trainee may omit trainerId to
// write to their assigned trainer; a trainer must set traineeId.
type SendFeedbackRequest struct {
	TrainerID string `json:"trainerId"`
	TraineeID string `json:"traineeId"`
	Message   string `json:"message" binding:"required"`
}

type MarkReadRequest struct {
	TrainerID string `json:"trainerId"`
	TraineeID string `json:"traineeId" binding:"required"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type UnreadResponse struct {
	Unread int64 `json:"unread"`
}

// SendFeedback godoc
// @Summary Send a message to the other side of a trainer/trainee pair
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body SendFeedbackRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} gin.H "Empty message or no trainer assigned"
// @Failure 403 {object} gin.H "Not part of the pair"
// @Failure 429 {object} gin.H "Sending too fast"
// @Router /feedback [post]
func (h *FeedbackHandler) SendFeedback(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req SendFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	msg, err := h.feedbackService.Send(c.Request.Context(), sess, service.SendFeedbackInput{
		TrainerID: req.TrainerID,
		TraineeID: req.TraineeID,
		Message:   req.Message,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListFeedback godoc
// @Summary List the messages the caller may see, newest first
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Message
// @Router /feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	msgs, err := h.feedbackService.List(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// ListConversations godoc
// @Summary Group the caller's messages by conversation, most recent first
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Conversation
// @Router /feedback/conversations [get]
func (h *FeedbackHandler) ListConversations(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	convs, err := h.feedbackService.Conversations(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

// MarkRead godoc
// @Summary Mark a trainee's messages to their trainer as read
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pair body MarkReadRequest true "Conversation"
// @Success 200 {object} MarkReadResponse
// @Router /feedback/read [post]
func (h *FeedbackHandler) MarkRead(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	n, err := h.feedbackService.MarkRead(c.Request.Context(), sess, req.TrainerID, req.TraineeID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MarkReadResponse{Updated: n})
}

// UnreadCount godoc
// @Summary Count unread trainee messages for a trainer
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param trainerId query string false "Trainer (admins only; defaults to caller)"
// @Success 200 {object} UnreadResponse
// @Router /feedback/unread [get]
func (h *FeedbackHandler) UnreadCount(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	n, err := h.feedbackService.UnreadCount(c.Request.Context(), sess, c.Query("trainerId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, UnreadResponse{Unread: n})
}

// DismissFeedback godoc
// @Summary Delete a message
// @Tags Feedback
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Success 204 "Deleted"
// @Router /feedback/{messageId} [delete]
func (h *FeedbackHandler) DismissFeedback(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.feedbackService.Dismiss(c.Request.Context(), sess, c.Param("messageId")); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamFeedback streams the caller's messages as they change.
func (h *FeedbackHandler) StreamFeedback(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	sub, err := h.feedbackService.Subscribe(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	streamSnapshots(c, sub)
}
