package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"epicmail-service/internal/models"
	"epicmail-service/internal/observability"
	"epicmail-service/internal/repositories"
	"epicmail-service/internal/telemetry"
	"epicmail-service/internal/validation"
)

// MessageHandler manages direct-message endpoints.
type MessageHandler struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, users: users, audit: audit}
}

// CreateMessage handles POST /api/v1/messages. The sender comes from the
// token; receiver and shape come from the body.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	userID := c.GetInt("userID")

	fields, ok := bindStrict(c, "subject", "message", "sendTo", "status")
	if !ok {
		return
	}

	if verr := validation.ValidateMessage(fields["subject"], fields["message"], fields["sendTo"], fields["status"]); verr != nil {
		rejectValidation(c, verr)
		return
	}

	subject := fields["subject"].(string)
	body := fields["message"].(string)
	status := fields["status"].(string)
	receiverID, _ := validation.AsUserID(fields["sendTo"])

	if receiverID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot send a message to yourself"})
		return
	}

	exists, err := h.users.UserExists(c.Request.Context(), receiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify receiver"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d does not exist", receiverID)})
		return
	}

	msg, err := h.messages.CreateMessage(c.Request.Context(), subject, userID, receiverID, body, status)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncMessageStored("direct")
	h.emitAudit(c, "INFO", "Message created")
	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

// ListReceived returns messages addressed to the caller.
func (h *MessageHandler) ListReceived(c *gin.Context) {
	userID := c.GetInt("userID")
	msgs, err := h.messages.ListReceived(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": msgs})
}

// ListSent returns messages the caller sent.
func (h *MessageHandler) ListSent(c *gin.Context) {
	userID := c.GetInt("userID")
	msgs, err := h.messages.ListSent(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": msgs})
}

// ListUnread returns received messages still unread.
func (h *MessageHandler) ListUnread(c *gin.Context) {
	userID := c.GetInt("userID")
	msgs, err := h.messages.ListUnread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": msgs})
}

// GetMessage returns a single message. Fetching as the receiver marks it
// read; fetching an already-read message leaves it unchanged.
func (h *MessageHandler) GetMessage(c *gin.Context) {
	messageID, ok := parseIDParam(c, "message_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	// Existence check first so a missing id yields 404 before any
	// ownership verdict.
	exists, err := h.messages.MessageExists(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load message"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Message with id %d does not exist", messageID)})
		return
	}

	msg, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to load message"})
		return
	}

	if msg.SenderID != userID && msg.ReceiverID != userID {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to view this message"})
		return
	}

	if msg.ReceiverID == userID && msg.Status == models.StatusUnread {
		if err := h.messages.MarkRead(c.Request.Context(), messageID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update message"})
			return
		}
		msg.Status = models.StatusRead
	}

	c.JSON(http.StatusOK, gin.H{"data": msg})
}

// DeleteMessage removes a message and returns the deleted record. Either
// party may delete.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseIDParam(c, "message_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	exists, err := h.messages.MessageExists(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load message"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Message with id %d does not exist", messageID)})
		return
	}

	msg, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to load message"})
		return
	}

	if msg.SenderID != userID && msg.ReceiverID != userID {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to delete this message"})
		return
	}

	deleted, err := h.messages.DeleteMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.emitAudit(c, "INFO", "Message deleted")
	c.JSON(http.StatusOK, gin.H{"data": deleted})
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
