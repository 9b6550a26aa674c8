package handler

import (
	"errors"
	"net/http"
	"strings"

	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createMessageRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

// ListConversations returns the caller's conversations, most recently
// updated first.
func (h *Handler) ListConversations(c *gin.Context) {
	userID := c.GetString(userIDKey)

	convs, err := h.Storage.ListConversationsForUser(userID)
	if err != nil {
		h.Logger.Error("list conversations", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, convs)
}

// CreateConversation opens (or returns the existing) conversation between
// the caller and the given mentor.
func (h *Handler) CreateConversation(c *gin.Context) {
	userID := c.GetString(userIDKey)

	mentorID := c.Query("mentor_id")
	if mentorID == "" || mentorID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mentor_id is required"})
		return
	}

	existing, err := h.Storage.FindConversationByMembers(userID, mentorID)
	if err == nil {
		c.JSON(http.StatusOK, existing)
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		h.Logger.Error("find conversation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	conv := &models.Conversation{Members: []string{userID, mentorID}}
	if err := h.Storage.SaveConversation(conv); err != nil {
		h.Logger.Error("save conversation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// ListMessages returns the full history of one conversation in creation
// order. Callers must be a member of the conversation.
func (h *Handler) ListMessages(c *gin.Context) {
	userID := c.GetString(userIDKey)
	conversationID := c.Param("id")

	conv, err := h.Storage.GetConversationByID(conversationID)
	if err != nil || !conv.HasMember(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	msgs, err := h.Storage.ListMessages(conversationID)
	if err != nil {
		h.Logger.Error("list messages", zap.String("conversation_id", conversationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, msgs)
}

// CreateMessage persists a message and publishes it on the broadcast
// channel so room members receive it over the push channel. The created
// message is echoed in the response, but clients rely on the push delivery
// to surface it in their logs.
func (h *Handler) CreateMessage(c *gin.Context) {
	userID := c.GetString(userIDKey)

	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_id and content are required"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}

	conv, err := h.Storage.GetConversationByID(req.ConversationID)
	if err != nil || !conv.HasMember(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	msg := &models.Message{
		ConversationID: req.ConversationID,
		SenderID:       userID,
		Content:        req.Content,
	}
	if err := h.Storage.SaveMessage(msg); err != nil {
		h.Logger.Error("save message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	if err := h.Storage.PublishMessage(*msg); err != nil {
		// The message is persisted; a failed publish only delays delivery
		// until the next snapshot fetch.
		h.Logger.Error("publish message", zap.String("message_id", msg.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, msg)
}
