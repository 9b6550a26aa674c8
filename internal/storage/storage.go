package storage

import (
	"context"
	"errors"
	"time"

	"mentorlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: record not found")

type Storage interface {
	SaveConversation(conv *models.Conversation) error
	GetConversationByID(id string) (*models.Conversation, error)
	FindConversationByMembers(userA, userB string) (*models.Conversation, error)
	ListConversationsForUser(userID string) ([]models.Conversation, error)

	SaveMessage(msg *models.Message) error
	ListMessages(conversationID string) ([]models.Message, error)

	PublishMessage(msg models.Message) error
	SubscribeBroadcast() *redis.PubSub
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveConversation persists a conversation in PostgreSQL.
func (s *Service) SaveConversation(conv *models.Conversation) error {
	return s.DB.Save(conv).Error
}

// GetConversationByID loads one conversation by its ID.
func (s *Service) GetConversationByID(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindConversationByMembers returns the conversation between the two given
// users, or ErrNotFound if they have never talked.
func (s *Service) FindConversationByMembers(userA, userB string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.
		Where("members @> ARRAY[?, ?]::text[]", userA, userB).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversationsForUser returns every conversation the user participates
// in, most recently updated first.
func (s *Service) ListConversationsForUser(userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.DB.
		Where("members @> ARRAY[?]::text[]", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}

// SaveMessage persists a message and bumps the owning conversation's
// updated_at so the directory ordering stays current.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		return err
	}
	return s.DB.Model(&models.Conversation{}).
		Where("id = ?", msg.ConversationID).
		Update("updated_at", time.Now().UTC()).Error
}

// ListMessages returns the full message history of a conversation in
// creation order. This is the snapshot the clients fetch on room entry.
func (s *Service) ListMessages(conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}
