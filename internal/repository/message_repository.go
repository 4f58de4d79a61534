package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"chat-api/internal/models"
	"chat-api/internal/pkg/apperr"
)

type MessageRepository struct {
	DB    *gorm.DB
	Chats *ChatRepository
}

// Append persists a message and moves the chat's latest-message pointer.
// The two writes are not transactional with each other; a crash in between
// leaves the pointer one message behind, which the next append repairs.
func (r *MessageRepository) Append(senderID, chatID uint, content string) (*models.Message, error) {
	chat, err := r.Chats.GetWithMembers(chatID)
	if err != nil {
		return nil, err
	}
	isMember, err := r.Chats.IsMember(chatID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.Forbidden("you are not a member of this chat")
	}

	msg := models.Message{SenderID: senderID, ChatID: chatID, Content: content}
	if err := r.DB.Create(&msg).Error; err != nil {
		return nil, err
	}

	err = r.DB.Model(&models.Chat{}).Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"latest_message_id": msg.ID,
			"updated_at":        time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}

	sender, err := r.sender(senderID)
	if err != nil {
		return nil, err
	}
	msg.Sender = sender
	msg.Chat = chat
	return &msg, nil
}

// ListByChat returns the chat's messages oldest first, each with the
// sender's public profile. Only members may read.
func (r *MessageRepository) ListByChat(chatID, callerID uint) ([]models.Message, error) {
	if _, err := r.Chats.GetWithMembers(chatID); err != nil {
		return nil, err
	}
	isMember, err := r.Chats.IsMember(chatID, callerID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.Forbidden("you are not allowed to access this chat")
	}

	var messages []models.Message
	err = r.DB.Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	if err := r.attachSenders(messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) sender(id uint) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// attachSenders batch-fetches the distinct senders and assembles them onto
// the messages.
func (r *MessageRepository) attachSenders(messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}
	seen := map[uint]bool{}
	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			ids = append(ids, m.SenderID)
		}
	}
	var senders []models.User
	if err := r.DB.Find(&senders, ids).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.User, len(senders))
	for _, u := range senders {
		byID[u.ID] = u
	}
	for i := range messages {
		if u, ok := byID[messages[i].SenderID]; ok {
			sender := u
			messages[i].Sender = &sender
		}
	}
	return nil
}
