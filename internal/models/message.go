package models

import "time"

// Message is immutable once created. Sender and Chat are assembled by the
// repositories with explicit follow-up reads, not by database-level joins.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	SenderID  uint      `gorm:"not null;index" json:"senderId"`
	ChatID    uint      `gorm:"not null;index" json:"chatId"`
	Content   string    `gorm:"not null" json:"content"`
	Sender    *User     `gorm:"-" json:"sender,omitempty"`
	Chat      *Chat     `gorm:"-" json:"chat,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
	ChatID  uint   `json:"chatId" binding:"required"`
}
