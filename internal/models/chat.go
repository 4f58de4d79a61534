package models

import "time"

// Chat is a one-to-one or group conversation. A one-to-one chat has exactly
// two members and no admin; a group chat has an admin who must be a member.
type Chat struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	Name            string    `json:"name"`
	IsGroup         bool      `gorm:"not null;default:false" json:"isGroup"`
	AdminID         *uint     `json:"adminId,omitempty"`
	LatestMessageID *uint     `json:"-"`
	Users           []User    `gorm:"many2many:chat_users" json:"users"`
	LatestMessage   *Message  `gorm:"-" json:"latestMessage,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AccessChatRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

type CreateGroupRequest struct {
	Name  string `json:"name" binding:"required"`
	Users []uint `json:"users" binding:"required"`
}

type RenameGroupRequest struct {
	ChatID   uint   `json:"chatId" binding:"required"`
	ChatName string `json:"chatName" binding:"required"`
}

type GroupMemberRequest struct {
	ChatID uint `json:"chatId" binding:"required"`
	UserID uint `json:"userId" binding:"required"`
}
