package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"chat-api/internal/models"
	"chat-api/internal/pkg/apperr"
)

type ChatRepository struct {
	DB *gorm.DB
}

// AccessOrCreateDirect finds the one-to-one chat between the two users,
// creating it when absent. Calling it twice always yields the same chat.
func (r *ChatRepository) AccessOrCreateDirect(selfID, otherID uint) (*models.Chat, error) {
	if selfID == otherID {
		return nil, apperr.BadRequest("cannot open a chat with yourself")
	}

	var count int64
	if err := r.DB.Model(&models.User{}).Where("id = ?", otherID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.NotFound("user", otherID)
	}

	// Same double self-join on the membership table whichever side calls.
	var chat models.Chat
	err := r.DB.
		Joins("JOIN chat_users cu1 ON cu1.chat_id = chats.id AND cu1.user_id = ?", selfID).
		Joins("JOIN chat_users cu2 ON cu2.chat_id = chats.id AND cu2.user_id = ?", otherID).
		Where("chats.is_group = ?", false).
		First(&chat).Error
	if err == nil {
		return r.GetWithMembers(chat.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var members []models.User
	if err := r.DB.Find(&members, []uint{selfID, otherID}).Error; err != nil {
		return nil, err
	}
	chat = models.Chat{IsGroup: false, Users: members}
	if err := r.DB.Create(&chat).Error; err != nil {
		return nil, err
	}
	return r.GetWithMembers(chat.ID)
}

// CreateGroup makes the creator the admin. Total membership, creator
// included, must be at least three.
func (r *ChatRepository) CreateGroup(name string, userIDs []uint, creatorID uint) (*models.Chat, error) {
	ids := map[uint]bool{creatorID: true}
	for _, id := range userIDs {
		ids[id] = true
	}
	if len(ids) < 3 {
		return nil, apperr.BadRequest("a group chat requires at least 2 more users")
	}

	memberIDs := make([]uint, 0, len(ids))
	for id := range ids {
		memberIDs = append(memberIDs, id)
	}
	var members []models.User
	if err := r.DB.Find(&members, memberIDs).Error; err != nil {
		return nil, err
	}
	if len(members) != len(memberIDs) {
		return nil, apperr.BadRequest("one or more users do not exist")
	}

	chat := models.Chat{
		Name:    name,
		IsGroup: true,
		AdminID: &creatorID,
		Users:   members,
	}
	if err := r.DB.Create(&chat).Error; err != nil {
		return nil, err
	}
	return r.GetWithMembers(chat.ID)
}

// Rename is admin-only.
func (r *ChatRepository) Rename(chatID uint, name string, callerID uint) (*models.Chat, error) {
	chat, err := r.getGroup(chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID == nil || *chat.AdminID != callerID {
		return nil, apperr.Forbidden("only the group admin can rename the chat")
	}
	if err := r.DB.Model(chat).Update("name", name).Error; err != nil {
		return nil, err
	}
	return r.GetWithMembers(chatID)
}

// AddMember is admin-only.
func (r *ChatRepository) AddMember(chatID, userID, callerID uint) (*models.Chat, error) {
	chat, err := r.getGroup(chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID == nil || *chat.AdminID != callerID {
		return nil, apperr.Forbidden("only the group admin can add users")
	}

	isMember, err := r.isMember(chatID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperr.Conflict("user is already a member of this chat")
	}

	var user models.User
	if err := r.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user", userID)
		}
		return nil, err
	}
	if err := r.DB.Model(chat).Association("Users").Append(&user); err != nil {
		return nil, err
	}
	r.DB.Model(chat).Update("updated_at", time.Now())
	return r.GetWithMembers(chatID)
}

// RemoveMember is admin-only, except that any member may remove themself.
// When the admin leaves, admin rights pass to the earliest remaining member.
func (r *ChatRepository) RemoveMember(chatID, userID, callerID uint) (*models.Chat, error) {
	chat, err := r.getGroup(chatID)
	if err != nil {
		return nil, err
	}
	isAdmin := chat.AdminID != nil && *chat.AdminID == callerID
	if !isAdmin && callerID != userID {
		return nil, apperr.Forbidden("only the group admin can remove other users")
	}

	isMember, err := r.isMember(chatID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.BadRequest("user is not a member of this chat")
	}

	if err := r.DB.Model(chat).Association("Users").Delete(&models.User{ID: userID}); err != nil {
		return nil, err
	}

	if chat.AdminID != nil && *chat.AdminID == userID {
		if err := r.reassignAdmin(chat); err != nil {
			return nil, err
		}
	}
	r.DB.Model(chat).Update("updated_at", time.Now())
	return r.GetWithMembers(chatID)
}

// ListForUser returns every chat the user belongs to, most recently updated
// first, with members and the latest message assembled.
func (r *ChatRepository) ListForUser(userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.DB.Preload("Users").
		Joins("JOIN chat_users cu ON cu.chat_id = chats.id AND cu.user_id = ?", userID).
		Order("chats.updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	if err := r.attachLatestMessages(chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *ChatRepository) GetWithMembers(chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.DB.Preload("Users").First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("chat", chatID)
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepository) IsMember(chatID, userID uint) (bool, error) {
	return r.isMember(chatID, userID)
}

func (r *ChatRepository) getGroup(chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.DB.First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("chat", chatID)
	}
	if err != nil {
		return nil, err
	}
	if !chat.IsGroup {
		return nil, apperr.BadRequest("chat is not a group chat")
	}
	return &chat, nil
}

func (r *ChatRepository) isMember(chatID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Table("chat_users").
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ChatRepository) reassignAdmin(chat *models.Chat) error {
	var next struct{ UserID uint }
	err := r.DB.Table("chat_users").
		Select("user_id").
		Where("chat_id = ?", chat.ID).
		Order("user_id ASC").
		Limit(1).
		Scan(&next).Error
	if err != nil {
		return err
	}
	if next.UserID == 0 {
		return r.DB.Model(chat).Update("admin_id", nil).Error
	}
	return r.DB.Model(chat).Update("admin_id", next.UserID).Error
}

// attachLatestMessages resolves each chat's latest-message pointer with one
// batched read for the messages and one for their senders.
func (r *ChatRepository) attachLatestMessages(chats []models.Chat) error {
	ids := make([]uint, 0, len(chats))
	for _, c := range chats {
		if c.LatestMessageID != nil {
			ids = append(ids, *c.LatestMessageID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var messages []models.Message
	if err := r.DB.Find(&messages, ids).Error; err != nil {
		return err
	}
	senderIDs := make([]uint, 0, len(messages))
	for _, m := range messages {
		senderIDs = append(senderIDs, m.SenderID)
	}
	var senders []models.User
	if err := r.DB.Find(&senders, senderIDs).Error; err != nil {
		return err
	}
	senderByID := make(map[uint]models.User, len(senders))
	for _, u := range senders {
		senderByID[u.ID] = u
	}
	msgByID := make(map[uint]models.Message, len(messages))
	for _, m := range messages {
		if sender, ok := senderByID[m.SenderID]; ok {
			s := sender
			m.Sender = &s
		}
		msgByID[m.ID] = m
	}
	for i := range chats {
		if chats[i].LatestMessageID == nil {
			continue
		}
		if m, ok := msgByID[*chats[i].LatestMessageID]; ok {
			msg := m
			chats[i].LatestMessage = &msg
		}
	}
	return nil
}
