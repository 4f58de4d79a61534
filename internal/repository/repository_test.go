package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chat-api/internal/models"
	"chat-api/internal/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, users *UserRepository, name, email string) *models.User {
	t.Helper()
	u, err := users.Register(name, email, "secret123", "")
	require.NoError(t, err)
	return u
}

func newRepos(t *testing.T) (*UserRepository, *ChatRepository, *MessageRepository) {
	t.Helper()
	db := newTestDB(t)
	users := &UserRepository{DB: db}
	chats := &ChatRepository{DB: db}
	messages := &MessageRepository{DB: db, Chats: chats}
	return users, chats, messages
}
