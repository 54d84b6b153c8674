package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
)

type mockMessageRepo struct {
	messages []models.Message
}

func (m *mockMessageRepo) ListLatest(ctx context.Context, limit int) ([]models.Message, error) {
	start := len(m.messages) - limit
	if start < 0 {
		start = 0
	}
	return append([]models.Message(nil), m.messages[start:]...), nil
}

func (m *mockMessageRepo) Insert(ctx context.Context, msg *models.Message, cap int) error {
	msg.ID = fmt.Sprintf("m%d", len(m.messages)+1)
	m.messages = append(m.messages, *msg)
	if overflow := len(m.messages) - cap; overflow > 0 {
		m.messages = m.messages[overflow:]
	}
	return nil
}

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", FullName: "Ms Adeyemi", Role: models.RoleTeacher}
}

func TestMessagePostStampsAuthor(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessageService(repo, 5, validator.New(), zap.NewNop())

	msg, err := svc.Post(context.Background(), PostMessageRequest{Body: "  Sports day moved to Friday.  "}, teacherClaims())
	require.NoError(t, err)
	assert.Equal(t, "Sports day moved to Friday.", msg.Body)
	assert.Equal(t, "Ms Adeyemi", msg.AuthorName)
	assert.Equal(t, models.RoleTeacher, msg.AuthorRole)
}

func TestMessagePostRejectsBlankBody(t *testing.T) {
	svc := NewMessageService(&mockMessageRepo{}, 5, validator.New(), zap.NewNop())

	_, err := svc.Post(context.Background(), PostMessageRequest{Body: "   "}, teacherClaims())
	require.Error(t, err)

	_, err = svc.Post(context.Background(), PostMessageRequest{Body: "hello"}, nil)
	require.Error(t, err)
}

func TestMessageRoomEvictsPastCap(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessageService(repo, 3, validator.New(), zap.NewNop())

	for i := 1; i <= 5; i++ {
		_, err := svc.Post(context.Background(), PostMessageRequest{Body: fmt.Sprintf("note %d", i)}, teacherClaims())
		require.NoError(t, err)
	}

	messages, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "note 3", messages[0].Body)
	assert.Equal(t, "note 5", messages[2].Body)
}

func TestMessageListClampsLimit(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessageService(repo, 3, validator.New(), zap.NewNop())

	for i := 1; i <= 3; i++ {
		_, err := svc.Post(context.Background(), PostMessageRequest{Body: fmt.Sprintf("note %d", i)}, teacherClaims())
		require.NoError(t, err)
	}

	messages, err := svc.List(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, messages, 3)

	messages, err = svc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
