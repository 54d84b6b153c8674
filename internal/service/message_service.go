package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

type messageRepository interface {
	ListLatest(ctx context.Context, limit int) ([]models.Message, error)
	Insert(ctx context.Context, msg *models.Message, cap int) error
}

// MessageService runs the portal-wide chat room. The room keeps at most
// maxMessages entries; older ones are evicted on insert. There are no
// delivery guarantees beyond what a poll of ListLatest observes.
type MessageService struct {
	repo        messageRepository
	maxMessages int
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMessageService constructs the message service.
func NewMessageService(repo messageRepository, maxMessages int, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if maxMessages <= 0 {
		maxMessages = 200
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{repo: repo, maxMessages: maxMessages, validator: validate, logger: logger}
}

// PostMessageRequest describes the send payload.
type PostMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// List returns up to limit of the newest messages, oldest first.
func (s *MessageService) List(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > s.maxMessages {
		limit = s.maxMessages
	}
	messages, err := s.repo.ListLatest(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Post appends a chat message stamped with the author's identity.
func (s *MessageService) Post(ctx context.Context, req PostMessageRequest, claims *models.JWTClaims) (*models.Message, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, appErrors.Validation("body", "must not be blank")
	}

	msg := &models.Message{
		AuthorID:   claims.UserID,
		AuthorName: claims.FullName,
		AuthorRole: claims.Role,
		Body:       body,
	}
	if err := s.repo.Insert(ctx, msg, s.maxMessages); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post message")
	}
	return msg, nil
}
