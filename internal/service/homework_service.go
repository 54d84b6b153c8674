package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

type homeworkRepository interface {
	List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error)
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	Create(ctx context.Context, hw *models.Homework) error
	Update(ctx context.Context, hw *models.Homework) error
	Delete(ctx context.Context, id string) error
}

// HomeworkService handles homework assignments.
type HomeworkService struct {
	repo      homeworkRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHomeworkService constructs the service.
func NewHomeworkService(repo homeworkRepository, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &HomeworkService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("class_type", func(fl validator.FieldLevel) bool {
		return models.ClassType(fl.Field().String()).Valid()
	})
	return svc
}

// CreateHomeworkRequest describes the create payload.
type CreateHomeworkRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ClassType   string `json:"class_type" validate:"required,class_type"`
	DueDate     string `json:"due_date" validate:"required"`
}

// UpdateHomeworkRequest describes the update payload.
type UpdateHomeworkRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ClassType   string `json:"class_type" validate:"required,class_type"`
	DueDate     string `json:"due_date" validate:"required"`
}

// List returns homework with pagination. A parent's listing is scoped to the
// class level their linked student belongs to by the handler.
func (s *HomeworkService) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return items, pagination, nil
}

// Create publishes a new assignment.
func (s *HomeworkService) Create(ctx context.Context, req CreateHomeworkRequest, createdBy string) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	if _, err := models.ParseISODate(req.DueDate); err != nil {
		return nil, appErrors.Validation("due_date", "must be an ISO yyyy-MM-dd date")
	}
	hw := &models.Homework{
		Title:       req.Title,
		Description: req.Description,
		ClassType:   models.ClassType(req.ClassType),
		DueDate:     req.DueDate,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create homework")
	}
	return hw, nil
}

// Update modifies an existing assignment.
func (s *HomeworkService) Update(ctx context.Context, id string, req UpdateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	if _, err := models.ParseISODate(req.DueDate); err != nil {
		return nil, appErrors.Validation("due_date", "must be an ISO yyyy-MM-dd date")
	}
	hw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	hw.Title = req.Title
	hw.Description = req.Description
	hw.ClassType = models.ClassType(req.ClassType)
	hw.DueDate = req.DueDate
	if err := s.repo.Update(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update homework")
	}
	return hw, nil
}

// Delete removes an assignment.
func (s *HomeworkService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete homework")
	}
	return nil
}
