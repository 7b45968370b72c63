package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/internal/repository"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
	"github.com/darsa-app/darsa-api/pkg/timerange"
)

type scheduleRepository interface {
	FindBySlotKey(ctx context.Context, tenantID string, grade int, section string, day models.DayOfWeek, period int) (*models.ScheduleSlot, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.ScheduleSlot, error)
	FindByTeacherAndDay(ctx context.Context, tenantID, teacherID string, day models.DayOfWeek) ([]models.ScheduleSlot, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.ScheduleSlot, error)
	Insert(ctx context.Context, slot *models.ScheduleSlot) error
	Delete(ctx context.Context, tenantID, id string) error
}

// CreateSlotRequest describes payload for allocating a schedule slot. Subject
// and teacher display names are supplied by the caller, which has already
// resolved them against the tenant's directories.
type CreateSlotRequest struct {
	Grade       int    `json:"grade" validate:"required,min=1,max=12"`
	Section     string `json:"section" validate:"required"`
	Day         string `json:"day_of_week" validate:"required"`
	Period      int    `json:"period" validate:"required,min=1,max=12"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	SubjectID   string `json:"subject_id" validate:"required"`
	SubjectName string `json:"subject_name" validate:"required"`
	TeacherID   string `json:"teacher_id" validate:"required"`
	TeacherName string `json:"teacher_name" validate:"required"`
}

// ScheduleService is the only writer of schedule slots. It enforces the
// timetable invariants: a classroom-period holds one assignment, a teacher
// holds no overlapping slots on a day, and a slot ends after it starts.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, logger: logger}
}

// List returns the tenant's full timetable.
func (s *ScheduleService) List(ctx context.Context, tenantID string) ([]models.ScheduleSlot, error) {
	slots, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule slots")
	}
	return slots, nil
}

// Create allocates a new slot after conflict detection. The slot-identity
// lookup runs before the per-teacher scan so the common "slot already taken"
// case short-circuits without iterating the teacher's week. Both checks are
// re-verified server-side on every call; client previews are advisory only.
func (s *ScheduleService) Create(ctx context.Context, tenantID string, req CreateSlotRequest) (*models.ScheduleSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	day := models.DayOfWeek(strings.ToUpper(req.Day))
	if !day.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day of week %q", req.Day))
	}

	start, err := timerange.Parse(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := timerange.Parse(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	occupying, err := s.repo.FindBySlotKey(ctx, tenantID, req.Grade, req.Section, day, req.Period)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot occupancy")
	}
	if occupying != nil {
		return nil, s.wrapConflict(models.ConflictSlotOccupied, "slot occupied", *occupying)
	}

	existing, err := s.repo.FindByTeacherAndDay(ctx, tenantID, req.TeacherID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher availability")
	}
	for _, item := range existing {
		itemStart, parseErr := timerange.Parse(item.StartTime)
		if parseErr != nil {
			return nil, appErrors.Wrap(parseErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored slot has invalid time")
		}
		itemEnd, parseErr := timerange.Parse(item.EndTime)
		if parseErr != nil {
			return nil, appErrors.Wrap(parseErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored slot has invalid time")
		}
		if timerange.Overlaps(start, end, itemStart, itemEnd) {
			return nil, s.wrapConflict(models.ConflictTeacherUnavailable, "teacher unavailable", item)
		}
	}

	slot := models.ScheduleSlot{
		TenantID:    tenantID,
		Grade:       req.Grade,
		Section:     req.Section,
		Day:         day,
		Period:      req.Period,
		StartTime:   start.String(),
		EndTime:     end.String(),
		SubjectID:   req.SubjectID,
		SubjectName: req.SubjectName,
		TeacherID:   req.TeacherID,
		TeacherName: req.TeacherName,
	}

	if err := s.repo.Insert(ctx, &slot); err != nil {
		// The unique index catches writers racing past the pre-check.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.WithDetails(appErrors.ErrConflict, "slot occupied", models.ScheduleConflict{
				Reason:  models.ConflictSlotOccupied,
				Grade:   req.Grade,
				Section: req.Section,
				Day:     day,
				Period:  req.Period,
			})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule slot")
	}

	s.logger.Info("schedule slot created",
		zap.String("tenant_id", tenantID),
		zap.String("slot_id", slot.ID),
		zap.String("teacher_id", slot.TeacherID),
		zap.String("day", string(slot.Day)),
		zap.Int("period", slot.Period),
	)
	return &slot, nil
}

// Delete removes a slot. Attendance history denormalizes everything it needs
// at write time, so deleting a slot never orphans past records.
func (s *ScheduleService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.repo.FindByID(ctx, tenantID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slot")
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule slot")
	}
	return nil
}

func (s *ScheduleService) wrapConflict(reason models.ConflictReason, message string, existing models.ScheduleSlot) error {
	conflict := models.ScheduleConflict{
		Reason:      reason,
		SlotID:      existing.ID,
		Grade:       existing.Grade,
		Section:     existing.Section,
		Day:         existing.Day,
		Period:      existing.Period,
		StartTime:   existing.StartTime,
		EndTime:     existing.EndTime,
		SubjectName: existing.SubjectName,
		TeacherName: existing.TeacherName,
	}
	domainErr := &models.ScheduleConflictError{Reason: reason, Message: message, Conflict: conflict}
	wrapped := appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
	wrapped.Details = conflict
	return wrapped
}
