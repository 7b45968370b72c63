package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/darsa-app/darsa-api/internal/dto"
	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/internal/repository"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
	"github.com/darsa-app/darsa-api/pkg/export"
)

type attendanceRepository interface {
	OccurrenceExists(ctx context.Context, key models.OccurrenceKey) (bool, error)
	InsertBatch(ctx context.Context, records []models.AttendanceRecord) error
	ListByOccurrence(ctx context.Context, key models.OccurrenceKey) ([]models.AttendanceRecord, error)
}

type slotResolver interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.ScheduleSlot, error)
}

type rosterRepository interface {
	ListByGradeSection(ctx context.Context, tenantID string, grade int, section string) ([]models.Student, error)
}

// AttendanceService is the only writer of attendance records. Eligibility is
// delegated to the gate; the occurrence uniqueness constraint in the store is
// the authoritative guard against double submission.
type AttendanceService struct {
	slots     slotResolver
	records   attendanceRepository
	roster    rosterRepository
	gate      *Gate
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(slots slotResolver, records attendanceRepository, roster rosterRepository, gate *Gate, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = NewGate(5)
	}
	return &AttendanceService{slots: slots, records: records, roster: roster, gate: gate, cache: cache, validator: validate, logger: logger}
}

// resolveTeacherSlot loads a slot and verifies it belongs to the caller.
// A foreign slot is indistinguishable from a missing one.
func (s *AttendanceService) resolveTeacherSlot(ctx context.Context, tenantID, teacherID, slotID string) (*models.ScheduleSlot, error) {
	slot, err := s.slots.FindByID(ctx, tenantID, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found or not assigned to you")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if slot.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found or not assigned to you")
	}
	return slot, nil
}

// ClassInfo returns the occurrence view a teacher marks against: the slot,
// the current window decision, whether a batch already exists, and the
// roster. Ineligibility is reported in the payload, not as an error, so the
// UI can render the countdown and the reason.
func (s *AttendanceService) ClassInfo(ctx context.Context, tenantID, teacherID, slotID string, now time.Time) (*dto.ClassInfoResponse, error) {
	slot, err := s.resolveTeacherSlot(ctx, tenantID, teacherID, slotID)
	if err != nil {
		return nil, err
	}

	decision, err := s.gate.Evaluate(*slot, now)
	if err != nil {
		return nil, err
	}

	marked, err := s.records.OccurrenceExists(ctx, models.OccurrenceKeyFor(*slot, now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance state")
	}

	students, err := s.roster.ListByGradeSection(ctx, tenantID, slot.Grade, slot.Section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}

	roster := make([]dto.RosterStudent, len(students))
	for i, student := range students {
		roster[i] = dto.RosterStudent{ID: student.ID, StudentCode: student.StudentCode, FullName: student.FullName}
	}

	return &dto.ClassInfoResponse{
		Slot:          *slot,
		Eligible:      decision.Eligible,
		Reason:        decision.Reason,
		MsRemaining:   decision.MsRemaining,
		AlreadyMarked: marked,
		Students:      roster,
	}, nil
}

// Submit persists one attendance batch for the slot's occurrence today.
// Order of checks: slot ownership, marking window, status enums, occurrence
// idempotency; nothing is written until all pass, and the batch itself is a
// single transaction. An empty status map is accepted and writes zero rows,
// treated as a class with no enrolled students.
func (s *AttendanceService) Submit(ctx context.Context, tenantID, teacherID, slotID string, now time.Time, statuses map[string]string) (*dto.SubmitAttendanceResponse, error) {
	slot, err := s.resolveTeacherSlot(ctx, tenantID, teacherID, slotID)
	if err != nil {
		return nil, err
	}

	decision, err := s.gate.Evaluate(*slot, now)
	if err != nil {
		return nil, err
	}
	if !decision.Eligible {
		failure := appErrors.Clone(appErrors.ErrValidation, decision.Reason.Message())
		failure.Details = decision
		return nil, failure
	}

	for studentID, raw := range statuses {
		if !models.AttendanceStatus(strings.ToLower(raw)).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance status %q for student %s", raw, studentID))
		}
	}

	key := models.OccurrenceKeyFor(*slot, now)
	marked, err := s.records.OccurrenceExists(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance state")
	}
	if marked {
		return nil, s.alreadyMarkedError()
	}

	studentIDs := make([]string, 0, len(statuses))
	for studentID := range statuses {
		studentIDs = append(studentIDs, studentID)
	}
	sort.Strings(studentIDs)

	records := make([]models.AttendanceRecord, len(studentIDs))
	for i, studentID := range studentIDs {
		records[i] = models.AttendanceRecord{
			TenantID:  tenantID,
			TeacherID: teacherID,
			SubjectID: slot.SubjectID,
			Period:    slot.Period,
			Date:      key.Date,
			StudentID: studentID,
			Status:    models.AttendanceStatus(strings.ToLower(statuses[studentID])),
			MarkedAt:  now,
		}
	}

	if err := s.records.InsertBatch(ctx, records); err != nil {
		// A racing submitter hit the occurrence constraint first; the whole
		// batch rolled back.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.alreadyMarkedError()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.invalidateDashboard(ctx, tenantID, teacherID)

	s.logger.Info("attendance recorded",
		zap.String("tenant_id", tenantID),
		zap.String("teacher_id", teacherID),
		zap.String("slot_id", slot.ID),
		zap.Int("records", len(records)),
	)
	return &dto.SubmitAttendanceResponse{RecordsCreated: len(records)}, nil
}

// Register builds the export dataset for one occurrence, joining student
// names from the roster.
func (s *AttendanceService) Register(ctx context.Context, tenantID, teacherID, slotID string, date time.Time) (export.Dataset, string, error) {
	slot, err := s.resolveTeacherSlot(ctx, tenantID, teacherID, slotID)
	if err != nil {
		return export.Dataset{}, "", err
	}

	key := models.OccurrenceKeyFor(*slot, date)
	records, err := s.records.ListByOccurrence(ctx, key)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}
	if len(records) == 0 {
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrNotFound, "no attendance recorded for this class on that date")
	}

	students, err := s.roster.ListByGradeSection(ctx, tenantID, slot.Grade, slot.Section)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	names := make(map[string]models.Student, len(students))
	for _, student := range students {
		names[student.ID] = student
	}

	dataset := export.Dataset{
		Headers: []string{"Student Code", "Student", "Status", "Marked At"},
		Widths:  []float64{1, 2, 1, 1.5},
	}
	for _, record := range records {
		student := names[record.StudentID]
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student Code": student.StudentCode,
			"Student":      student.FullName,
			"Status":       string(record.Status),
			"Marked At":    record.MarkedAt.Format("2006-01-02 15:04"),
		})
	}

	title := fmt.Sprintf("%s grade %d-%s period %d %s", slot.SubjectName, slot.Grade, slot.Section, slot.Period, key.Date.Format("2006-01-02"))
	return dataset, title, nil
}

func (s *AttendanceService) alreadyMarkedError() error {
	failure := appErrors.Clone(appErrors.ErrConflict, "attendance already marked for this class today")
	failure.Details = map[string]models.ConflictReason{"reason": models.ConflictAlreadyMarked}
	return failure
}

func (s *AttendanceService) invalidateDashboard(ctx context.Context, tenantID, teacherID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("dash:teacher:%s:%s:*", tenantID, teacherID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
