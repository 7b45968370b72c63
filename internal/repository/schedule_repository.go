package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/darsa-app/darsa-api/internal/models"
)

// ErrDuplicateKey is returned when an insert violates a storage-level
// uniqueness constraint. The constraints are the authoritative guard against
// racing writers; service pre-checks only exist for early, detailed errors.
var ErrDuplicateKey = errors.New("duplicate key")

const scheduleColumns = `id, tenant_id, grade, section, day_of_week, period, start_time, end_time, subject_id, subject_name, teacher_id, teacher_name, created_at`

// ScheduleRepository provides persistence for schedule slots.
type ScheduleRepository struct {
	db      *sqlx.DB
	observe QueryObserver
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// WithQueryObserver wires query timing into the repository.
func (r *ScheduleRepository) WithQueryObserver(fn QueryObserver) *ScheduleRepository {
	r.observe = fn
	return r
}

// FindBySlotKey loads the slot occupying a classroom-period, if any.
func (r *ScheduleRepository) FindBySlotKey(ctx context.Context, tenantID string, grade int, section string, day models.DayOfWeek, period int) (*models.ScheduleSlot, error) {
	defer observeQuery(r.observe, "schedule_find_by_slot_key")()
	query := fmt.Sprintf(`SELECT %s FROM schedule_slots WHERE tenant_id = $1 AND grade = $2 AND section = $3 AND day_of_week = $4 AND period = $5`, scheduleColumns)
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, tenantID, grade, section, day, period); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByID loads a slot by id within a tenant.
func (r *ScheduleRepository) FindByID(ctx context.Context, tenantID, id string) (*models.ScheduleSlot, error) {
	defer observeQuery(r.observe, "schedule_find_by_id")()
	query := fmt.Sprintf(`SELECT %s FROM schedule_slots WHERE tenant_id = $1 AND id = $2`, scheduleColumns)
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, tenantID, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByTeacherAndDay returns a teacher's slots on one day, ordered by start.
func (r *ScheduleRepository) FindByTeacherAndDay(ctx context.Context, tenantID, teacherID string, day models.DayOfWeek) ([]models.ScheduleSlot, error) {
	defer observeQuery(r.observe, "schedule_find_by_teacher_day")()
	query := fmt.Sprintf(`SELECT %s FROM schedule_slots WHERE tenant_id = $1 AND teacher_id = $2 AND day_of_week = $3 ORDER BY start_time ASC`, scheduleColumns)
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, tenantID, teacherID, day); err != nil {
		return nil, fmt.Errorf("list slots by teacher and day: %w", err)
	}
	return slots, nil
}

// ListByTenant returns the full timetable of a tenant.
func (r *ScheduleRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.ScheduleSlot, error) {
	defer observeQuery(r.observe, "schedule_list_by_tenant")()
	query := fmt.Sprintf(`SELECT %s FROM schedule_slots WHERE tenant_id = $1 ORDER BY day_of_week ASC, period ASC, grade ASC`, scheduleColumns)
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, tenantID); err != nil {
		return nil, fmt.Errorf("list slots by tenant: %w", err)
	}
	return slots, nil
}

// Insert stores a new slot. The unique index on (tenant_id, grade, section,
// day_of_week, period) reports racing duplicates as ErrDuplicateKey.
func (r *ScheduleRepository) Insert(ctx context.Context, slot *models.ScheduleSlot) error {
	defer observeQuery(r.observe, "schedule_insert")()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO schedule_slots (id, tenant_id, grade, section, day_of_week, period, start_time, end_time, subject_id, subject_name, teacher_id, teacher_name, created_at)
VALUES (:id, :tenant_id, :grade, :section, :day_of_week, :period, :start_time, :end_time, :subject_id, :subject_name, :teacher_id, :teacher_name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert schedule slot: %w", err)
	}
	return nil
}

// Delete removes a slot by id within a tenant.
func (r *ScheduleRepository) Delete(ctx context.Context, tenantID, id string) error {
	defer observeQuery(r.observe, "schedule_delete")()
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		return fmt.Errorf("delete schedule slot: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
