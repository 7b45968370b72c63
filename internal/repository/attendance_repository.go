package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/darsa-app/darsa-api/internal/models"
)

// MarkedOccurrence identifies a class occurrence that already has an
// attendance batch on a given date.
type MarkedOccurrence struct {
	SubjectID string `db:"subject_id"`
	Period    int    `db:"period"`
}

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db      *sqlx.DB
	observe QueryObserver
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithQueryObserver wires query timing into the repository.
func (r *AttendanceRepository) WithQueryObserver(fn QueryObserver) *AttendanceRepository {
	r.observe = fn
	return r
}

// OccurrenceExists reports whether any record exists for the occurrence key.
func (r *AttendanceRepository) OccurrenceExists(ctx context.Context, key models.OccurrenceKey) (bool, error) {
	defer observeQuery(r.observe, "attendance_occurrence_exists")()
	const query = `SELECT EXISTS (SELECT 1 FROM attendance_records WHERE tenant_id = $1 AND teacher_id = $2 AND subject_id = $3 AND period = $4 AND date = $5)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, key.TenantID, key.TeacherID, key.SubjectID, key.Period, key.Date); err != nil {
		return false, fmt.Errorf("check attendance occurrence: %w", err)
	}
	return exists, nil
}

// InsertBatch writes all records of one occurrence in a single transaction.
// Either every row lands or none does, so a concurrent occurrence check can
// never observe a half-written batch. The per-student unique constraint turns
// a racing duplicate batch into ErrDuplicateKey and rolls the whole write back.
func (r *AttendanceRepository) InsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	defer observeQuery(r.observe, "attendance_insert_batch")()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range records {
		payload := records[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.MarkedAt.IsZero() {
			payload.MarkedAt = now
		}

		if _, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO attendance_records (id, tenant_id, teacher_id, subject_id, period, date, student_id, status, marked_at)
VALUES (:id, :tenant_id, :teacher_id, :subject_id, :period, :date, :student_id, :status, :marked_at)`, &payload); err != nil {
			if isUniqueViolation(err) {
				err = ErrDuplicateKey
				return err
			}
			err = fmt.Errorf("insert attendance record: %w", err)
			return err
		}
		records[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance batch: %w", err)
	}
	return nil
}

// ListByOccurrence returns the records of one occurrence ordered by student.
func (r *AttendanceRepository) ListByOccurrence(ctx context.Context, key models.OccurrenceKey) ([]models.AttendanceRecord, error) {
	defer observeQuery(r.observe, "attendance_list_by_occurrence")()
	const query = `SELECT id, tenant_id, teacher_id, subject_id, period, date, student_id, status, marked_at FROM attendance_records
WHERE tenant_id = $1 AND teacher_id = $2 AND subject_id = $3 AND period = $4 AND date = $5 ORDER BY student_id ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, key.TenantID, key.TeacherID, key.SubjectID, key.Period, key.Date); err != nil {
		return nil, fmt.Errorf("list attendance by occurrence: %w", err)
	}
	return records, nil
}

// MarkedOccurrences returns the (subject, period) pairs a teacher has already
// marked on the given date.
func (r *AttendanceRepository) MarkedOccurrences(ctx context.Context, tenantID, teacherID string, date time.Time) ([]MarkedOccurrence, error) {
	defer observeQuery(r.observe, "attendance_marked_occurrences")()
	const query = `SELECT DISTINCT subject_id, period FROM attendance_records WHERE tenant_id = $1 AND teacher_id = $2 AND date = $3`
	var occurrences []MarkedOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, tenantID, teacherID, date); err != nil {
		return nil, fmt.Errorf("list marked occurrences: %w", err)
	}
	return occurrences, nil
}
