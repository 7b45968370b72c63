package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darsa-app/darsa-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "grade", "section", "day_of_week", "period", "start_time", "end_time", "subject_id", "subject_name", "teacher_id", "teacher_name", "created_at"})
}

func TestScheduleRepositoryFindBySlotKey(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := scheduleRows().
		AddRow("slot-1", "tenant-1", 7, "A", "MONDAY", 2, "09:00", "10:00", "subject-1", "Mathematics", "teacher-1", "Tri Wibowo", time.Now())
	mock.ExpectQuery("SELECT .+ FROM schedule_slots WHERE tenant_id = \\$1 AND grade = \\$2 AND section = \\$3 AND day_of_week = \\$4 AND period = \\$5").
		WithArgs("tenant-1", 7, "A", models.Monday, 2).
		WillReturnRows(rows)

	slot, err := repo.FindBySlotKey(context.Background(), "tenant-1", 7, "A", models.Monday, 2)
	require.NoError(t, err)
	assert.Equal(t, "slot-1", slot.ID)
	assert.Equal(t, models.Monday, slot.Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindBySlotKeyEmpty(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("SELECT .+ FROM schedule_slots WHERE tenant_id = \\$1 AND grade = \\$2").
		WithArgs("tenant-1", 7, "A", models.Monday, 2).
		WillReturnRows(scheduleRows())

	_, err := repo.FindBySlotKey(context.Background(), "tenant-1", 7, "A", models.Monday, 2)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestScheduleRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_slots")).
		WithArgs(sqlmock.AnyArg(), "tenant-1", 7, "A", "MONDAY", 2, "09:00", "10:00", "subject-1", "Mathematics", "teacher-1", "Tri Wibowo", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := models.ScheduleSlot{
		TenantID:    "tenant-1",
		Grade:       7,
		Section:     "A",
		Day:         models.Monday,
		Period:      2,
		StartTime:   "09:00",
		EndTime:     "10:00",
		SubjectID:   "subject-1",
		SubjectName: "Mathematics",
		TeacherID:   "teacher-1",
		TeacherName: "Tri Wibowo",
	}
	require.NoError(t, repo.Insert(context.Background(), &slot))
	assert.NotEmpty(t, slot.ID)
	assert.False(t, slot.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertUniqueViolation(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_slots")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "schedule_slots_slot_key"})

	slot := models.ScheduleSlot{TenantID: "tenant-1", Day: models.Monday}
	err := repo.Insert(context.Background(), &slot)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestScheduleRepositoryFindByTeacherAndDayOrdersByStart(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := scheduleRows().
		AddRow("slot-1", "tenant-1", 7, "A", "MONDAY", 1, "08:00", "09:00", "subject-1", "Mathematics", "teacher-1", "Tri Wibowo", time.Now()).
		AddRow("slot-2", "tenant-1", 8, "B", "MONDAY", 3, "10:00", "11:00", "subject-2", "Biology", "teacher-1", "Tri Wibowo", time.Now())
	mock.ExpectQuery("SELECT .+ FROM schedule_slots WHERE tenant_id = \\$1 AND teacher_id = \\$2 AND day_of_week = \\$3 ORDER BY start_time ASC").
		WithArgs("tenant-1", "teacher-1", models.Monday).
		WillReturnRows(rows)

	slots, err := repo.FindByTeacherAndDay(context.Background(), "tenant-1", "teacher-1", models.Monday)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "slot-1", slots[0].ID)
	assert.Equal(t, "slot-2", slots[1].ID)
}

func TestScheduleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_slots WHERE tenant_id = $1 AND id = $2")).
		WithArgs("tenant-1", "slot-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "tenant-1", "slot-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryQueryObserver(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	var labels []string
	repo := NewScheduleRepository(db).WithQueryObserver(func(label string, duration time.Duration) {
		labels = append(labels, label)
		assert.GreaterOrEqual(t, duration, time.Duration(0))
	})

	mock.ExpectQuery("SELECT .+ FROM schedule_slots WHERE tenant_id = \\$1 ORDER BY day_of_week ASC, period ASC, grade ASC").
		WithArgs("tenant-1").
		WillReturnRows(scheduleRows())
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_slots WHERE tenant_id = $1 AND id = $2")).
		WithArgs("tenant-1", "slot-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.ListByTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), "tenant-1", "slot-1"))

	assert.Equal(t, []string{"schedule_list_by_tenant", "schedule_delete"}, labels)
}
