package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/darsa-app/darsa-api/internal/models"
)

// StudentRepository provides read-only roster access. Student records are
// owned by the registration collaborator; this service never writes them.
type StudentRepository struct {
	db      *sqlx.DB
	observe QueryObserver
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// WithQueryObserver wires query timing into the repository.
func (r *StudentRepository) WithQueryObserver(fn QueryObserver) *StudentRepository {
	r.observe = fn
	return r
}

// ListByGradeSection returns the roster of one class ordered by student code.
func (r *StudentRepository) ListByGradeSection(ctx context.Context, tenantID string, grade int, section string) ([]models.Student, error) {
	defer observeQuery(r.observe, "students_list_by_grade_section")()
	const query = `SELECT id, tenant_id, student_code, full_name, grade, section FROM students WHERE tenant_id = $1 AND grade = $2 AND section = $3 ORDER BY student_code ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, tenantID, grade, section); err != nil {
		return nil, fmt.Errorf("list students by grade and section: %w", err)
	}
	return students, nil
}
