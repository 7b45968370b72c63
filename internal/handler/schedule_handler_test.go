package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/darsa-app/darsa-api/internal/middleware"
	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/internal/service"
)

type scheduleStoreStub struct {
	occupying  *models.ScheduleSlot
	teacherDay []models.ScheduleSlot
	listed     []models.ScheduleSlot
}

func (s *scheduleStoreStub) FindBySlotKey(ctx context.Context, tenantID string, grade int, section string, day models.DayOfWeek, period int) (*models.ScheduleSlot, error) {
	if s.occupying == nil {
		return nil, sql.ErrNoRows
	}
	return s.occupying, nil
}

func (s *scheduleStoreStub) FindByID(ctx context.Context, tenantID, id string) (*models.ScheduleSlot, error) {
	return nil, sql.ErrNoRows
}

func (s *scheduleStoreStub) FindByTeacherAndDay(ctx context.Context, tenantID, teacherID string, day models.DayOfWeek) ([]models.ScheduleSlot, error) {
	return s.teacherDay, nil
}

func (s *scheduleStoreStub) ListByTenant(ctx context.Context, tenantID string) ([]models.ScheduleSlot, error) {
	return s.listed, nil
}

func (s *scheduleStoreStub) Insert(ctx context.Context, slot *models.ScheduleSlot) error {
	slot.ID = "generated-id"
	return nil
}

func (s *scheduleStoreStub) Delete(ctx context.Context, tenantID, id string) error {
	return nil
}

func adminContext(t *testing.T, rec *httptest.ResponseRecorder, req *http.Request) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", TenantID: "tenant-1", Role: models.RoleAdmin})
	return c
}

const createSlotBody = `{
	"grade": 7,
	"section": "A",
	"day_of_week": "MONDAY",
	"period": 2,
	"start_time": "09:00",
	"end_time": "10:00",
	"subject_id": "subject-1",
	"subject_name": "Mathematics",
	"teacher_id": "teacher-1",
	"teacher_name": "Tri Wibowo"
}`

func TestScheduleHandlerCreate(t *testing.T) {
	handler := NewScheduleHandler(service.NewScheduleService(&scheduleStoreStub{}, nil, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/schedules", strings.NewReader(createSlotBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Create(adminContext(t, rec, req))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "generated-id", envelope.Data.ID)
}

func TestScheduleHandlerCreateConflict(t *testing.T) {
	store := &scheduleStoreStub{occupying: &models.ScheduleSlot{ID: "slot-9", SubjectName: "Physics", TeacherName: "Someone Else"}}
	handler := NewScheduleHandler(service.NewScheduleService(store, nil, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/schedules", strings.NewReader(createSlotBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Create(adminContext(t, rec, req))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope struct {
		Error struct {
			Code    string          `json:"code"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, string(envelope.Error.Details), "SLOT_OCCUPIED")
}

func TestScheduleHandlerCreateBadPayload(t *testing.T) {
	handler := NewScheduleHandler(service.NewScheduleService(&scheduleStoreStub{}, nil, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/schedules", strings.NewReader(`{"grade":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Create(adminContext(t, rec, req))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandlerList(t *testing.T) {
	store := &scheduleStoreStub{listed: []models.ScheduleSlot{{ID: "slot-1"}, {ID: "slot-2"}}}
	handler := NewScheduleHandler(service.NewScheduleService(store, nil, zap.NewNop()))

	rec := httptest.NewRecorder()
	handler.List(adminContext(t, rec, httptest.NewRequest(http.MethodGet, "/schedules", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
}

func TestScheduleHandlerDeleteMissing(t *testing.T) {
	handler := NewScheduleHandler(service.NewScheduleService(&scheduleStoreStub{}, nil, zap.NewNop()))

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c := adminContext(t, rec, httptest.NewRequest(http.MethodDelete, "/schedules/missing", nil))
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Delete(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
