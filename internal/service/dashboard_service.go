package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/darsa-app/darsa-api/internal/dto"
	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/internal/repository"
)

type teacherScheduleLister interface {
	FindByTeacherAndDay(ctx context.Context, tenantID, teacherID string, day models.DayOfWeek) ([]models.ScheduleSlot, error)
}

type occurrenceLister interface {
	MarkedOccurrences(ctx context.Context, tenantID, teacherID string, date time.Time) ([]repository.MarkedOccurrence, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the teacher's daily view: the class currently in
// its marking window and per-period completion. Today's slot list is cached;
// window state and completion are recomputed on each request so a cached
// payload can never report a stale decision.
type DashboardService struct {
	schedules teacherScheduleLister
	records   occurrenceLister
	gate      *Gate
	cache     *CacheService
	logger    *zap.Logger
	cfg       DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Schedules teacherScheduleLister
	Records   occurrenceLister
	Gate      *Gate
	Cache     *CacheService
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gate := params.Gate
	if gate == nil {
		gate = NewGate(0)
	}
	return &DashboardService{
		schedules: params.Schedules,
		records:   params.Records,
		gate:      gate,
		cache:     params.Cache,
		logger:    logger,
		cfg:       cfg,
	}
}

// TeacherToday builds the dashboard payload for the given teacher at the
// given instant.
func (s *DashboardService) TeacherToday(ctx context.Context, tenantID, teacherID string, now time.Time) (*dto.TeacherTodayResponse, error) {
	day := models.DayOfWeekFromTime(now)
	dateLabel := now.Format("2006-01-02")

	slots, err := s.todaySlots(ctx, tenantID, teacherID, day, dateLabel)
	if err != nil {
		return nil, err
	}

	resp := &dto.TeacherTodayResponse{
		Date:     dateLabel,
		Progress: make([]dto.PeriodProgress, 0, len(slots)),
	}
	if len(slots) == 0 {
		return resp, nil
	}

	marked, err := s.records.MarkedOccurrences(ctx, tenantID, teacherID, models.Midnight(now))
	if err != nil {
		return nil, fmt.Errorf("load marked occurrences: %w", err)
	}
	markedSet := make(map[repository.MarkedOccurrence]struct{}, len(marked))
	for _, m := range marked {
		markedSet[m] = struct{}{}
	}

	for _, slot := range slots {
		_, alreadyMarked := markedSet[repository.MarkedOccurrence{SubjectID: slot.SubjectID, Period: slot.Period}]
		resp.Progress = append(resp.Progress, dto.PeriodProgress{Slot: slot, AlreadyMarked: alreadyMarked})

		if resp.CurrentClass != nil {
			continue
		}
		decision, evalErr := s.gate.Evaluate(slot, now)
		if evalErr != nil {
			s.logger.Warn("skipping slot with unreadable times",
				zap.String("slot_id", slot.ID),
				zap.Error(evalErr))
			continue
		}
		if decision.Eligible {
			resp.CurrentClass = &dto.CurrentClassView{
				Slot:          slot,
				MsRemaining:   decision.MsRemaining,
				AlreadyMarked: alreadyMarked,
			}
		}
	}
	return resp, nil
}

// todaySlots loads the teacher's slots for the given weekday, read-through
// cached per calendar date.
func (s *DashboardService) todaySlots(ctx context.Context, tenantID, teacherID string, day models.DayOfWeek, dateLabel string) ([]models.ScheduleSlot, error) {
	if day == "" {
		return nil, nil
	}

	key := fmt.Sprintf("dash:teacher:%s:%s:%s", tenantID, teacherID, dateLabel)
	var cached []models.ScheduleSlot
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	slots, err := s.schedules.FindByTeacherAndDay(ctx, tenantID, teacherID, day)
	if err != nil {
		return nil, fmt.Errorf("load teacher slots: %w", err)
	}
	if err := s.cache.Set(ctx, key, slots, s.cfg.CacheTTL); err != nil {
		s.logger.Debug("dashboard cache set failed", zap.String("key", key), zap.Error(err))
	}
	return slots, nil
}
