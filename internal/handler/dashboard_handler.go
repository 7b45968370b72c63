package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/darsa-app/darsa-api/internal/service"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
	"github.com/darsa-app/darsa-api/pkg/response"
)

// DashboardHandler exposes the teacher daily view.
type DashboardHandler struct {
	service *service.DashboardService
	now     func() time.Time
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc, now: time.Now}
}

// TeacherToday godoc
// @Summary Teacher daily dashboard
// @Description Returns the class currently open for marking, if any, plus completion state for every period scheduled today.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/dashboard [get]
func (h *DashboardHandler) TeacherToday(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := h.service.TeacherToday(c.Request.Context(), claims.TenantID, claims.UserID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
