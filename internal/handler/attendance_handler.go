package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/darsa-app/darsa-api/internal/service"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
	"github.com/darsa-app/darsa-api/pkg/export"
	"github.com/darsa-app/darsa-api/pkg/response"
)

// SubmitAttendanceRequest carries one status per student for a single class occurrence.
type SubmitAttendanceRequest struct {
	Statuses map[string]string `json:"statuses"`
}

// AttendanceHandler exposes the teacher-facing attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	now     func() time.Time
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(svc *service.AttendanceService, csv *export.CSVExporter, pdf *export.PDFExporter) *AttendanceHandler {
	return &AttendanceHandler{service: svc, csv: csv, pdf: pdf, now: time.Now}
}

// ClassInfo godoc
// @Summary Class occurrence details
// @Description Returns the slot, the current marking decision and the roster for one of the teacher's classes.
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /teacher/classes/{id} [get]
func (h *AttendanceHandler) ClassInfo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	info, err := h.service.ClassInfo(c.Request.Context(), claims.TenantID, claims.UserID, c.Param("id"), h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Submit godoc
// @Summary Submit attendance for a class occurrence
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Slot ID"
// @Param payload body SubmitAttendanceRequest true "Statuses keyed by student ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teacher/classes/{id}/attendance [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), claims.TenantID, claims.UserID, c.Param("id"), h.now(), req.Statuses)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Register godoc
// @Summary Export the attendance register for one occurrence
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Slot ID"
// @Param date query string false "Occurrence date (YYYY-MM-DD, defaults to today)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /teacher/classes/{id}/register [get]
func (h *AttendanceHandler) Register(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	date := h.now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	dataset, title, err := h.service.Register(c.Request.Context(), claims.TenantID, claims.UserID, c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		payload, renderErr := h.csv.Render(dataset)
		if renderErr != nil {
			response.Error(c, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"register-%s.csv\"", date.Format("2006-01-02")))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, renderErr := h.pdf.Render(dataset, title)
		if renderErr != nil {
			response.Error(c, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"register-%s.pdf\"", date.Format("2006-01-02")))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
