package report

import (
	"fmt"
	"net/http"
	"time"

	"go-leave/internal/leave"
	"go-leave/internal/middleware"
	reporterrors "go-leave/internal/report/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) DepartmentStats(c *gin.Context) {
	var q StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	from, err := parseOptionalDate(q.From)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.DepartmentStats(c.Request.Context(), middleware.Actor(c), c.Param("department"), from, to)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Requests(c *gin.Context) {
	spec, ok := h.bindSpec(c)
	if !ok {
		return
	}

	resp, err := h.service.Requests(c.Request.Context(), middleware.Actor(c), spec)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := response.PageParams(c)
	items, meta := response.Paginate(resp.Items, page, pageSize)
	resp.Items = items
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) Export(c *gin.Context) {
	spec, ok := h.bindSpec(c)
	if !ok {
		return
	}

	data, err := h.service.ExportXLSX(c.Request.Context(), middleware.Actor(c), spec)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leave-report-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) Calendar(c *gin.Context) {
	var q CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	day, err := leave.ParseDate(q.Date)
	if err != nil {
		h.writeServiceError(c, reporterrors.ErrInvalidDate)
		return
	}

	resp, err := h.service.Calendar(c.Request.Context(), middleware.Actor(c), unlessAll(q.Department), day)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) bindSpec(c *gin.Context) (leave.FilterSpec, bool) {
	var q leave.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return leave.FilterSpec{}, false
	}
	spec, err := q.Spec()
	if err != nil {
		h.writeServiceError(c, err)
		return leave.FilterSpec{}, false
	}
	return spec, true
}

func parseOptionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := leave.ParseDate(raw)
	if err != nil {
		return time.Time{}, reporterrors.ErrInvalidDate
	}
	return t, nil
}

func unlessAll(v string) string {
	if v == "all" {
		return ""
	}
	return v
}
