package attendance

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"asistencia-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

var registerOnce sync.Once

// RegisterValidators: binding:"punchkind" を gin の validator に登録
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("punchkind", func(fl validator.FieldLevel) bool {
				_, err := ParseKind(fl.Field().String())
				return err == nil
			})
		}
	})
}

// RegisterRoutes: 従業員向け（RequireAuth の下）
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	RegisterValidators()
	h := &Handler{svc: svc}

	// GET /state
	r.GET("/state", h.GetState)
	// POST /punches (multipart: kind, photo)
	r.POST("/punches", h.Punch)
}

// RegisterReportRoutes: 管理者向け（RequireRole(admin) の下）
func RegisterReportRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/reports/daily", h.DailyReport)
	r.GET("/reports/monthly", h.MonthlyReport)
	r.GET("/reports/monthly/export", h.ExportMonthly)
}

// ---------- handlers ----------

// GetState godoc
// @Summary  Current presence state of the caller
// @Tags     attendance
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} StateResponse
// @Router   /state [get]
func (h *Handler) GetState(c *gin.Context) {
	id, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(CodeUnauthenticated, "missing user"))
		return
	}
	res, err := h.svc.State(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Punch godoc
// @Summary  Clock in or out with a photo
// @Tags     attendance
// @Accept   multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param    kind  formData string true "in | out"
// @Param    photo formData file   true "verification photo"
// @Success  201 {object} EventResponse
// @Failure  400 {object} errorDTO
// @Router   /punches [post]
func (h *Handler) Punch(c *gin.Context) {
	id, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(CodeUnauthenticated, "missing user"))
		return
	}

	var form PunchForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "kind must be 'in' or 'out'"))
		return
	}

	in := PunchInput{EmployeeID: id, Kind: form.Kind}
	if form.Photo != nil {
		if limit := h.svc.opts.MaxUploadBytes; limit > 0 && form.Photo.Size > limit {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, fmt.Sprintf("photo exceeds %d bytes", limit)))
			return
		}
		f, err := form.Photo.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "cannot read photo"))
			return
		}
		defer f.Close()
		in.Photo = f
	}

	res, err := h.svc.Punch(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// DailyReport godoc
// @Summary  Every employee's punches on one date
// @Tags     reports
// @Produce  json
// @Security BearerAuth
// @Param    date query string true "YYYY-MM-DD or today"
// @Success  200 {object} DailyReportResponse
// @Router   /reports/daily [get]
func (h *Handler) DailyReport(c *gin.Context) {
	day, err := h.svc.ParseDay(c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.DailyReport(c.Request.Context(), day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MonthlyReport godoc
// @Summary  Reconciled work periods of one employee for a calendar month
// @Tags     reports
// @Produce  json
// @Security BearerAuth
// @Param    employee_id query int true "employee id"
// @Param    year        query int true "YYYY"
// @Param    month       query int true "1-12"
// @Success  200 {object} MonthlyReportResponse
// @Router   /reports/monthly [get]
func (h *Handler) MonthlyReport(c *gin.Context) {
	q, err := ParseMonthQuery(c.Query("employee_id"), c.Query("year"), c.Query("month"))
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.MonthlyReport(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportMonthly godoc
// @Summary  Monthly CSV export (raw punches or reconciled periods)
// @Tags     reports
// @Produce  text/csv
// @Security BearerAuth
// @Param    employee_id query int    true  "employee id"
// @Param    year        query int    true  "YYYY"
// @Param    month       query int    true  "1-12"
// @Param    view        query string false "events | periods"
// @Param    charset     query string false "utf-8 | utf-8-bom | windows-1252"
// @Success  200 {string} string
// @Router   /reports/monthly/export [get]
func (h *Handler) ExportMonthly(c *gin.Context) {
	q, err := ParseMonthQuery(c.Query("employee_id"), c.Query("year"), c.Query("month"))
	if err != nil {
		h.fail(c, err)
		return
	}
	req := ExportRequest{
		Query:   q,
		View:    c.DefaultQuery("view", ViewEvents),
		Charset: c.DefaultQuery("charset", CharsetUTF8),
	}
	table, err := h.svc.ExportMonthly(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if req.Charset == CharsetWindows1252 {
		contentType = "text/csv; charset=windows-1252"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(q, req.View)))
	c.Status(http.StatusOK)
	if err := WriteCSV(c.Writer, table, req.Charset); err != nil {
		log.Printf("[ERROR] write csv: %v", err)
	}
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// fail: APIError はそのまま返す。それ以外（ストア障害など）はログに残して 500
func (h *Handler) fail(c *gin.Context, err error) {
	var api *APIError
	if errors.As(err, &api) {
		c.JSON(ToHTTPStatus(err), errorBody(api.Code, api.Message))
		return
	}
	log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, errorBody(CodeInternal, "internal error"))
}
