package api

import (
	"errors"
	"net/http"
	"time"

	models "SalesCast/internal/domain/models"
	svcmetrics "SalesCast/internal/service/metrics"
	"SalesCast/internal/service/ratelimit"
	"SalesCast/internal/usecase"
	xhttp "SalesCast/pkg/http"
	xlogger "SalesCast/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func init() {
	xhttp.RegisterValidation("forecast_model", "%s must be ARIMAX or LSTM", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseForecastModel(fl.Field().String())
		return ok
	})
}

// DashboardEchoHandler exposes the dashboard over HTTP.
type DashboardEchoHandler struct {
	logger  *xlogger.Logger
	dash    *usecase.Dashboard
	live    *usecase.LiveTraining
	limiter *ratelimit.Limiter
	metrics *svcmetrics.DashboardMetrics
}

// NewDashboardEchoHandler builds the handler. A nil limiter disables
// rate limiting of training requests; nil metrics register on the default
// registry.
func NewDashboardEchoHandler(
	logger *xlogger.Logger,
	dash *usecase.Dashboard,
	live *usecase.LiveTraining,
	limiter *ratelimit.Limiter,
	m *svcmetrics.DashboardMetrics,
) *DashboardEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	if m == nil {
		m = svcmetrics.NewDashboardMetrics(nil)
	}
	return &DashboardEchoHandler{logger: logger, dash: dash, live: live, limiter: limiter, metrics: m}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/sessions", h.OpenSession)
	g.GET("/sessions/:id", h.Summary)
	g.DELETE("/sessions/:id", h.CloseSession)
	g.GET("/sessions/:id/forecast", h.Forecast)
	g.GET("/sessions/:id/trends", h.Trends)
	g.GET("/sessions/:id/table", h.Table)
	g.POST("/sessions/:id/train", h.Train)
	g.POST("/uploads", h.Upload)
}

func (h *DashboardEchoHandler) OpenSession(c echo.Context) error {
	defer h.observe("open_session", time.Now())
	sum, err := h.dash.OpenSession(c.Request().Context())
	if err != nil {
		return h.fail(c, "open_session", err)
	}
	return xhttp.CreatedResponse(c, sum)
}

func (h *DashboardEchoHandler) Summary(c echo.Context) error {
	defer h.observe("summary", time.Now())
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sum, err := h.dash.Summary(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, "summary", err)
	}
	return xhttp.SuccessResponse(c, sum)
}

func (h *DashboardEchoHandler) CloseSession(c echo.Context) error {
	defer h.observe("close_session", time.Now())
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.dash.CloseSession(c.Request().Context(), req.ID); err != nil {
		return h.fail(c, "close_session", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *DashboardEchoHandler) Forecast(c echo.Context) error {
	defer h.observe("forecast", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	m, _ := models.ParseForecastModel(req.Model)

	chart, err := h.dash.ForecastChart(c.Request().Context(), req.ID, m)
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, chart)
}

func (h *DashboardEchoHandler) Trends(c echo.Context) error {
	defer h.observe("trends", time.Now())
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tr, err := h.dash.Trends(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, "trends", err)
	}
	return xhttp.SuccessResponse(c, tr)
}

func (h *DashboardEchoHandler) Table(c echo.Context) error {
	defer h.observe("table", time.Now())
	req := &models.TableRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	page, total, err := h.dash.RawTable(c.Request().Context(), req.ID, req.Offset, req.Limit)
	if err != nil {
		return h.fail(c, "table", err)
	}
	return xhttp.ListResponse(c, page, int64(total), req.Offset, req.Limit)
}

// Train blocks until the run finishes. Each client gets a small token
// bucket of training runs.
func (h *DashboardEchoHandler) Train(c echo.Context) error {
	defer h.observe("train", time.Now())
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return h.fail(c, "train", xhttp.TooManyRequestsError("training rate limit exceeded, retry later"))
	}

	res, err := h.live.Train(c.Request().Context(), req.ID, models.Hyperparams{
		Epochs:      req.Epochs,
		HiddenUnits: req.HiddenUnits,
		LookBack:    req.LookBack,
		Seed:        req.Seed,
	})
	if err != nil {
		return h.fail(c, "train", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Upload previews a multipart CSV under the "file" field.
func (h *DashboardEchoHandler) Upload(c echo.Context) error {
	defer h.observe("upload", time.Now())
	fh, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, "upload", xhttp.BadRequestError("multipart field 'file' is required").WithError(err))
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, "upload", xhttp.InternalError("cannot open upload").WithError(err))
	}
	defer f.Close()

	p, err := h.dash.PreviewUpload(fh.Filename, f)
	if err != nil {
		return h.fail(c, "upload", err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *DashboardEchoHandler) observe(endpoint string, start time.Time) {
	h.metrics.Latency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *DashboardEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	h.metrics.Errors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors onto API error codes.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var insufficient *models.InsufficientDataError
	var training *models.TrainingError
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return xhttp.NotFoundError("ERR_SESSION_NOT_FOUND", "session not found").WithError(err)
	case errors.Is(err, models.ErrFileNotFound):
		return xhttp.NotFoundError("ERR_FILE_NOT_FOUND", err.Error()).WithError(err)
	case errors.Is(err, models.ErrMalformed), errors.Is(err, models.ErrMissingColumn):
		return xhttp.UnprocessableError("ERR_MALFORMED_FILE", err.Error()).WithError(err)
	case errors.As(err, &insufficient):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_DATA", insufficient.Error()).
			WithParam("n", insufficient.N).
			WithParam("look_back", insufficient.LookBack).
			WithError(err)
	case errors.As(err, &training):
		return xhttp.UnprocessableError("ERR_TRAINING", training.Error()).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
