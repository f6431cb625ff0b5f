package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"parklot-service/internal/domain/parking"
	"parklot-service/internal/service"
)

type Handler struct {
	ingest     *service.IngestService
	attendance *service.AttendanceService
	query      *service.QueryService
	log        zerolog.Logger
}

func NewHandler(
	ingest *service.IngestService,
	attendance *service.AttendanceService,
	query *service.QueryService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		ingest:     ingest,
		attendance: attendance,
		query:      query,
		log:        log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/api/v1")
	{
		public.POST("/recognitions", h.createRecognition)
		public.GET("/events", h.listEvents)
		public.GET("/search", h.searchByFragment)
		public.GET("/alerts", h.listAlerts)
	}

	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.POST("/sessions/open", h.openSession)
		protected.POST("/sessions/close", h.closeSession)
		protected.GET("/sessions", h.listSessions)
	}
}

type recognitionRequest struct {
	ImageData string `json:"image_data" binding:"required"`
	Category  string `json:"category" binding:"required"`
}

func (h *Handler) createRecognition(c *gin.Context) {
	var req recognitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	image, err := decodeImageData(req.ImageData)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("image_data is not valid base64"))
		return
	}

	event, err := h.ingest.Ingest(c.Request.Context(), image, parking.Category(req.Category))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           event.ID,
		"plate_number": event.PlateNumber,
		"image_ref":    event.ImageRef,
	})
}

func (h *Handler) openSession(c *gin.Context) {
	session, err := h.attendance.Open(c.Request.Context(), operatorID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(session))
}

func (h *Handler) closeSession(c *gin.Context) {
	session, err := h.attendance.Close(c.Request.Context(), operatorID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": session,
		"report": parking.ShiftReport{
			EntryCount:       session.EntryCount,
			ExitCount:        session.ExitCount,
			CurrentOccupancy: session.CurrentOccupancy,
			TotalFee:         session.TotalFee,
		},
	})
}

func (h *Handler) listSessions(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	sessions, totalPages, err := h.attendance.History(c.Request.Context(), operatorID(c), page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       sessions,
		"page":        page,
		"total_pages": totalPages,
	})
}

func (h *Handler) listEvents(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		result, err := h.query.ListByCategory(c.Request.Context(), parking.Category(category), page, pageSize)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	filter := parking.EventFilter{
		PlateContains: strings.TrimSpace(c.Query("plate")),
	}

	if direction := strings.TrimSpace(c.Query("direction")); direction != "" {
		switch parking.Direction(direction) {
		case parking.DirectionEntry, parking.DirectionExit, parking.DirectionUnknown:
			filter.Direction = parking.Direction(direction)
		default:
			c.JSON(http.StatusBadRequest, errorResponse("invalid direction"))
			return
		}
	}
	if class := strings.TrimSpace(c.Query("vehicle_class")); class != "" {
		switch parking.VehicleClass(class) {
		case parking.ClassNormal, parking.ClassLight, parking.ClassDisabled, parking.ClassIllegal:
			filter.VehicleClass = parking.VehicleClass(class)
		default:
			c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle class"))
			return
		}
	}

	if from := strings.TrimSpace(c.Query("from")); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid from time format"))
			return
		}
		filter.From = t
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid to time format"))
			return
		}
		filter.To = t
	}

	result, err := h.query.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) searchByFragment(c *gin.Context) {
	fragment := strings.TrimSpace(c.Query("fragment"))

	results, err := h.query.SearchByPlateFragment(c.Request.Context(), fragment)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(results))
}

func (h *Handler) listAlerts(c *gin.Context) {
	var window time.Duration
	if w := strings.TrimSpace(c.Query("window")); w != "" {
		parsed, err := time.ParseDuration(w)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid window duration"))
			return
		}
		window = parsed
	}

	events, err := h.query.RecentAlerts(c.Request.Context(), window)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(events))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, parking.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, parking.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, parking.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

// decodeImageData accepts plain base64 or a data URL as sent by capture
// pages ("data:image/jpeg;base64,...").
func decodeImageData(data string) ([]byte, error) {
	if idx := strings.Index(data, ","); idx != -1 && strings.HasPrefix(data, "data:") {
		data = data[idx+1:]
	}
	return base64.StdEncoding.DecodeString(data)
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
