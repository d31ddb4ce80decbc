package api

import (
	"net/http"
	"strconv"
	"time"

	"bundle-service/internal/broker"
	"bundle-service/internal/bundle"
	"bundle-service/internal/catalog"
	"bundle-service/internal/models"
	"bundle-service/internal/redisclient"
	"bundle-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	headerSession = "X-Bundle-Session"
	headerToken   = "X-Bundle-Token"
)

// Handler contains HTTP handlers
type Handler struct {
	bundleService  *bundle.Service
	payloadBuilder *catalog.PayloadBuilder
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	sessionTTL     time.Duration
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	bundleService *bundle.Service,
	payloadBuilder *catalog.PayloadBuilder,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		bundleService:  bundleService,
		payloadBuilder: payloadBuilder,
		redis:          redis,
		eventPublisher: eventPublisher,
		sessionTTL:     sessionTTL,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalog", h.getCatalog)
		v1.POST("/bundle", h.requireSessionToken(), h.submitBundle)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getCatalog serves the bundle-eligible catalog and establishes the session
// the builder submits under.
func (h *Handler) getCatalog(c *gin.Context) {
	payload, err := h.payloadBuilder.BuildPayload(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build catalog payload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "catalog_unavailable",
			"message": "The catalog is not available right now.",
		})
		return
	}

	sessionID := c.GetHeader(headerSession)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	token := uuid.New().String()
	if err := h.redis.SetSessionToken(c.Request.Context(), sessionID, token, h.sessionTTL); err != nil {
		h.logger.Error("Failed to store session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "session_unavailable",
			"message": "Could not establish a session.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payload": payload,
		"session": sessionID,
		"token":   token,
	})
}

// requireSessionToken rejects submissions whose anti-forgery token is absent
// or does not match the session's stored token, before any business logic.
func (h *Handler) requireSessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(headerSession)
		token := c.GetHeader(headerToken)

		if sessionID == "" || token == "" {
			util.SessionTokenRejectionsTotal.Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "invalid_token",
				"message": "Missing session token.",
			})
			return
		}

		stored, err := h.redis.GetSessionToken(c.Request.Context(), sessionID)
		if err != nil {
			h.logger.Error("Failed to load session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "session_unavailable",
				"message": "Could not verify the session.",
			})
			return
		}

		if stored == "" || stored != token {
			util.SessionTokenRejectionsTotal.Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "invalid_token",
				"message": "Session token mismatch.",
			})
			return
		}

		c.Set("session_id", sessionID)
		c.Next()
	}
}

// submitBundle handles bundle submission
func (h *Handler) submitBundle(c *gin.Context) {
	sessionID := c.GetString("session_id")

	var req models.BundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   bundle.CodeInvalidPayload,
			"message": "Invalid request payload.",
		})
		return
	}

	resp, rejection := h.bundleService.Submit(c.Request.Context(), sessionID, &req)
	if rejection != nil {
		h.publishRejected(c, sessionID, rejection.Code)
		c.JSON(rejection.Status, gin.H{
			"error":   rejection.Code,
			"message": rejection.Message,
		})
		return
	}

	h.publishAdded(c, sessionID, &req)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) publishAdded(c *gin.Context, sessionID string, req *models.BundleRequest) {
	if h.eventPublisher == nil {
		return
	}

	lines := make([]models.BundleLineData, 0, len(req.Items)+1)
	itemCount := 0
	if req.Box != nil {
		lines = append(lines, models.BundleLineData{
			ProductID:   req.Box.ProductID,
			VariationID: req.Box.VariationID,
			Quantity:    req.Box.Quantity,
			IsBox:       true,
		})
	}
	for _, item := range req.Items {
		lines = append(lines, models.BundleLineData{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
		itemCount += item.Quantity
	}

	event := &models.BundleAddedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBundleAdded,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		ItemCount: itemCount,
		Lines:     lines,
	}

	if err := h.eventPublisher.PublishBundleAdded(c.Request.Context(), event); err != nil {
		h.logger.Error("Failed to publish BundleAdded event", zap.Error(err))
	}
}

func (h *Handler) publishRejected(c *gin.Context, sessionID, code string) {
	if h.eventPublisher == nil {
		return
	}

	event := &models.BundleRejectedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBundleRejected,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		Code:      code,
	}

	if err := h.eventPublisher.PublishBundleRejected(c.Request.Context(), event); err != nil {
		h.logger.Error("Failed to publish BundleRejected event", zap.Error(err))
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
