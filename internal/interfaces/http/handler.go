package http

import (
	"errors"
	"net/http"
	"strconv"

	"orderbot/internal/entities"
	"orderbot/internal/interfaces"
	"orderbot/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

type Handler struct {
	dashboard   *usecases.DashboardUsecase
	botUsername string
}

func NewHandler(dashboard *usecases.DashboardUsecase, botUsername string) *Handler {
	return &Handler{
		dashboard:   dashboard,
		botUsername: botUsername,
	}
}

func SetupRoutes(r *gin.Engine, dashboard *usecases.DashboardUsecase, auth *usecases.AuthUsecase,
	botUsername string, middleware *Middleware) {
	h := NewHandler(dashboard, botUsername)

	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20)) // 1MB max request size
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Admin panel is running"})
	})

	r.POST("/api/auth/login", func(c *gin.Context) {
		var loginReq struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&loginReq); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token, err := auth.Login(loginReq.Username, loginReq.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	// Protected Dashboard Routes
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerClient(5, 10))
	{
		api.GET("/dashboard/stats", h.GetStats)

		api.GET("/orders", h.ListOrders)
		api.POST("/orders/:id/status", h.UpdateOrderStatus)
		api.DELETE("/orders/:id", h.DeleteOrder)

		api.GET("/partners", h.ListPartners)
		api.GET("/partners/:id/qr", h.GetReferralQR)

		api.POST("/payments/:id/paid", h.MarkPaymentPaid)
	}
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListOrders supports ?status= and ?partner= equality filters; results are
// always newest-first.
func (h *Handler) ListOrders(c *gin.Context) {
	var filter interfaces.OrderFilter

	if status := c.Query("status"); status != "" && status != "all" {
		filter.Status = entities.OrderStatus(status)
	}
	if partner := c.Query("partner"); partner != "" && partner != "all" {
		id, err := strconv.ParseInt(partner, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner id"})
			return
		}
		filter.PartnerID = id
	}

	orders, err := h.dashboard.ListOrders(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, usecases.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.dashboard.UpdateOrderStatus(c.Request.Context(), id, entities.OrderStatus(payload.Status))
	switch {
	case errors.Is(err, usecases.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
	case errors.Is(err, usecases.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.dashboard.DeleteOrder(c.Request.Context(), id)
	switch {
	case errors.Is(err, usecases.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *Handler) ListPartners(c *gin.Context) {
	stats, err := h.dashboard.PartnerStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list partners"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) MarkPaymentPaid(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.dashboard.MarkPaymentPaid(c.Request.Context(), id)
	switch {
	case errors.Is(err, usecases.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark payment paid"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// GetReferralQR renders a partner's referral link as a PNG.
func (h *Handler) GetReferralQR(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	link := "https://t.me/" + h.botUsername + "?start=" + strconv.FormatInt(id, 10)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
