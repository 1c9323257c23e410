package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/core/service"
)

// SessionCookie carries the signed-in user's e-mail.
const SessionCookie = "user_email"

const sessionKey = "session_email"

type HTTPHandler struct {
	registration *service.RegistrationService
	catalog      *service.CatalogService
	orders       *service.OrderService
}

type RegisterHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OrderHTTPRequest struct {
	RequestID string `json:"request_id"`
	ProductID int64  `json:"product_id"`
}

type ProductView struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	SimCount *int            `json:"sim_count,omitempty"`
	CPU      *string         `json:"cpu,omitempty"`
}

type OrderView struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Status    string `json:"status"`
}

func NewHTTPHandler(registration *service.RegistrationService, catalog *service.CatalogService, orders *service.OrderService) *HTTPHandler {
	return &HTTPHandler{registration: registration, catalog: catalog, orders: orders}
}

// Routes mounts every endpoint on r.
func (h *HTTPHandler) Routes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)

	authed := api.Group("", requireSession)
	authed.POST("/orders", h.PlaceOrder)
	authed.GET("/orders/:id", h.GetOrder)
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req RegisterHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResult(c, http.StatusBadRequest, false, "invalid request body")
		return
	}

	res, err := h.registration.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeResult(c, http.StatusInternalServerError, false, "internal error")
		return
	}

	status := http.StatusCreated
	if !res.Success {
		status = http.StatusBadRequest
		if res.Message == service.MsgEmailTaken {
			status = http.StatusConflict
		}
	}
	writeResult(c, status, res.Success, res.Message)
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req LoginHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResult(c, http.StatusBadRequest, false, "invalid request body")
		return
	}

	user, res, err := h.registration.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeResult(c, http.StatusInternalServerError, false, "internal error")
		return
	}
	if !res.Success {
		writeResult(c, http.StatusUnauthorized, false, res.Message)
		return
	}

	c.SetCookie(SessionCookie, user.Email, 0, "/", "", false, true)
	writeResult(c, http.StatusOK, true, res.Message)
}

func (h *HTTPHandler) Logout(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	writeResult(c, http.StatusOK, true, "logged out")
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		writeResult(c, http.StatusInternalServerError, false, "internal error")
		return
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, productView(p))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": views})
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.catalog.Get(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeResult(c, http.StatusNotFound, false, "product not found")
		return
	}
	if err != nil {
		writeResult(c, http.StatusInternalServerError, false, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": productView(*p)})
}

func (h *HTTPHandler) PlaceOrder(c *gin.Context) {
	var req OrderHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		writeResult(c, http.StatusBadRequest, false, "missing required fields")
		return
	}
	if req.RequestID == "" {
		req.RequestID = c.GetHeader("Idempotency-Key")
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), req.RequestID, c.GetString(sessionKey), req.ProductID)
	if err != nil {
		status, message := orderErrorStatus(err)
		writeResult(c, status, false, message)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "order placed successfully",
		"order":   orderView(*order),
	})
}

func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeResult(c, http.StatusNotFound, false, "order not found")
		return
	}
	if err != nil {
		writeResult(c, http.StatusInternalServerError, false, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": orderView(*order)})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requireSession(c *gin.Context) {
	email, err := c.Cookie(SessionCookie)
	if err != nil || email == "" {
		writeResult(c, http.StatusUnauthorized, false, "login required")
		c.Abort()
		return
	}
	c.Set(sessionKey, email)
	c.Next()
}

func orderErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound, "user or product not found"
	case errors.Is(err, domain.ErrConstraintViolation):
		return http.StatusUnprocessableEntity, "order rejected"
	case errors.Is(err, service.ErrBroadcast):
		return http.StatusInternalServerError, "order saved but notification failed"
	}
	return http.StatusInternalServerError, "internal error"
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeResult(c, http.StatusBadRequest, false, "invalid id")
		return 0, false
	}
	return id, true
}

func writeResult(c *gin.Context, status int, success bool, message string) {
	c.JSON(status, gin.H{"success": success, "message": message})
}

func productView(p domain.Product) ProductView {
	v := ProductView{ID: p.ID, Name: p.Name, Price: p.Price, Category: string(p.Category)}
	if p.Phone != nil {
		sims := p.Phone.SimCount
		v.SimCount = &sims
	}
	if p.Computer != nil {
		cpu := p.Computer.CPU
		v.CPU = &cpu
	}
	return v
}

func orderView(o domain.Order) OrderView {
	return OrderView{ID: o.ID, UserID: o.UserID, ProductID: o.ProductID, Status: o.Status}
}
