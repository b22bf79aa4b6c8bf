package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"counter_pos/internal/models"
	"counter_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type APIHandler struct {
	menu      services.MenuCatalog
	directory services.UserDirectory
	ledger    services.OrderLedger
	sessions  services.SessionManager
	jwtSecret []byte
	logger    *zap.Logger
}

func NewAPIHandler(
	menu services.MenuCatalog,
	directory services.UserDirectory,
	ledger services.OrderLedger,
	sessions services.SessionManager,
	jwtSecret string,
	logger *zap.Logger,
) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		menu:      menu,
		directory: directory,
		ledger:    ledger,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// RegisterRoutes mounts the counter API on router.
func (h *APIHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/login", h.Login)
	api.GET("/menu", h.ListMenu)

	auth := api.Group("", AuthMiddleware(h.jwtSecret, h.sessions))
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)

		auth.GET("/cart", h.GetCart)
		auth.DELETE("/cart", h.ClearCart)
		auth.POST("/cart/items", h.AddCartItem)
		auth.POST("/cart/items/:name/increment", h.IncrementCartItem)
		auth.POST("/cart/items/:name/decrement", h.DecrementCartItem)
		auth.DELETE("/cart/items/:name", h.RemoveCartItem)

		auth.POST("/orders/submit", h.SubmitOrder)
		auth.POST("/orders/checkout", h.CheckoutOrder)
		auth.GET("/orders", h.ListOrders)
		auth.GET("/orders/:number", h.GetOrder)
		auth.POST("/orders/:number/paid", h.MarkOrderPaid)
		auth.POST("/orders/:number/unpaid", h.MarkOrderUnpaid)
		auth.DELETE("/orders/:number", h.CancelOrder)

		auth.GET("/reports/revenue", h.Revenue)
	}

	admin := auth.Group("/users", AdminOnly())
	{
		admin.GET("", h.ListUsers)
		admin.POST("", h.AddUser)
		admin.DELETE("/:username", h.DeleteUser)
	}
}

// Session endpoints

func (h *APIHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	s, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, expiresAt, err := GenerateToken(h.jwtSecret, s, h.sessions.TTL())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       s.User.Redacted(),
	})
}

func (h *APIHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), currentSession(c).ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *APIHandler) Me(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"user":       s.User.Redacted(),
		"is_admin":   s.IsAdmin(),
		"cart":       cartBody(s.Cart),
		"created_at": s.CreatedAt,
	})
}

func (h *APIHandler) ListMenu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.menu.ListItems()})
}

// Cart endpoints

func cartBody(cart *services.Cart) gin.H {
	return gin.H{"items": cart.Snapshot(), "total": cart.Total()}
}

// updateCart applies fn to the caller's session cart and responds with the
// resulting cart.
func (h *APIHandler) updateCart(c *gin.Context, fn func(*services.Cart) error) {
	s, err := h.sessions.Update(c.Request.Context(), currentSession(c).ID, func(s *services.Session) error {
		return fn(s.Cart)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartBody(s.Cart))
}

func (h *APIHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartBody(currentSession(c).Cart))
}

func (h *APIHandler) AddCartItem(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	item, err := h.menu.FindByName(req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	h.updateCart(c, func(cart *services.Cart) error {
		cart.AddItem(item)
		return nil
	})
}

func (h *APIHandler) IncrementCartItem(c *gin.Context) {
	name := c.Param("name")
	h.updateCart(c, func(cart *services.Cart) error { return cart.IncrementItem(name) })
}

func (h *APIHandler) DecrementCartItem(c *gin.Context) {
	name := c.Param("name")
	h.updateCart(c, func(cart *services.Cart) error { return cart.DecrementItem(name) })
}

func (h *APIHandler) RemoveCartItem(c *gin.Context) {
	name := c.Param("name")
	h.updateCart(c, func(cart *services.Cart) error { return cart.RemoveItem(name) })
}

func (h *APIHandler) ClearCart(c *gin.Context) {
	h.updateCart(c, func(cart *services.Cart) error {
		cart.Clear()
		return nil
	})
}

// Order endpoints

func (h *APIHandler) SubmitOrder(c *gin.Context) {
	h.finalize(c, (*services.Session).Submit)
}

func (h *APIHandler) CheckoutOrder(c *gin.Context) {
	h.finalize(c, (*services.Session).Checkout)
}

func (h *APIHandler) finalize(c *gin.Context, finalize func(*services.Session, services.OrderLedger) (models.Order, error)) {
	var order models.Order
	_, err := h.sessions.Update(c.Request.Context(), currentSession(c).ID, func(s *services.Session) error {
		var err error
		order, err = finalize(s, h.ledger)
		return err
	})
	if err != nil {
		if order.OrderNumber != 0 {
			// The order is persisted; only the cached cart is stale.
			h.logger.Error("order saved but session not updated",
				zap.Int("order_number", order.OrderNumber),
				zap.Error(err))
			c.JSON(http.StatusCreated, gin.H{"order": order})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *APIHandler) ListOrders(c *gin.Context) {
	var orders []models.Order
	if staff := c.Query("staff"); staff != "" {
		orders = h.ledger.OrdersByStaff(staff)
	} else {
		orders = h.ledger.ListOrders()
	}
	if orders == nil {
		orders = []models.Order{}
	}

	if c.Query("order") == "newest" {
		for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
			orders[i], orders[j] = orders[j], orders[i]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":            orders,
		"next_order_number": h.ledger.NextOrderNumber(),
	})
}

func orderNumberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n <= 0 {
		writeError(c, &services.ValidationError{Field: "number", Message: "order number must be a positive integer"})
		return 0, false
	}
	return n, true
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	n, ok := orderNumberParam(c)
	if !ok {
		return
	}
	order, err := h.ledger.GetOrder(n)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *APIHandler) MarkOrderPaid(c *gin.Context) {
	h.updateOrder(c, h.ledger.MarkPaid)
}

func (h *APIHandler) MarkOrderUnpaid(c *gin.Context) {
	h.updateOrder(c, h.ledger.MarkUnpaid)
}

func (h *APIHandler) updateOrder(c *gin.Context, update func(int) error) {
	n, ok := orderNumberParam(c)
	if !ok {
		return
	}
	if err := update(n); err != nil {
		writeError(c, err)
		return
	}
	order, err := h.ledger.GetOrder(n)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *APIHandler) CancelOrder(c *gin.Context) {
	n, ok := orderNumberParam(c)
	if !ok {
		return
	}
	if err := h.ledger.Cancel(n); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "order_number": n})
}

func (h *APIHandler) Revenue(c *gin.Context) {
	orders := h.ledger.ListOrders()
	paid := 0
	for _, o := range orders {
		if o.Paid {
			paid++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"paid_total":        h.ledger.TotalRevenue(),
		"outstanding_total": h.ledger.OutstandingTotal(),
		"paid_orders":       paid,
		"unpaid_orders":     len(orders) - paid,
	})
}

// User endpoints (Admin only)

func (h *APIHandler) ListUsers(c *gin.Context) {
	users := h.directory.ListUsers()
	redacted := make([]models.User, len(users))
	for i, u := range users {
		redacted[i] = u.Redacted()
	}
	c.JSON(http.StatusOK, gin.H{"users": redacted})
}

func (h *APIHandler) AddUser(c *gin.Context) {
	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		Permission string `json:"permission"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	permission, err := models.ParsePermission(req.Permission)
	if err != nil {
		writeError(c, &services.ValidationError{Field: "permission", Message: err.Error()})
		return
	}
	if err := currentSession(c).AddUser(h.directory, req.Username, req.Password, permission); err != nil {
		writeError(c, err)
		return
	}

	user, err := h.directory.GetUser(strings.TrimSpace(req.Username))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user.Redacted()})
}

func (h *APIHandler) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	if err := currentSession(c).DeleteUser(h.directory, username); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "username": username})
}
