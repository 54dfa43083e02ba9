package api

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"streetkitchen/models"
	"streetkitchen/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSuggestionCount = 3
	maxSuggestionCount     = 10
)

type Handler struct {
	store    Store
	checkout Checkout
	policy   services.PricingPolicy

	// Circuits reports notification circuit states; nil hides the endpoint data.
	Circuits func() map[string]string
	// OnStatusChange runs in the background after an order changes status.
	OnStatusChange func(ctx context.Context, orderID int64)
}

func NewHandler(store Store, checkout Checkout, policy services.PricingPolicy) *Handler {
	return &Handler{store: store, checkout: checkout, policy: policy}
}

// writeError maps service errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "order validation failed",
			"violations": verr.Messages(),
		})
	case errors.Is(err, services.ErrVendorNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCustomComboNotFound),
		errors.Is(err, services.ErrComboRuleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrUnknownItem),
		errors.Is(err, services.ErrCrossVendorItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrVendorCodeExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not allocate a vendor code, try again"})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *Handler) vendor(c *gin.Context) (*models.Vendor, bool) {
	v, err := h.store.VendorByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return v, true
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CircuitStatus(c *gin.Context) {
	states := map[string]string{}
	if h.Circuits != nil {
		states = h.Circuits()
	}
	c.JSON(http.StatusOK, gin.H{"circuits": states})
}

func (h *Handler) CreateVendor(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		City           string `json:"city"`
		Pincode        string `json:"pincode"`
		OwnerName      string `json:"owner_name"`
		TelegramChatID *int64 `json:"telegram_chat_id"`
		WebhookURL     string `json:"webhook_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	v, err := h.store.CreateVendor(c.Request.Context(), models.CreateVendorInput{
		Name:           strings.TrimSpace(req.Name),
		City:           req.City,
		Pincode:        req.Pincode,
		OwnerName:      req.OwnerName,
		TelegramChatID: req.TelegramChatID,
		WebhookURL:     req.WebhookURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toVendorJSON(v))
}

func (h *Handler) ListVendors(c *gin.Context) {
	vendors, err := h.store.Vendors(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := []vendorJSON{}
	for i := range vendors {
		out = append(out, toVendorJSON(&vendors[i]))
	}
	c.JSON(http.StatusOK, gin.H{"vendors": out})
}

func (h *Handler) Menu(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	items, err := h.store.Menu(ctx, v.ID, c.Query("all") != "true")
	if err != nil {
		writeError(c, err)
		return
	}
	combos, err := h.store.Combos(ctx, v.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	rules, err := h.store.ActiveComboRules(ctx, v.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := struct {
		Vendor     vendorJSON      `json:"vendor"`
		Items      []menuItemJSON  `json:"items"`
		Combos     []comboJSON     `json:"combos"`
		ComboRules []comboRuleJSON `json:"combo_rules"`
	}{
		Vendor:     toVendorJSON(v),
		Items:      []menuItemJSON{},
		Combos:     []comboJSON{},
		ComboRules: []comboRuleJSON{},
	}
	for _, m := range items {
		resp.Items = append(resp.Items, toMenuItemJSON(m))
	}
	for _, cb := range combos {
		resp.Combos = append(resp.Combos, comboJSON{ID: cb.ID, Name: cb.Name, Description: cb.Description, Price: money(cb.Price)})
	}
	for _, r := range rules {
		resp.ComboRules = append(resp.ComboRules, toComboRuleJSON(r))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AddMenuItem(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	var req struct {
		Name     string          `json:"name"`
		Category string          `json:"category"`
		Price    decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := h.store.AddMenuItem(c.Request.Context(), v.ID, req.Category, req.Name, req.Price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) SetMenuItemAvailability(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsAvailable *bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_available is required"})
		return
	}
	if err := h.store.SetMenuItemAvailability(c.Request.Context(), v.ID, itemID, *req.IsAvailable); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddCombo(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := h.store.AddCombo(c.Request.Context(), v.ID, req.Name, req.Description, req.Price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) AddComboRule(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	var req struct {
		MenuItemID         int64           `json:"menu_item_id"`
		MinQuantity        int             `json:"min_quantity"`
		DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := h.store.AddComboRule(c.Request.Context(), v.ID, req.MenuItemID, req.MinQuantity, req.DiscountPercentage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) DeactivateComboRule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeactivateComboRule(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Suggestions(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	count := defaultSuggestionCount
	if s := c.Query("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > maxSuggestionCount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 0 and 10"})
			return
		}
		count = n
	}

	ctx := c.Request.Context()
	menu, err := h.store.Menu(ctx, v.ID, true)
	if err != nil {
		writeError(c, err)
		return
	}
	rules, err := h.store.ActiveComboRules(ctx, v.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	s := services.SuggestCombo(menu, rules, h.policy, c.Query("mood"), c.Query("profile"))
	suggestion := suggestionJSON{
		Mood:      s.Mood,
		Profile:   s.Profile,
		Items:     []suggestionItemJSON{},
		Nutrition: s.Nutrition,
		Tip:       s.Tip,
		quoteJSON: toQuoteJSON(v.Code, nil, s.Quote),
	}
	for _, it := range s.Items {
		suggestion.Items = append(suggestion.Items, suggestionItemJSON{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      money(it.UnitPrice),
		})
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	random := []randomComboJSON{}
	for _, rc := range services.RandomCombos(menu, rules, h.policy, count, rng) {
		j := randomComboJSON{Nutrition: rc.Nutrition, quoteJSON: toQuoteJSON(v.Code, nil, rc.Quote)}
		for _, m := range rc.Items {
			j.Items = append(j.Items, toMenuItemJSON(m))
		}
		random = append(random, j)
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion, "random_combos": random})
}

func (h *Handler) Quote(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.checkout.Quote(c.Request.Context(), req.toInput(c.Param("code")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteJSON(res.Vendor.Code, res.Lines, res.Quote))
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	o, err := h.checkout.Place(c.Request.Context(), req.toInput(c.Param("code")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderJSON(o))
}

func (h *Handler) VendorOrders(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := h.store.VendorOrders(c.Request.Context(), v.ID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := []orderJSON{}
	for i := range orders {
		out = append(out, toOrderJSON(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *Handler) DailyStats(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	s, err := h.store.DailyStats(c.Request.Context(), v.ID, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsJSON{
		Date:           s.Date,
		OrdersCount:    s.OrdersCount,
		CancelledCount: s.CancelledCount,
		Subtotal:       money(s.Subtotal),
		DiscountTotal:  money(s.DiscountTotal),
		TaxAmount:      money(s.TaxAmount),
		DeliveryFees:   money(s.DeliveryFees),
		Revenue:        money(s.Revenue),
	})
}

func (h *Handler) CreateCustomCombo(c *gin.Context) {
	v, ok := h.vendor(c)
	if !ok {
		return
	}
	var req struct {
		CustomerID  *int64 `json:"customer_id"`
		SessionKey  string `json:"session_key"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Items       []struct {
			MenuItemID int64 `json:"menu_item_id"`
			Quantity   int   `json:"quantity"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in := services.CreateCustomComboInput{
		VendorID:    v.ID,
		CustomerID:  req.CustomerID,
		SessionKey:  req.SessionKey,
		Title:       req.Title,
		Description: req.Description,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.CustomComboItemInput{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}

	cc, err := h.store.CreateCustomCombo(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomComboJSON(cc))
}

func (h *Handler) ValidateCustomCombo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cc, violations, err := h.store.ValidateCustomCombo(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"combo":      toCustomComboJSON(cc),
		"valid":      len(violations) == 0,
		"violations": append([]string{}, violations...),
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	o, err := h.store.Order(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderJSON(o))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	o, err := h.store.UpdateOrderStatus(c.Request.Context(), id, strings.ToLower(strings.TrimSpace(req.Status)), req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.OnStatusChange != nil {
		go h.OnStatusChange(context.Background(), o.ID)
	}
	c.JSON(http.StatusOK, toOrderJSON(o))
}

func (h *Handler) OrderTracking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	o, err := h.store.Order(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	events, err := h.store.OrderTracking(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	history := []trackingJSON{}
	for _, e := range events {
		history = append(history, trackingJSON{Status: e.Status, Note: e.Note, CreatedAt: e.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id": o.ID,
		"status":   o.Status,
		"message":  services.CustomerMessageForOrderStatus(o, o.Status),
		"history":  history,
	})
}
