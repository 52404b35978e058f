package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/service/saga"
)

const defaultListLimit = 50

// Handler обслуживает REST API заказов поверх саги.
type Handler struct {
	saga     saga.Orchestrator
	orders   domain.OrderRepository
	timeline domain.TimelineRepository
	validate *validatorv10.Validate
	logger   *log.Entry
}

// NewHandler создаёт обработчик API.
func NewHandler(
	orchestrator saga.Orchestrator,
	orders domain.OrderRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Handler{
		saga:     orchestrator,
		orders:   orders,
		timeline: timeline,
		validate: validatorv10.New(),
		logger:   logger,
	}
}

// Register подключает маршруты API к gin-движку.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/orders", h.createOrder)
	r.GET("/orders", h.listOrders)
	r.GET("/orders/:id", h.getOrder)
	r.POST("/orders/:id/cancel", h.cancelOrder)
	r.GET("/orders/:id/timeline", h.getTimeline)
}

// createOrder запускает сагу размещения заказа и возвращает её итог.
// Сага синхронна: к моменту ответа заказ уже в терминальном статусе.
func (h *Handler) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	items := make([]domain.OrderLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderLineItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}

	order, err := h.saga.PlaceOrder(saga.PlaceOrderCommand{
		OrderID:           req.OrderID,
		RestaurantID:      req.RestaurantID,
		CustomerReference: req.CustomerReference,
		Items:             items,
		SimulationMode:    saga.SimulationMode(req.SimulationMode),
	})
	if err != nil {
		h.writeSagaError(c, req.OrderID, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) listOrders(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = parsed
	}

	orders, err := h.orders.List(limit)
	if err != nil {
		h.logger.WithError(err).Error("list orders failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": result})
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Param("id"))
	if err != nil {
		if domain.IsOrderNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		h.logger.WithError(err).Error("get order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) cancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	order, err := h.orders.Get(c.Param("id"))
	if err != nil {
		if domain.IsOrderNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		h.logger.WithError(err).Error("get order for cancel failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	canceled, err := h.saga.Cancel(order, req.Reason)
	if err != nil {
		// Заказ мог исчезнуть между Get и Cancel — это всё ещё 404, не 500.
		if domain.IsOrderNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		h.logger.WithError(err).WithField("order_id", order.ID).Error("cancel order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(canceled))
}

func (h *Handler) getTimeline(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := h.orders.Get(orderID); err != nil {
		if domain.IsOrderNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		h.logger.WithError(err).Error("get order for timeline failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	events, err := h.timeline.List(orderID)
	if err != nil {
		h.logger.WithError(err).Error("list timeline failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": toTimelineResponse(events)})
}

// bindAndValidate разбирает тело запроса и прогоняет validator-теги.
// При ошибке пишет 400 и возвращает false.
func (h *Handler) bindAndValidate(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "detail": err.Error()})
		return false
	}
	if err := h.validate.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return false
	}
	return true
}

// writeSagaError переводит ошибки саги в HTTP-статусы.
func (h *Handler) writeSagaError(c *gin.Context, orderID string, err error) {
	switch {
	case domain.IsDuplicateOrderID(err):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_order_id", "order_id": orderID})
	case domain.IsRestaurantError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "restaurant_failure", "detail": err.Error()})
	case domain.IsPaymentError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment_failure", "detail": err.Error()})
	default:
		h.logger.WithError(err).Error("place order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Tag()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
