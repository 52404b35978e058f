package restaurant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

const defaultTimeout = 5 * time.Second

// Client — HTTP-реализация RestaurantGateway поверх ресторанного сервиса.
// Все вызовы ограничены таймаутом; таймаут неотличим от любого другого сбоя шлюза.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *log.Entry
}

// NewClient создаёт клиента ресторанного сервиса. timeout <= 0 заменяется значением по умолчанию.
func NewClient(baseURL string, timeout time.Duration, logger *log.Entry) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.WithField("component", "restaurant-gateway")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type confirmRequest struct {
	OrderID string        `json:"order_id"`
	Items   []confirmItem `json:"items"`
}

type confirmItem struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
}

type confirmResponse struct {
	TotalAmount float64                 `json:"total_amount"`
	Items       []domain.PricedLineItem `json:"items"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Confirm резервирует заказ у ресторана и возвращает авторитетные цены.
func (c *Client) Confirm(restaurantID, orderID string, items []domain.OrderLineItem) (domain.ConfirmationDecision, error) {
	payload := confirmRequest{OrderID: orderID, Items: make([]confirmItem, 0, len(items))}
	for _, item := range items {
		payload.Items = append(payload.Items, confirmItem{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}

	url := fmt.Sprintf("%s/restaurants/%s/orders", c.baseURL, restaurantID)
	resp, err := c.post(url, payload)
	if err != nil {
		return domain.ConfirmationDecision{}, domain.NewRestaurantError(
			fmt.Sprintf("restaurant service unreachable: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body := readBody(resp.Body)
		return domain.ConfirmationDecision{}, domain.NewRestaurantError(
			fmt.Sprintf("restaurant rejected order (%d): %s", resp.StatusCode, body), nil)
	}

	var decoded confirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.ConfirmationDecision{}, domain.NewRestaurantError(
			fmt.Sprintf("restaurant returned malformed decision: %v", err), err)
	}

	c.logger.WithFields(log.Fields{
		"restaurant_id": restaurantID,
		"order_id":      orderID,
		"total_amount":  decoded.TotalAmount,
	}).Debug("restaurant confirmed order")

	return domain.ConfirmationDecision{TotalAmount: decoded.TotalAmount, Items: decoded.Items}, nil
}

// Cancel снимает бронь по заказу. Ресторанный сервис обрабатывает повторные
// и неизвестные заказы как no-op.
func (c *Client) Cancel(restaurantID, orderID, reason string) error {
	url := fmt.Sprintf("%s/restaurants/%s/orders/%s/cancel", c.baseURL, restaurantID, orderID)
	resp, err := c.post(url, cancelRequest{Reason: reason})
	if err != nil {
		return domain.NewRestaurantError(fmt.Sprintf("restaurant compensation failed: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body := readBody(resp.Body)
		return domain.NewRestaurantError(
			fmt.Sprintf("restaurant could not cancel order (%d): %s", resp.StatusCode, body), nil)
	}

	return nil
}

func (c *Client) post(url string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.httpc.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// readBody возвращает усечённое тело ответа для сообщения об ошибке.
func readBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

var _ domain.RestaurantGateway = (*Client)(nil)
