package payment

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

// Client — HTTP-реализация PaymentGateway поверх платёжного сервиса.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *log.Entry
}

// NewClient создаёт клиента платёжного сервиса. timeout <= 0 заменяется значением по умолчанию.
func NewClient(baseURL string, timeout time.Duration, logger *log.Entry) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.WithField("component", "payment-gateway")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type paymentRequest struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
}

type refundRequest struct {
	Amount float64 `json:"amount"`
}

type paymentResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// AuthorizeAndCapture списывает сумму по заказу одним вызовом.
func (c *Client) AuthorizeAndCapture(orderID string, amount float64) (domain.PaymentResult, error) {
	resp, err := c.post(c.baseURL+"/payments", paymentRequest{OrderID: orderID, Amount: amount})
	if err != nil {
		return domain.PaymentResult{}, domain.NewPaymentError(
			fmt.Sprintf("payment service unreachable: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body := readBody(resp.Body)
		return domain.PaymentResult{}, domain.NewPaymentError(
			fmt.Sprintf("payment declined (%d): %s", resp.StatusCode, body), nil)
	}

	result, err := decodeResult(resp.Body)
	if err != nil {
		return domain.PaymentResult{}, domain.NewPaymentError(
			fmt.Sprintf("payment returned malformed result: %v", err), err)
	}

	c.logger.WithFields(log.Fields{
		"order_id":  orderID,
		"reference": result.Reference,
	}).Debug("payment captured")

	return result, nil
}

// Refund возвращает средства по ранее выданному reference. Платёжный сервис
// обрабатывает повторный refund как no-op.
func (c *Client) Refund(reference string, amount float64) (domain.PaymentResult, error) {
	url := fmt.Sprintf("%s/payments/%s/refund", c.baseURL, reference)
	resp, err := c.post(url, refundRequest{Amount: amount})
	if err != nil {
		return domain.PaymentResult{}, domain.NewPaymentError(
			fmt.Sprintf("refund failed: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body := readBody(resp.Body)
		return domain.PaymentResult{}, domain.NewPaymentError(
			fmt.Sprintf("refund failed (%d): %s", resp.StatusCode, body), nil)
	}

	result, err := decodeResult(resp.Body)
	if err != nil {
		return domain.PaymentResult{}, domain.NewPaymentError(
			fmt.Sprintf("refund returned malformed result: %v", err), err)
	}
	if result.Reference == "" {
		result.Reference = reference
	}
	return result, nil
}

func (c *Client) post(url string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.httpc.Post(url, "application/json", bytes.NewReader(body))
}

func decodeResult(r io.Reader) (domain.PaymentResult, error) {
	var decoded paymentResponse
	if err := json.NewDecoder(r).Decode(&decoded); err != nil {
		return domain.PaymentResult{}, err
	}
	return domain.PaymentResult{
		Reference: decoded.PaymentID,
		Status:    domain.PaymentStatus(decoded.Status),
	}, nil
}

// readBody возвращает усечённое тело ответа для сообщения об ошибке.
func readBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

var _ domain.PaymentGateway = (*Client)(nil)
