package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrVerificationFailed means the gateway answered but the transaction is
	// not a successful charge. Checkout must not create an order in this
	// case.
	ErrVerificationFailed = errors.New("payment verification failed")
)

// Verifier re-checks a payment reference against the gateway before the
// order is trusted.
type Verifier interface {
	Verify(ctx context.Context, reference string) (*Transaction, error)
}

// Transaction is the verified gateway-side view of a charge.
type Transaction struct {
	Reference string
	Status    string
	Amount    int64
	Currency  string
	PaidAt    time.Time
	Channel   string
}

// Client talks to the payment gateway's REST API with the server-side secret
// key. The browser widget only ever sees the public key; verification always
// goes through here.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client
func NewClient(baseURL, secretKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string    `json:"status"`
		Reference string    `json:"reference"`
		Amount    int64     `json:"amount"`
		Currency  string    `json:"currency"`
		PaidAt    time.Time `json:"paid_at"`
		Channel   string    `json:"channel"`
	} `json:"data"`
}

// Verify looks up a transaction by reference. A non-success charge status or
// a failed API envelope returns ErrVerificationFailed.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Gateway verification returned non-OK status",
			zap.String("reference", reference),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: gateway returned HTTP %d for reference %s",
			ErrVerificationFailed, resp.StatusCode, reference)
	}

	var vr verifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if !vr.Status || vr.Data.Status != "success" {
		c.logger.Warn("Gateway reports unsuccessful transaction",
			zap.String("reference", reference),
			zap.String("charge_status", vr.Data.Status),
			zap.String("message", vr.Message),
		)
		return nil, fmt.Errorf("%w for reference %s", ErrVerificationFailed, reference)
	}

	return &Transaction{
		Reference: vr.Data.Reference,
		Status:    vr.Data.Status,
		Amount:    vr.Data.Amount,
		Currency:  vr.Data.Currency,
		PaidAt:    vr.Data.PaidAt,
		Channel:   vr.Data.Channel,
	}, nil
}
