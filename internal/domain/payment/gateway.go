// internal/domain/payment/gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// DirectGateway calls the provider in-process
type DirectGateway struct {
	service *PixService
}

// NewDirectGateway creates a gateway backed by service
func NewDirectGateway(service *PixService) *DirectGateway {
	return &DirectGateway{service: service}
}

// CreatePixCharge creates a charge and parses its QR code payload
func (g *DirectGateway) CreatePixCharge(ctx context.Context, req PixRequest) (*PixCharge, error) {
	raw, err := g.service.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseCharge(raw, g.service.ExpiresIn())
}

// FunctionClient reaches the provider through the standalone payment function
type FunctionClient struct {
	url        string
	expiresIn  time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewFunctionClient creates a client for the payment function at url.
// expiresIn must match the lifetime the function requests from the provider.
func NewFunctionClient(url string, timeout, expiresIn time.Duration, logger *logrus.Logger) *FunctionClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FunctionClient{
		url:        url,
		expiresIn:  expiresIn,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CreatePixCharge posts the request to the function and unwraps its envelope
func (c *FunctionClient) CreatePixCharge(ctx context.Context, req PixRequest) (*PixCharge, error) {
	body, err := json.Marshal(req.wire())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).Error("Payment function unreachable")
		return nil, &apperrors.TransportError{Op: "payment function request", Err: err}
	}
	defer resp.Body.Close()

	var envelope FunctionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &apperrors.UpstreamPaymentError{StatusCode: resp.StatusCode}
	}

	if !envelope.Success {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"error":  envelope.Error,
		}).Warn("Payment function reported a failure")
		return nil, &apperrors.UpstreamPaymentError{Message: envelope.Error}
	}

	return ParseCharge(envelope.Payment, c.expiresIn)
}
