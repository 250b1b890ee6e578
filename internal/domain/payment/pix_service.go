// internal/domain/payment/pix_service.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mercado-ia/storefront/internal/config"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

const createPixQrCodeEndpoint = "/pixQrCode/create"

// PixService creates PIX QR code charges with the payment provider
type PixService struct {
	apiKey     string
	baseURL    string
	expiresIn  int
	httpClient *http.Client
	logger     *logrus.Logger
	newOrderID func() string
}

// NewPixService creates a new PIX service. A missing API key is not an error
// here; every CreatePayment call reports it instead.
func NewPixService(cfg config.PaymentConfig, logger *logrus.Logger) *PixService {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &PixService{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		expiresIn: cfg.ExpiresIn,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:     logger,
		newOrderID: NewExternalOrderID,
	}
}

// ExpiresIn is the lifetime requested for every charge
func (s *PixService) ExpiresIn() time.Duration {
	return time.Duration(s.expiresIn) * time.Second
}

// NewExternalOrderID returns a collision resistant per-attempt order id
func NewExternalOrderID() string {
	return "order-" + uuid.NewString()
}

// CreatePayment forwards one charge to the provider and returns its JSON
// payload untouched. Nothing is retried.
func (s *PixService) CreatePayment(ctx context.Context, req PixRequest) (json.RawMessage, error) {
	if s.apiKey == "" {
		s.logger.Error("ABACATEPAY_API_KEY is not configured")
		return nil, &apperrors.ConfigurationError{Setting: "ABACATEPAY_API_KEY"}
	}

	externalID := s.newOrderID()
	s.logger.WithFields(logrus.Fields{
		"email":       req.Email,
		"amount":      req.Amount.String(),
		"external_id": externalID,
	}).Info("Creating PIX payment")

	body := createPixQrCodeRequest{
		Amount:      json.Number(req.Amount.String()),
		ExpiresIn:   s.expiresIn,
		Description: req.Description,
		Customer: providerCustomer{
			Name:      req.Name,
			Cellphone: req.Phone,
			Email:     req.Email,
			TaxID:     req.CPF,
		},
		Metadata: providerMetadata{
			ExternalID: externalID,
		},
	}

	response, err := s.makeAPICall(ctx, http.MethodPost, createPixQrCodeEndpoint, body)
	if err != nil {
		return nil, err
	}

	if !json.Valid(response) {
		return nil, &apperrors.UpstreamPaymentError{Message: "payment provider returned an invalid response"}
	}

	s.logger.WithField("external_id", externalID).Info("PIX payment created")
	return json.RawMessage(response), nil
}

// makeAPICall makes authenticated JSON calls to the provider API
func (s *PixService) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	if data != nil {
		var err error
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("PIX provider unreachable")
		return nil, &apperrors.TransportError{Op: "pix provider request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.TransportError{Op: "read pix provider response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Error("PIX provider rejected the request")
		return nil, &apperrors.UpstreamPaymentError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

// ParseCharge extracts the QR code payload from a provider response. A
// response without expiresAt is assumed to expire expiresIn from now.
func ParseCharge(raw json.RawMessage, expiresIn time.Duration) (*PixCharge, error) {
	var envelope providerEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &apperrors.UpstreamPaymentError{Message: "payment provider returned an invalid response"}
	}

	if envelope.Data == nil || (envelope.Data.BRCode == "" && envelope.Data.BRCodeBase64 == "") {
		message := "payment provider returned no QR code"
		var providerMessage string
		if json.Unmarshal(envelope.Error, &providerMessage) == nil && providerMessage != "" {
			message = providerMessage
		}
		return nil, &apperrors.UpstreamPaymentError{Message: message}
	}

	charge := &PixCharge{
		ID:           envelope.Data.ID,
		Amount:       envelope.Data.Amount,
		Status:       envelope.Data.Status,
		BRCode:       envelope.Data.BRCode,
		BRCodeBase64: envelope.Data.BRCodeBase64,
	}

	now := time.Now()
	if envelope.Data.ExpiresAt == "" {
		charge.ExpiresAt = now.Add(expiresIn)
	} else {
		expiresAt, err := time.Parse(time.RFC3339, envelope.Data.ExpiresAt)
		if err != nil {
			return nil, &apperrors.UpstreamPaymentError{Message: "payment provider returned an invalid expiration"}
		}
		charge.ExpiresAt = expiresAt
	}

	if !charge.ExpiresAt.After(now) {
		return nil, &apperrors.UpstreamPaymentError{Message: "payment provider returned an expired charge"}
	}

	return charge, nil
}
