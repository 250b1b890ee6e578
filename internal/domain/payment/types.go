// internal/domain/payment/types.go
package payment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PixRequest is the input of the payment adapter. It is built fresh for
// every checkout attempt.
type PixRequest struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	CPF         string          `json:"cpf"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// pixRequestWire sends the amount as a JSON number
type pixRequestWire struct {
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	CPF         string      `json:"cpf"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
}

func (r PixRequest) wire() pixRequestWire {
	return pixRequestWire{
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		CPF:         r.CPF,
		Amount:      json.Number(r.Amount.String()),
		Description: r.Description,
	}
}

// PixCharge is the QR code payload shown to the buyer
type PixCharge struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	BRCode       string          `json:"brCode"`
	BRCodeBase64 string          `json:"brCodeBase64"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}

// FunctionResponse is the envelope returned by the payment function
type FunctionResponse struct {
	Success bool            `json:"success"`
	Payment json.RawMessage `json:"payment,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Provider wire types for POST /pixQrCode/create
type createPixQrCodeRequest struct {
	Amount      json.Number      `json:"amount"`
	ExpiresIn   int              `json:"expiresIn"`
	Description string           `json:"description"`
	Customer    providerCustomer `json:"customer"`
	Metadata    providerMetadata `json:"metadata"`
}

type providerCustomer struct {
	Name      string `json:"name"`
	Cellphone string `json:"cellphone"`
	Email     string `json:"email"`
	TaxID     string `json:"taxId"`
}

type providerMetadata struct {
	ExternalID string `json:"externalId"`
}

type providerEnvelope struct {
	Data  *providerCharge `json:"data"`
	Error json.RawMessage `json:"error"`
}

type providerCharge struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	BRCode       string          `json:"brCode"`
	BRCodeBase64 string          `json:"brCodeBase64"`
	ExpiresAt    string          `json:"expiresAt"`
}
