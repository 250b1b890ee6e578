// internal/domain/checkout/details.go
package checkout

import (
	"strings"

	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
)

// BuyerDetails are the fields the PIX provider needs to identify the payer
type BuyerDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
}

// Validate requires all four fields to be non-blank
func (d BuyerDetails) Validate() error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"phone", d.Phone},
		{"email", d.Email},
		{"cpf", d.CPF},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}

	if len(missing) > 0 {
		return &apperrors.ValidationError{Fields: missing}
	}
	return nil
}

func (d BuyerDetails) normalized() BuyerDetails {
	return BuyerDetails{
		Name:  strings.TrimSpace(d.Name),
		Phone: strings.TrimSpace(d.Phone),
		Email: strings.TrimSpace(d.Email),
		CPF:   strings.TrimSpace(d.CPF),
	}
}
