// internal/domain/checkout/state.go
package checkout

// State is the position of a checkout session in the payment flow
type State int

const (
	StateIdle State = iota
	StateCollectingDetails
	StateRequestingPayment
	StatePaymentReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollectingDetails:
		return "collecting_details"
	case StateRequestingPayment:
		return "requesting_payment"
	case StatePaymentReady:
		return "payment_ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON responses
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
