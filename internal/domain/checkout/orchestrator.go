// internal/domain/checkout/orchestrator.go
package checkout

import (
	"context"
	"strings"
	"sync"

	"github.com/mercado-ia/storefront/internal/domain/cart"
	"github.com/mercado-ia/storefront/internal/domain/payment"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Gateway creates PIX charges. Implemented by payment.DirectGateway and
// payment.FunctionClient.
type Gateway interface {
	CreatePixCharge(ctx context.Context, req payment.PixRequest) (*payment.PixCharge, error)
}

// CartReader is the part of the cart the orchestrator reads
type CartReader interface {
	Items() []cart.CartItem
}

// TransitionFunc observes state changes
type TransitionFunc func(from, to State)

// Summary is the checkout view of one session
type Summary struct {
	State        State              `json:"state"`
	ItemCount    int                `json:"item_count"`
	Total        decimal.Decimal    `json:"total"`
	TotalDisplay string             `json:"total_display"`
	Description  string             `json:"description"`
	Charge       *payment.PixCharge `json:"charge,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// Orchestrator drives one checkout session from buyer details to a PIX QR code
type Orchestrator struct {
	cart    CartReader
	gateway Gateway
	busy    BusyFlag
	logger  *logrus.Logger

	mu        sync.RWMutex
	state     State
	charge    *payment.PixCharge
	lastErr   error
	observers []TransitionFunc
}

// NewOrchestrator creates an orchestrator in the Idle state
func NewOrchestrator(cartReader CartReader, gateway Gateway, busy BusyFlag, logger *logrus.Logger) *Orchestrator {
	if busy == nil {
		busy = NewLocalFlag()
	}
	return &Orchestrator{
		cart:    cartReader,
		gateway: gateway,
		busy:    busy,
		logger:  logger,
		state:   StateIdle,
	}
}

// OnTransition registers fn to be called after every state change
func (o *Orchestrator) OnTransition(fn TransitionFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Begin opens the details form. A request in flight is left alone.
func (o *Orchestrator) Begin() State {
	o.mu.Lock()
	if o.state == StateRequestingPayment {
		o.mu.Unlock()
		return StateRequestingPayment
	}
	o.charge = nil
	o.lastErr = nil
	from, observers, changed := o.setStateLocked(StateCollectingDetails)
	o.mu.Unlock()

	if changed {
		o.notify(from, StateCollectingDetails, observers)
	}
	return StateCollectingDetails
}

// Submit validates details and requests one PIX charge for the cart total.
// A submit while another one is running returns apperrors.ErrSubmissionInFlight
// without touching the session.
func (o *Orchestrator) Submit(ctx context.Context, details BuyerDetails) (*payment.PixCharge, error) {
	acquired, err := o.busy.TryAcquire(ctx)
	if err != nil {
		return nil, &apperrors.TransportError{Op: "acquire checkout flag", Err: err}
	}
	if !acquired {
		return nil, apperrors.ErrSubmissionInFlight
	}
	defer func() {
		if err := o.busy.Release(context.WithoutCancel(ctx)); err != nil {
			o.logger.WithError(err).Warn("Failed to release checkout flag")
		}
	}()

	if o.State() != StateCollectingDetails {
		o.Begin()
	}

	if err := details.Validate(); err != nil {
		o.fail(err, false)
		return nil, err
	}

	items := o.cart.Items()
	if len(items) == 0 {
		err := apperrors.NewValidationError("cart is empty", "cart")
		o.fail(err, false)
		return nil, err
	}

	details = details.normalized()
	req := payment.PixRequest{
		Name:        details.Name,
		Phone:       details.Phone,
		Email:       details.Email,
		CPF:         details.CPF,
		Amount:      cart.Sum(items),
		Description: Describe(items),
	}

	o.transition(StateRequestingPayment)

	// The charge is created even when the caller goes away.
	charge, err := o.gateway.CreatePixCharge(context.WithoutCancel(ctx), req)
	if err != nil {
		o.logger.WithError(err).WithField("amount", req.Amount.String()).Warn("PIX charge failed")
		o.fail(err, true)
		return nil, err
	}

	o.mu.Lock()
	o.charge = charge
	o.lastErr = nil
	o.mu.Unlock()

	o.transition(StatePaymentReady)
	return charge, nil
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Charge returns the QR code payload once the state is PaymentReady
func (o *Orchestrator) Charge() *payment.PixCharge {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.charge
}

// LastError returns the failure of the latest attempt
func (o *Orchestrator) LastError() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastErr
}

// Summary reports the session state along with the current cart total
func (o *Orchestrator) Summary() Summary {
	items := o.cart.Items()
	total := cart.Sum(items)

	o.mu.RLock()
	defer o.mu.RUnlock()

	summary := Summary{
		State:        o.state,
		ItemCount:    len(items),
		Total:        total,
		TotalDisplay: FormatBRL(total),
		Description:  Describe(items),
		Charge:       o.charge,
	}
	if o.lastErr != nil {
		summary.Error = apperrors.UserMessage(o.lastErr)
	}
	return summary
}

// fail records err. Upstream failures pass through Failed before returning
// to CollectingDetails.
func (o *Orchestrator) fail(err error, attempted bool) {
	o.mu.Lock()
	o.lastErr = err
	o.charge = nil
	o.mu.Unlock()

	if attempted {
		o.transition(StateFailed)
	}
	o.transition(StateCollectingDetails)
}

func (o *Orchestrator) transition(to State) {
	o.mu.Lock()
	from, observers, changed := o.setStateLocked(to)
	o.mu.Unlock()

	if changed {
		o.notify(from, to, observers)
	}
}

// setStateLocked must be called with o.mu held
func (o *Orchestrator) setStateLocked(to State) (State, []TransitionFunc, bool) {
	from := o.state
	if from == to {
		return from, nil, false
	}
	o.state = to
	observers := make([]TransitionFunc, len(o.observers))
	copy(observers, o.observers)
	return from, observers, true
}

func (o *Orchestrator) notify(from, to State, observers []TransitionFunc) {
	o.logger.WithFields(logrus.Fields{
		"from": from.String(),
		"to":   to.String(),
	}).Debug("Checkout state changed")

	for _, fn := range observers {
		fn(from, to)
	}
}

// Describe joins the agent names of items for the charge description
func Describe(items []cart.CartItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Agent != nil {
			names = append(names, item.Agent.Name)
		}
	}
	return strings.Join(names, ", ")
}

// FormatBRL renders an amount the way the storefront displays prices
func FormatBRL(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}
