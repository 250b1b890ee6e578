package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/domain/cart"
	"github.com/mercado-ia/storefront/internal/domain/payment"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/mercado-ia/storefront/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCart struct {
	items []cart.CartItem
}

func (c *staticCart) Items() []cart.CartItem {
	items := make([]cart.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

func cartWith(prices map[string]string) *staticCart {
	c := &staticCart{}
	for name, price := range prices {
		c.items = append(c.items, cart.CartItem{
			ID:    "item-" + name,
			Agent: &agent.Agent{Name: name, Price: decimal.RequireFromString(price)},
		})
	}
	return c
}

type fakeGateway struct {
	calls    atomic.Int32
	started  chan struct{}
	release  chan struct{}
	err      error
	mu       sync.Mutex
	requests []payment.PixRequest
	ctxErrs  []error
}

func (g *fakeGateway) CreatePixCharge(ctx context.Context, req payment.PixRequest) (*payment.PixCharge, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.ctxErrs = append(g.ctxErrs, ctx.Err())
	g.mu.Unlock()

	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.err != nil {
		return nil, g.err
	}
	return &payment.PixCharge{
		ID:           "pix_char_1",
		Amount:       req.Amount,
		Status:       "PENDING",
		BRCode:       "000201010212",
		BRCodeBase64: "data:image/png;base64,iVBORw0KGgo=",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

var ana = BuyerDetails{Name: "Ana", Phone: "11999999999", Email: "a@x.com", CPF: "12345678900"}

func TestSubmit_EmailBotScenario(t *testing.T) {
	gateway := &fakeGateway{}
	o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, nil, logger.Discard())

	charge, err := o.Submit(context.Background(), ana)
	require.NoError(t, err)

	assert.Equal(t, StatePaymentReady, o.State())
	assert.NotEmpty(t, charge.BRCode)
	assert.NotEmpty(t, charge.BRCodeBase64)
	assert.True(t, charge.ExpiresAt.After(time.Now()))
	assert.Same(t, charge, o.Charge())

	summary := o.Summary()
	assert.Equal(t, "R$ 150.00", summary.TotalDisplay)
	assert.Equal(t, "Email Bot", summary.Description)
	assert.Empty(t, summary.Error)

	require.Len(t, gateway.requests, 1)
	req := gateway.requests[0]
	assert.True(t, req.Amount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "Email Bot", req.Description)
	assert.Equal(t, "Ana", req.Name)
	assert.Equal(t, "12345678900", req.CPF)
}

func TestSubmit_MissingField(t *testing.T) {
	tests := []struct {
		name    string
		details BuyerDetails
		missing []string
	}{
		{"name", BuyerDetails{Phone: ana.Phone, Email: ana.Email, CPF: ana.CPF}, []string{"name"}},
		{"phone", BuyerDetails{Name: ana.Name, Email: ana.Email, CPF: ana.CPF}, []string{"phone"}},
		{"email", BuyerDetails{Name: ana.Name, Phone: ana.Phone, CPF: ana.CPF}, []string{"email"}},
		{"cpf blank", BuyerDetails{Name: ana.Name, Phone: ana.Phone, Email: ana.Email, CPF: "   "}, []string{"cpf"}},
		{"all", BuyerDetails{}, []string{"name", "phone", "email", "cpf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{}
			o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, nil, logger.Discard())

			_, err := o.Submit(context.Background(), tt.details)

			var validationErr *apperrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.missing, validationErr.Fields)
			assert.Equal(t, int32(0), gateway.calls.Load())
			assert.Equal(t, StateCollectingDetails, o.State())
			assert.Equal(t, err, o.LastError())
		})
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	gateway := &fakeGateway{}
	o := NewOrchestrator(&staticCart{}, gateway, nil, logger.Discard())

	summary := o.Summary()
	assert.True(t, summary.Total.IsZero())
	assert.Equal(t, "R$ 0.00", summary.TotalDisplay)

	_, err := o.Submit(context.Background(), ana)

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "cart is empty", err.Error())
	assert.Equal(t, int32(0), gateway.calls.Load())
}

func TestSubmit_UpstreamFailureReturnsToDetails(t *testing.T) {
	gateway := &fakeGateway{err: &apperrors.UpstreamPaymentError{StatusCode: 500}}
	shoppingCart := cartWith(map[string]string{"Email Bot": "150.00", "CRM Sync": "89.90"})
	o := NewOrchestrator(shoppingCart, gateway, nil, logger.Discard())

	var transitions []string
	o.OnTransition(func(from, to State) {
		transitions = append(transitions, from.String()+">"+to.String())
	})

	_, err := o.Submit(context.Background(), ana)

	var upstreamErr *apperrors.UpstreamPaymentError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, []string{
		"idle>collecting_details",
		"collecting_details>requesting_payment",
		"requesting_payment>failed",
		"failed>collecting_details",
	}, transitions)
	assert.Equal(t, StateCollectingDetails, o.State())
	assert.Nil(t, o.Charge())
	assert.Len(t, shoppingCart.items, 2)
	assert.Equal(t, "failed to create payment: upstream status 500", o.Summary().Error)
}

func TestSubmit_RetryIsANewAttempt(t *testing.T) {
	gateway := &fakeGateway{err: &apperrors.TransportError{Op: "payment function request", Err: context.DeadlineExceeded}}
	o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, nil, logger.Discard())

	_, err := o.Submit(context.Background(), ana)
	require.Error(t, err)
	assert.Equal(t, int32(1), gateway.calls.Load())

	gateway.err = nil
	_, err = o.Submit(context.Background(), ana)
	require.NoError(t, err)
	assert.Equal(t, int32(2), gateway.calls.Load())
	assert.Equal(t, StatePaymentReady, o.State())
	assert.Nil(t, o.LastError())
}

func TestSubmit_SecondSubmitWhileRequestingIsNoop(t *testing.T) {
	gateway := &fakeGateway{started: make(chan struct{}, 1), release: make(chan struct{})}
	o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, nil, logger.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), ana)
		done <- err
	}()

	<-gateway.started
	assert.Equal(t, StateRequestingPayment, o.State())

	_, err := o.Submit(context.Background(), ana)
	assert.ErrorIs(t, err, apperrors.ErrSubmissionInFlight)
	assert.Equal(t, StateRequestingPayment, o.Begin())

	close(gateway.release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), gateway.calls.Load())
	assert.Equal(t, StatePaymentReady, o.State())
}

func TestSubmit_ConcurrentSubmissionsCallGatewayOnce(t *testing.T) {
	gateway := &fakeGateway{started: make(chan struct{}, 1), release: make(chan struct{})}
	o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, nil, logger.Discard())

	first := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), ana)
		first <- err
	}()
	<-gateway.started

	var inFlight atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.Submit(context.Background(), ana); err == apperrors.ErrSubmissionInFlight {
				inFlight.Add(1)
			}
		}()
	}
	wg.Wait()
	close(gateway.release)
	require.NoError(t, <-first)

	assert.Equal(t, int32(8), inFlight.Load())
	assert.Equal(t, int32(1), gateway.calls.Load())
}

func TestSubmit_CallerCancellationDoesNotAbortPayment(t *testing.T) {
	gateway := &fakeGateway{}
	o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Submit(ctx, ana)
	require.NoError(t, err)
	require.Len(t, gateway.ctxErrs, 1)
	assert.NoError(t, gateway.ctxErrs[0])
}

func TestBegin_ResetsFinishedAttempt(t *testing.T) {
	o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), &fakeGateway{}, nil, logger.Discard())
	assert.Equal(t, StateIdle, o.State())

	_, err := o.Submit(context.Background(), ana)
	require.NoError(t, err)

	assert.Equal(t, StateCollectingDetails, o.Begin())
	assert.Nil(t, o.Charge())
}

func TestDescribeAndFormat(t *testing.T) {
	items := []cart.CartItem{
		{Agent: &agent.Agent{Name: "Email Bot", Price: decimal.RequireFromString("150")}},
		{Agent: &agent.Agent{Name: "CRM Sync", Price: decimal.RequireFromString("89.9")}},
	}

	assert.Equal(t, "Email Bot, CRM Sync", Describe(items))
	assert.Equal(t, "R$ 239.90", FormatBRL(cart.Sum(items)))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "payment_ready", StatePaymentReady.String())
	assert.Equal(t, "unknown", State(42).String())

	text, err := StateFailed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(text))
}
