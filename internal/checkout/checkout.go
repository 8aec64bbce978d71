// Package checkout turns the cart into an order: it prices the cart, checks
// the shipping and payment forms, sends the snapshot to the order API and
// takes the ordered lines out of the cart once the order is accepted.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/countries"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// ValidationError lists the shipping and payment fields that were rejected.
type ValidationError = validation.Error

// DefaultTaxRate is the flat rate applied to the subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.08")

type Summary struct {
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize prices s. Tax is rounded to cents before it is added.
func Summarize(s cart.State, taxRate decimal.Decimal) Summary {
	sub := s.Subtotal()
	tax := sub.Mul(taxRate).Round(2)
	return Summary{
		Count:    s.Count(),
		Subtotal: sub,
		Tax:      tax,
		Total:    sub.Add(tax),
	}
}

type Request struct {
	Shipping validation.Shipping `json:"shipping"`
	Payment  Payment             `json:"payment"`
}

type Receipt struct {
	Invoice        clients.Invoice `json:"invoice"`
	Summary        Summary         `json:"summary"`
	Method         Method          `json:"method"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, customerID clients.ID, req clients.OrderRequest) (clients.Invoice, error)
}

type CountryLookup interface {
	Lookup(ctx context.Context, cca2 string) countries.Country
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func WithNotifier(n cart.Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithTaxRate(rate decimal.Decimal) Option { return func(s *Service) { s.taxRate = rate } }

// WithDelay sets the simulated payment processing time.
func WithDelay(d time.Duration) Option { return func(s *Service) { s.delay = d } }

func WithCountries(c CountryLookup) Option { return func(s *Service) { s.countries = c } }

type Service struct {
	cart      *cart.Store
	orders    OrderPlacer
	countries CountryLookup
	taxRate   decimal.Decimal
	delay     time.Duration
	logger    *zap.Logger
	notifier  cart.Notifier
	newKey    func() string

	mu      sync.Mutex
	busy    bool
	pending pendingOrder
}

// pendingOrder remembers the idempotency key of an order the API did not
// confirm, so resubmitting the same cart reuses it.
type pendingOrder struct {
	fingerprint string
	key         string
}

func NewService(store *cart.Store, orders OrderPlacer, opts ...Option) *Service {
	s := &Service{
		cart:    store,
		orders:  orders,
		taxRate: DefaultTaxRate,
		logger:  zap.NewNop(),
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote prices the current cart.
func (s *Service) Quote() Summary {
	return s.Summarize(s.cart.Snapshot())
}

// Summarize prices st at the configured tax rate.
func (s *Service) Summarize(st cart.State) Summary {
	return Summarize(st, s.taxRate)
}

// Validate checks the forms without placing anything.
func (s *Service) Validate(ctx context.Context, req Request) validation.FieldErrors {
	var loc validation.Locale
	if s.countries != nil && req.Shipping.CountryCode != "" {
		loc = s.countries.Lookup(ctx, req.Shipping.CountryCode).Locale()
	}
	errs := req.Shipping.Validate(loc)
	for k, v := range req.Payment.Validate() {
		errs[k] = v
	}
	return errs
}

// PlaceOrder submits the cart. The ordered lines leave the cart only after
// the order API accepts the order; on any failure the cart is left as it was.
// Only one checkout runs at a time.
func (s *Service) PlaceOrder(ctx context.Context, customerID clients.ID, req Request) (Receipt, error) {
	if !s.begin() {
		return Receipt{}, ErrCheckoutInProgress
	}
	defer s.end()

	snap := s.cart.Snapshot()
	if len(snap.Items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if customerID == "" {
		return Receipt{}, auth.ErrNotSignedIn
	}
	if err := s.Validate(ctx, req).Err(); err != nil {
		return Receipt{}, err
	}

	if err := s.wait(ctx); err != nil {
		return Receipt{}, err
	}

	sum := Summarize(snap, s.taxRate)
	fp := fingerprint(customerID, snap)
	order := clients.OrderRequest{
		Items:          make([]clients.OrderLine, 0, len(snap.Items)),
		Subtotal:       sum.Subtotal,
		Tax:            sum.Tax,
		Total:          sum.Total,
		PaymentMethod:  string(req.Payment.Method),
		IdempotencyKey: s.keyFor(fp),
		Shipping: clients.ShippingAddress{
			FullName:   req.Shipping.FullName,
			Email:      req.Shipping.Email,
			Phone:      req.Shipping.Phone,
			Address:    req.Shipping.Address,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.CountryCode,
		},
	}
	for _, it := range snap.Items {
		order.Items = append(order.Items, clients.OrderLine{
			ProductID: it.ID.String(),
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		})
	}

	inv, err := s.orders.PlaceOrder(ctx, customerID, order)
	if err != nil {
		s.logger.Warn("place order failed",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
			zap.String("idempotency_key", order.IdempotencyKey),
		)
		return Receipt{}, fmt.Errorf("place order: %w", err)
	}

	s.settle(fp)
	s.cart.Deduct(ctx, snap.Items)
	s.logger.Info("order placed",
		zap.String("customer_id", customerID.String()),
		zap.String("total", sum.Total.StringFixed(2)),
		zap.String("method", string(req.Payment.Method)),
	)
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf("Order placed successfully! Your order of $%s has been confirmed.", sum.Total.StringFixed(2)))
	}

	return Receipt{Invoice: inv, Summary: sum, Method: req.Payment.Method, IdempotencyKey: order.IdempotencyKey}, nil
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Service) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// keyFor returns the pending key for fp, or a fresh one when the cart or
// customer changed since the last unconfirmed attempt.
func (s *Service) keyFor(fp string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending.key == "" || s.pending.fingerprint != fp {
		s.pending = pendingOrder{fingerprint: fp, key: s.newKey()}
	}
	return s.pending.key
}

func (s *Service) settle(fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending.fingerprint == fp {
		s.pending = pendingOrder{}
	}
}

func fingerprint(customerID clients.ID, st cart.State) string {
	var b strings.Builder
	b.WriteString(customerID.String())
	for _, it := range st.Items {
		b.WriteByte('|')
		b.WriteString(it.ID.String())
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(it.Quantity))
		b.WriteByte(':')
		b.WriteString(it.Price.String())
	}
	return b.String()
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
