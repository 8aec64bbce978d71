package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/countries"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/mirror"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/slot"
)

// app is everything one command invocation needs, wired from the config.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer

	backend *slot.Backend

	api       *clients.Client
	geo       *clients.Client
	catalog   *clients.CatalogClient
	orders    *clients.OrderClient
	customers *clients.CustomerClient
	remote    *clients.RemoteCartClient

	countries *countries.Service
	auth      *auth.Manager
	cart      *cart.Store
	checkout  *checkout.Service
}

func newApp(ctx context.Context, c config.Config, l *zap.Logger, out io.Writer) (*app, error) {
	backend, err := slot.Open(ctx, c.Slot, l)
	if err != nil {
		return nil, fmt.Errorf("open cart storage: %w", err)
	}

	httpClient := clients.NewHTTPClient(c.UpstreamTimeout)
	a := &app{
		cfg:     c,
		logger:  l,
		out:     out,
		backend: backend,
		api:     clients.NewClient("grocery-api", c.APIBaseURL, httpClient),
		geo:     clients.NewClient("countries", c.CountriesURL, httpClient),
	}
	a.catalog = clients.NewCatalogClient(a.api)
	a.orders = clients.NewOrderClient(a.api)
	a.customers = clients.NewCustomerClient(a.api)
	a.remote = clients.NewRemoteCartClient(a.api)

	notify := cart.NotifierFunc(func(msg string) { fmt.Fprintln(os.Stderr, msg) })

	a.countries = countries.NewService(a.geo,
		countries.WithLogger(l),
		countries.WithTTL(c.CountriesTTL),
	)
	a.auth = auth.NewManager(clients.NewAuthClient(a.api), backend.KV,
		auth.WithLogger(l),
		auth.WithNotifier(notify),
	)

	opts := []cart.Option{cart.WithLogger(l), cart.WithNotifier(notify)}
	switch c.Slot.Driver {
	case "sqlite", "postgres", "redis":
		// a running serve and one-off commands write the same cart
		opts = append(opts, cart.WithSharedSlot())
	}
	if c.MirrorRemoteCart {
		opts = append(opts, cart.WithObserver(mirror.New(a.remote, a.auth, l)))
	}
	a.cart = cart.Open(ctx, cart.NewKVSlot(backend.KV, c.CartKey), opts...)

	a.checkout = checkout.NewService(a.cart, a.orders,
		checkout.WithLogger(l),
		checkout.WithNotifier(notify),
		checkout.WithTaxRate(decimal.NewFromFloat(c.TaxRate)),
		checkout.WithDelay(c.PaymentDelay),
		checkout.WithCountries(a.countries),
	)

	if c.MirrorRemoteCart {
		a.auth.Restore(ctx)
	}
	return a, nil
}

// signedIn restores the saved session and requires it to be live.
func (a *app) signedIn(ctx context.Context) (auth.User, error) {
	if u, ok := a.auth.Current(); ok {
		return u, nil
	}
	if u, ok := a.auth.Restore(ctx); ok {
		return u, nil
	}
	return auth.User{}, fmt.Errorf("%w: run \"storefront login\" first", auth.ErrNotSignedIn)
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("close cart storage", zap.Error(err))
	}
}

// commandContext is cancelled on interrupt and carries a fresh correlation id
// so every API call of one invocation can be traced together.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return middleware.WithCorrelationID(ctx, uuid.NewString()), stop
}

// withApp runs fn with a wired app and tears it down afterwards.
func withApp(out io.Writer, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := commandContext()
	defer stop()

	a, err := newApp(ctx, cfg, logger, out)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
