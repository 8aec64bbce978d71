package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/countries"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type CountrySource interface {
	List(ctx context.Context) []countries.Country
	Lookup(ctx context.Context, cca2 string) countries.Country
}

type Session interface {
	Current() (auth.User, bool)
}

type Deps struct {
	Logger           *zap.Logger
	CORSAllowOrigins []string

	Cart      *cart.Store
	Checkout  *checkout.Service
	Countries CountrySource
	Session   Session

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	// outer -> inner
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))
	r.Use(middleware.Recover(logger))

	health := &HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Storefront)
	r.Get("/health/upstreams", health.Upstreams)

	c := &CartHandler{store: d.Cart, checkout: d.Checkout}
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", c.Get)
		r.Delete("/", c.Clear)
		r.Post("/items", c.AddItem)
		r.Put("/items/{productId}", c.SetQuantity)
		r.Delete("/items/{productId}", c.RemoveItem)
	})

	v := &ValidationHandler{countries: d.Countries}
	r.Get("/api/countries", v.Countries)
	r.Post("/api/validate/postal", v.Postal)
	r.Post("/api/validate/phone", v.Phone)

	co := &CheckoutHandler{checkout: d.Checkout, session: d.Session, logger: logger}
	r.Post("/api/checkout", co.PlaceOrder)
	r.Get("/api/session", co.Session)

	return r
}
