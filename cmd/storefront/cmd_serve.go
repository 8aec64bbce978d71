package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
)

var serveAddr string

// serveCmd exposes the cart and checkout over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cart and checkout as a local HTTP API",
	Long: `Starts the local HTTP API used by the browser storefront.

With the default bolt storage, serve holds the database file for as long as
it runs and other storefront commands fail with a "storage is in use" error
until it stops. Use the sqlite, postgres or redis driver to run cart
commands alongside serve; the cart is then re-read before every change.

Routes:
  GET    /health, /health/upstreams
  GET    /api/cart             DELETE /api/cart
  POST   /api/cart/items       PUT|DELETE /api/cart/items/{productId}
  GET    /api/countries
  POST   /api/validate/postal, /api/validate/phone
  POST   /api/checkout
  GET    /api/session`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config http_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		addr := a.cfg.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		if u, ok := a.auth.Restore(ctx); ok {
			a.logger.Info("session restored", zap.String("customer_id", u.ID.String()))
		}

		// health paths differ per upstream
		healthProbes := []clients.HealthProbe{
			{Name: "grocery-api", Client: a.api, Path: "/auth/status"},
			{Name: "countries", Client: a.geo, Path: "/v3.1/alpha/us"},
		}

		router := httpapi.NewRouter(httpapi.Deps{
			Logger:           a.logger,
			CORSAllowOrigins: a.cfg.CORSAllowOrigins,
			Cart:             a.cart,
			Checkout:         a.checkout,
			Countries:        a.countries,
			Session:          a.auth,
			HealthProbes:     healthProbes,
		})

		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}
		a.logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("shutdown error", zap.Error(err))
		}
		a.logger.Info("shutdown complete")
		return nil
	})
}
