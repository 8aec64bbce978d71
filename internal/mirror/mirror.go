// Package mirror replays local cart transitions onto the cart the grocery
// API keeps for the signed-in customer.
package mirror

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type RemoteCart interface {
	Add(ctx context.Context, customerID clients.ID, productName string, quantity int) error
	Update(ctx context.Context, customerID clients.ID, productName string, quantity int) error
	Delete(ctx context.Context, customerID clients.ID, productName string) error
}

type Session interface {
	Current() (auth.User, bool)
}

// Mirror is a cart.Observer. It is best-effort: failures are logged and the
// local cart is never affected.
type Mirror struct {
	remote  RemoteCart
	session Session
	logger  *zap.Logger
	timeout time.Duration
}

func New(remote RemoteCart, session Session, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{remote: remote, session: session, logger: logger, timeout: 5 * time.Second}
}

func (m *Mirror) CartChanged(ctx context.Context, cmd cart.Command, before, after cart.State) {
	u, ok := m.session.Current()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	switch c := cmd.(type) {
	case cart.Add:
		m.report(c, m.remote.Add(ctx, u.ID, c.Product.Name, 1))
	case cart.SetQuantity:
		if it, ok := after.Lookup(c.ProductID); ok {
			m.report(c, m.remote.Update(ctx, u.ID, it.Name, it.Quantity))
		} else if it, ok := before.Lookup(c.ProductID); ok {
			m.report(c, m.remote.Delete(ctx, u.ID, it.Name))
		}
	case cart.Remove:
		if it, ok := before.Lookup(c.ProductID); ok {
			m.report(c, m.remote.Delete(ctx, u.ID, it.Name))
		}
	case cart.Clear:
		for _, it := range before.Items {
			m.report(c, m.remote.Delete(ctx, u.ID, it.Name))
		}
	}
}

func (m *Mirror) report(cmd cart.Command, err error) {
	if err != nil {
		m.logger.Warn("mirror cart change", zap.Error(err), zap.String("command", commandName(cmd)))
	}
}

func commandName(cmd cart.Command) string {
	switch cmd.(type) {
	case cart.Add:
		return "add"
	case cart.SetQuantity:
		return "set_quantity"
	case cart.Remove:
		return "remove"
	case cart.Clear:
		return "clear"
	}
	return "unknown"
}
