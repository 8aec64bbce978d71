package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier receives advisory, human-readable messages.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Observer is told about every transition after it has been persisted.
type Observer interface {
	CartChanged(ctx context.Context, cmd Command, before, after State)
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// WithSharedSlot re-reads the slot before every read and transition, for
// slots that another storefront process writes too.
func WithSharedSlot() Option {
	return func(s *Store) { s.shared = true }
}

// Store owns the cart state. All transitions go through Dispatch, which
// serializes them and writes the full item sequence back to the slot.
// Notifier and observers see transitions in the order they were applied and
// must not call back into the store.
type Store struct {
	mu         sync.Mutex
	announceMu sync.Mutex
	state      State
	slot       Slot
	shared     bool
	logger     *zap.Logger
	notifier   Notifier
	observers  []Observer
}

type transition struct {
	cmd           Command
	before, after State
}

// Open creates a store and hydrates it from slot. A missing or unreadable
// saved cart yields an empty one; the failure is only logged.
func Open(ctx context.Context, slot Slot, opts ...Option) *Store {
	s := &Store{
		state:  State{Items: []Item{}},
		slot:   slot,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if slot == nil {
		return s
	}
	items, ok, err := slot.Load(ctx)
	switch {
	case err != nil:
		s.logger.Warn("load saved cart", zap.Error(err))
	case ok:
		s.state = State{Items: sanitize(items)}
		s.logger.Debug("cart restored", zap.Int("lines", len(s.state.Items)))
	}
	return s
}

// Dispatch applies cmd and persists the result.
func (s *Store) Dispatch(ctx context.Context, cmd Command) State {
	return s.run(ctx, func(State) []Command { return []Command{cmd} })
}

// Deduct takes ordered out of the cart: each ordered line loses the ordered
// quantity and is removed once nothing is left. Lines added after the order
// was taken stay. When the order covers the whole cart it is cleared.
func (s *Store) Deduct(ctx context.Context, ordered []Item) State {
	return s.run(ctx, func(cur State) []Command {
		var cmds []Command
		emptied := 0
		for _, o := range ordered {
			it, ok := cur.Lookup(o.ID)
			if !ok {
				continue
			}
			if left := it.Quantity - o.Quantity; left > 0 {
				cmds = append(cmds, SetQuantity{ProductID: o.ID, Quantity: left})
			} else {
				cmds = append(cmds, Remove{ProductID: o.ID})
				emptied++
			}
		}
		if emptied > 0 && emptied == len(cur.Items) {
			return []Command{Clear{}}
		}
		return cmds
	})
}

// run applies the commands plan derives from the current state as one
// transition group: persisted once, then announced in order.
func (s *Store) run(ctx context.Context, plan func(State) []Command) State {
	s.mu.Lock()
	s.syncLocked(ctx)
	cur := s.state
	var steps []transition
	for _, cmd := range plan(cur.clone()) {
		next := Apply(cur, cmd)
		steps = append(steps, transition{cmd: cmd, before: cur, after: next})
		cur = next
	}
	s.state = cur
	if len(steps) > 0 {
		s.persist(ctx, cur)
	}
	// taken before mu is released so announcements keep transition order
	s.announceMu.Lock()
	s.mu.Unlock()
	defer s.announceMu.Unlock()

	for _, st := range steps {
		s.announce(st.cmd, st.before)
		for _, o := range s.observers {
			o.CartChanged(ctx, st.cmd, st.before.clone(), st.after.clone())
		}
	}
	return cur.clone()
}

// Add puts one more unit of p into the cart.
func (s *Store) Add(ctx context.Context, p Product) error {
	if err := p.validate(); err != nil {
		return err
	}
	s.Dispatch(ctx, Add{Product: p})
	return nil
}

func (s *Store) SetQuantity(ctx context.Context, id ProductID, quantity int) {
	s.Dispatch(ctx, SetQuantity{ProductID: id, Quantity: quantity})
}

func (s *Store) Remove(ctx context.Context, id ProductID) {
	s.Dispatch(ctx, Remove{ProductID: id})
}

func (s *Store) Clear(ctx context.Context) {
	s.Dispatch(ctx, Clear{})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(context.Background())
	return s.state.clone()
}

func (s *Store) Items() []Item { return s.Snapshot().Items }

func (s *Store) Count() int { return s.Snapshot().Count() }

func (s *Store) Subtotal() decimal.Decimal { return s.Snapshot().Subtotal() }

func (s *Store) Contains(id ProductID) bool { return s.Snapshot().Contains(id) }

func (s *Store) Lookup(id ProductID) (Item, bool) { return s.Snapshot().Lookup(id) }

// syncLocked reloads a shared slot. A failed read keeps the state in memory.
func (s *Store) syncLocked(ctx context.Context) {
	if !s.shared || s.slot == nil {
		return
	}
	items, ok, err := s.slot.Load(ctx)
	switch {
	case err != nil:
		s.logger.Warn("reload shared cart", zap.Error(err))
	case ok:
		s.state = State{Items: sanitize(items)}
	default:
		s.state = State{Items: []Item{}}
	}
}

func (s *Store) persist(ctx context.Context, st State) {
	if s.slot == nil {
		return
	}
	if err := s.slot.Save(ctx, st.Items); err != nil {
		s.logger.Warn("save cart", zap.Error(err), zap.Int("lines", len(st.Items)))
	}
}

func (s *Store) announce(cmd Command, before State) {
	if s.notifier == nil {
		return
	}
	switch c := cmd.(type) {
	case Remove:
		if it, ok := before.Lookup(c.ProductID); ok {
			s.notifier.Notify(fmt.Sprintf("%s removed from cart", it.Name))
		}
	case Clear:
		if n := len(before.Items); n > 0 {
			s.notifier.Notify(fmt.Sprintf("Cart cleared (%d items removed)", n))
		}
	}
}
