package cart

// Command is one of Add, SetQuantity, Remove or Clear.
type Command interface {
	command()
}

// Add increments the line for Product by one, appending it when absent.
type Add struct {
	Product Product
}

// SetQuantity sets an absolute quantity. Zero or less removes the line.
type SetQuantity struct {
	ProductID ProductID
	Quantity  int
}

// Remove deletes the line for ProductID if present.
type Remove struct {
	ProductID ProductID
}

// Clear empties the cart.
type Clear struct{}

func (Add) command()         {}
func (SetQuantity) command() {}
func (Remove) command()      {}
func (Clear) command()       {}

// Apply returns the state that results from running cmd against s. It never
// mutates s and never fails.
func Apply(s State, cmd Command) State {
	switch c := cmd.(type) {
	case Add:
		next := s.clone()
		if i := next.index(c.Product.ID); i >= 0 {
			next.Items[i].Quantity++
			return next
		}
		next.Items = append(next.Items, Item{Product: c.Product, Quantity: 1})
		return next

	case SetQuantity:
		if c.Quantity <= 0 {
			return Apply(s, Remove{ProductID: c.ProductID})
		}
		next := s.clone()
		if i := next.index(c.ProductID); i >= 0 {
			next.Items[i].Quantity = c.Quantity
		}
		return next

	case Remove:
		i := s.index(c.ProductID)
		if i < 0 {
			return s.clone()
		}
		items := make([]Item, 0, len(s.Items)-1)
		items = append(items, s.Items[:i]...)
		items = append(items, s.Items[i+1:]...)
		return State{Items: items}

	case Clear:
		return State{Items: []Item{}}

	default:
		return s.clone()
	}
}
