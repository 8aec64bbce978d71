package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductID identifies a product. The grocery API hands out integer ids while
// other catalogs use strings, so both JSON forms are accepted.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

// Product is the record a listing hands to Add.
type Product struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Company     string          `json:"company,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (p Product) validate() error {
	switch {
	case strings.TrimSpace(string(p.ID)) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidProduct)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: negative price %s", ErrInvalidProduct, p.Price)
	}
	return nil
}

// Item is one line of the cart. Price is the unit price captured at add time.
type Item struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is price × quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// State is the full cart. Items are unique by id and kept in insertion order.
type State struct {
	Items []Item `json:"items"`
}

func (s State) index(id ProductID) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Count is the sum of all quantities.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of price × quantity over all lines.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Lookup returns the line for id.
func (s State) Lookup(id ProductID) (Item, bool) {
	if i := s.index(id); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

func (s State) Contains(id ProductID) bool { return s.index(id) >= 0 }

func (s State) clone() State {
	if s.Items == nil {
		return State{}
	}
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return State{Items: items}
}

// sanitize restores the state invariants on data that came from storage:
// non-positive quantities are dropped and duplicate ids are folded into the
// first occurrence.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	pos := make(map[ProductID]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || it.ID == "" {
			continue
		}
		if i, ok := pos[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
