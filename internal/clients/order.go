package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"product_name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"total"`
}

type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address"`
	PostalCode string `json:"pin,omitempty"`
	Country    string `json:"country,omitempty"`
}

// OrderRequest is the local cart snapshot sent with an order. IdempotencyKey
// travels as the Idempotency-Key header. Callers reuse it when resubmitting
// the same cart; deduplication is up to the order API.
type OrderRequest struct {
	Items          []OrderLine     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	Shipping       ShippingAddress `json:"shipping"`
	PaymentMethod  string          `json:"payment_method"`
	IdempotencyKey string          `json:"-"`
}

type InvoiceLine struct {
	OrderID     ID              `json:"order_id"`
	ProductName string          `json:"product_name"`
	Company     string          `json:"company"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

type Invoice struct {
	CustomerID ID              `json:"customer_id"`
	Items      []InvoiceLine   `json:"items"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	TotalItems int             `json:"total_items"`
}

type HistoryLine struct {
	OrderID     ID              `json:"order_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Transaction struct {
	TransactionID ID              `json:"transaction_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	NoOfItems     int             `json:"no_of_items"`
	Orders        []HistoryLine   `json:"orders"`
}

func (oc *OrderClient) PlaceOrder(ctx context.Context, customerID ID, req OrderRequest) (Invoice, error) {
	var hdr http.Header
	if req.IdempotencyKey != "" {
		hdr = http.Header{HeaderIdempotencyKey: {req.IdempotencyKey}}
	}
	var out struct {
		result
		Invoice Invoice `json:"invoice"`
	}
	path := "/orders/" + url.PathEscape(customerID.String()) + "/"
	if err := oc.c.doJSON(ctx, http.MethodPost, path, hdr, req, &out); err != nil {
		return Invoice{}, err
	}
	if err := out.err(); err != nil {
		return Invoice{}, err
	}
	return out.Invoice, nil
}

// History lists past orders, newest last. A customer with no orders gets an
// empty slice.
func (oc *OrderClient) History(ctx context.Context, customerID ID) ([]Transaction, error) {
	var out struct {
		result
		Orders json.RawMessage `json:"orders"`
	}
	path := "/orders/" + url.PathEscape(customerID.String()) + "/history"
	if err := oc.c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	if err := out.err(); err != nil {
		return nil, err
	}
	txns := []Transaction{}
	if len(out.Orders) > 0 && out.Orders[0] == '[' {
		if err := json.Unmarshal(out.Orders, &txns); err != nil {
			return nil, err
		}
	}
	return txns, nil
}
