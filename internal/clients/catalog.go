package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

// Product is a catalog row. Quantity is stock on hand, not a cart quantity.
type Product struct {
	ProductID   ID              `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CompanyName string          `json:"company_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImagePath   string          `json:"image_path"`
}

// CartProduct is the record handed to the cart when the product is added.
func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:          cart.ProductID(p.ProductID),
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.ImagePath,
		Company:     p.CompanyName,
		Description: p.Description,
	}
}

func (cc *CatalogClient) ListProducts(ctx context.Context, customerID ID) ([]Product, error) {
	var out struct {
		Message string    `json:"message"`
		Data    []Product `json:"data"`
	}
	path := "/products/" + url.PathEscape(customerID.String()) + "/"
	if err := cc.c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []Product{}
	}
	return out.Data, nil
}

func (cc *CatalogClient) GetProduct(ctx context.Context, customerID ID, name string) (Product, error) {
	// a miss comes back as 200 with {"message", "data": []}
	var out struct {
		Product
		Message string `json:"message"`
	}
	path := "/products/" + url.PathEscape(customerID.String()) + "/" + url.PathEscape(name) + "/"
	if err := cc.c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return Product{}, err
	}
	if out.Name == "" {
		msg := out.Message
		if msg == "" {
			msg = "product " + name + " not found"
		}
		return Product{}, &APIError{Status: http.StatusNotFound, Message: msg}
	}
	return out.Product, nil
}
