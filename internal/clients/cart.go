package clients

import (
	"context"
	"net/http"
	"net/url"
)

// RemoteCartClient drives the cart the API keeps per customer. Lines are keyed
// by product name.
type RemoteCartClient struct{ c *Client }

func NewRemoteCartClient(c *Client) *RemoteCartClient { return &RemoteCartClient{c: c} }

type cartLine struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity,omitempty"`
}

func (rc *RemoteCartClient) Add(ctx context.Context, customerID ID, productName string, quantity int) error {
	return rc.send(ctx, http.MethodPost, customerID, "add", cartLine{ProductName: productName, Quantity: quantity})
}

func (rc *RemoteCartClient) Update(ctx context.Context, customerID ID, productName string, quantity int) error {
	return rc.send(ctx, http.MethodPut, customerID, "update", cartLine{ProductName: productName, Quantity: quantity})
}

func (rc *RemoteCartClient) Delete(ctx context.Context, customerID ID, productName string) error {
	return rc.send(ctx, http.MethodDelete, customerID, "delete", cartLine{ProductName: productName})
}

func (rc *RemoteCartClient) send(ctx context.Context, method string, customerID ID, op string, line cartLine) error {
	var out result
	path := "/cart/" + url.PathEscape(customerID.String()) + "/" + op
	if err := rc.c.doJSON(ctx, method, path, nil, line, &out); err != nil {
		return err
	}
	return out.err()
}
