package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type CustomerClient struct{ c *Client }

func NewCustomerClient(c *Client) *CustomerClient { return &CustomerClient{c: c} }

type Customer struct {
	CustomerID    ID     `json:"customer_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
}

// CustomerUpdate carries only the fields to change.
type CustomerUpdate struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Password      string `json:"password,omitempty"`
	Address       string `json:"address,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
}

func (cc *CustomerClient) Details(ctx context.Context, customerID ID) (Customer, error) {
	var raw json.RawMessage
	path := "/customer/" + url.PathEscape(customerID.String()) + "/details"
	if err := cc.c.doJSON(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return Customer{}, err
	}
	// an unknown customer is a bare JSON string
	if msg := bytes.TrimSpace(raw); len(msg) > 0 && msg[0] == '"' {
		var s string
		_ = json.Unmarshal(msg, &s)
		return Customer{}, &APIError{Status: http.StatusNotFound, Message: s}
	}
	var out Customer
	if err := json.Unmarshal(raw, &out); err != nil {
		return Customer{}, err
	}
	return out, nil
}

func (cc *CustomerClient) Update(ctx context.Context, customerID ID, upd CustomerUpdate) (string, error) {
	var out result
	path := "/customer/" + url.PathEscape(customerID.String()) + "/update"
	if err := cc.c.doJSON(ctx, http.MethodPut, path, nil, upd, &out); err != nil {
		return "", err
	}
	return out.text(), out.err()
}

// SoftDelete deactivates the account; Restore on AuthClient undoes it.
func (cc *CustomerClient) SoftDelete(ctx context.Context, customerID ID) (string, error) {
	var out result
	path := "/customer/" + url.PathEscape(customerID.String()) + "/delete"
	if err := cc.c.doJSON(ctx, http.MethodDelete, path, nil, nil, &out); err != nil {
		return "", err
	}
	return out.text(), out.err()
}
