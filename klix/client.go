// Package klix creates KLIX checkout purchases.
package klix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const purchasesPath = "/api/v1/purchases/"

// Item is one cart line as sent by the site. Price is in minor units.
type Item struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type Product struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type Checkout struct {
	Email           string
	Language        string
	Products        []Product
	SuccessRedirect string
	FailureRedirect string
	CallbackURL     string
}

// Normalize validates cart lines and turns them into KLIX products.
// Quantities default to 1.
func Normalize(items []Item) ([]Product, error) {
	var result *multierror.Error
	if len(items) == 0 {
		result = multierror.Append(result, errors.New("empty cart"))
	}

	products := make([]Product, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("item %d: missing name", i))
		}
		if item.Price < 0 {
			result = multierror.Append(result, fmt.Errorf("item %d: negative price", i))
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			result = multierror.Append(result, fmt.Errorf("item %d: negative quantity", i))
		}
		products = append(products, Product{Name: name, Price: item.Price, Quantity: qty})
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return products, nil
}

type Client struct {
	baseURL    string
	brandID    string
	secretKey  string
	currency   string
	httpClient *http.Client
}

func NewClient(baseURL, brandID, secretKey, currency string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		brandID:   brandID,
		secretKey: secretKey,
		currency:  currency,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type purchaseRequest struct {
	BrandID         string   `json:"brand_id"`
	Client          client   `json:"client"`
	Purchase        purchase `json:"purchase"`
	SuccessRedirect string   `json:"success_redirect,omitempty"`
	FailureRedirect string   `json:"failure_redirect,omitempty"`
	SuccessCallback string   `json:"success_callback,omitempty"`
}

type client struct {
	Email string `json:"email"`
}

type purchase struct {
	Currency string    `json:"currency"`
	Language string    `json:"language,omitempty"`
	Products []Product `json:"products"`
}

// CreatePurchase registers the purchase and returns the URL the visitor has
// to be redirected to.
func (c *Client) CreatePurchase(ctx context.Context, checkout Checkout) (string, error) {
	body, err := json.Marshal(purchaseRequest{
		BrandID: c.brandID,
		Client:  client{Email: checkout.Email},
		Purchase: purchase{
			Currency: c.currency,
			Language: checkout.Language,
			Products: checkout.Products,
		},
		SuccessRedirect: checkout.SuccessRedirect,
		FailureRedirect: checkout.FailureRedirect,
		SuccessCallback: checkout.CallbackURL,
	})
	if err != nil {
		return "", errors.Wrap(err, "klix.encode")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+purchasesPath, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "klix.new_request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "klix.request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errors.Errorf("klix.status: %d %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result struct {
		ID          string `json:"id"`
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "klix.decode")
	}
	if result.CheckoutURL == "" {
		return "", errors.New("klix.decode: missing checkout_url")
	}
	return result.CheckoutURL, nil
}
