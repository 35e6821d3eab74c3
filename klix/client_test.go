package klix

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func TestNormalize(t *testing.T) {
	products, err := Normalize([]Item{
		{Name: " Soup ", Price: 450, Quantity: 3},
		{Name: "Cake", Price: 300},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := []Product{
		{Name: "Soup", Price: 450, Quantity: 3},
		{Name: "Cake", Price: 300, Quantity: 1},
	}
	for i := range want {
		if products[i] != want[i] {
			t.Errorf("products[%d] = %+v, want %+v", i, products[i], want[i])
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{"empty", nil},
		{"no name", []Item{{Price: 100, Quantity: 1}}},
		{"negative price", []Item{{Name: "Soup", Price: -1, Quantity: 1}}},
		{"negative quantity", []Item{{Name: "Soup", Price: 1, Quantity: -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.items); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCreatePurchase(t *testing.T) {
	var got purchaseRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != purchasesPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"p1","checkout_url":"https://pay.example/p1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "brand", "secret", "EUR")
	url, err := c.CreatePurchase(context.Background(), Checkout{
		Email:           "jane@example.com",
		Language:        "lv",
		Products:        []Product{{Name: "Soup", Price: 450, Quantity: 2}},
		SuccessRedirect: "https://site/ok",
		FailureRedirect: "https://site/ko",
		CallbackURL:     "https://site/api/checkout/callback",
	})
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	if url != "https://pay.example/p1" {
		t.Errorf("url = %q", url)
	}

	if got.BrandID != "brand" || got.Client.Email != "jane@example.com" {
		t.Errorf("request = %+v", got)
	}
	if got.Purchase.Currency != "EUR" || len(got.Purchase.Products) != 1 {
		t.Errorf("purchase = %+v", got.Purchase)
	}
	if got.SuccessCallback != "https://site/api/checkout/callback" {
		t.Errorf("callback = %q", got.SuccessCallback)
	}
}

func TestCreatePurchaseGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad brand", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "brand", "secret", "EUR")
	_, err := c.CreatePurchase(context.Background(), Checkout{Products: []Product{{Name: "x", Quantity: 1}}})
	if err == nil {
		t.Fatal("expected an error")
	}
}
