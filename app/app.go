package app

import (
	"context"
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/mbolis/catering-order/config"
	"github.com/mbolis/catering-order/form"
	"github.com/mbolis/catering-order/httpx"
	"github.com/mbolis/catering-order/klix"
	"github.com/mbolis/catering-order/storage"
)

// Checkout creates payment purchases.
type Checkout interface {
	CreatePurchase(ctx context.Context, checkout klix.Checkout) (string, error)
}

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Sessions  *form.Store
	Relay     form.Relay
	Checkout  Checkout
	Uploads   storage.Uploader
	Previewer *httpx.Previewer
}
