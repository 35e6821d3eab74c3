package routes

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/mbolis/catering-order/app"
	"github.com/mbolis/catering-order/httpx"
	"github.com/mbolis/catering-order/klix"
	"github.com/mbolis/catering-order/log"
)

type checkoutRequest struct {
	Email    string      `json:"email"`
	Language string      `json:"language"`
	Items    []klix.Item `json:"items"`
}

func CreateCheckout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.Checkout == nil {
			httpx.LogStatus(w, http.StatusServiceUnavailable, log.WarnLevel, "checkout.disabled")
			return
		}

		req := checkoutRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		products, err := klix.Normalize(req.Items)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "checkout.normalize", "%s", err)
			return
		}

		language := req.Language
		if language == "" {
			language = app.DefaultLocale
		}
		site := strings.TrimSuffix(app.SiteURL, "/")

		url, err := app.Checkout.CreatePurchase(r.Context(), klix.Checkout{
			Email:           req.Email,
			Language:        language,
			Products:        products,
			SuccessRedirect: site + "/" + language + "/checkout/success",
			FailureRedirect: site + "/" + language + "/checkout/failure",
			CallbackURL:     site + "/api/checkout/callback",
		})
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadGateway, log.ErrorLevel, "checkout.create", "payment provider error: %s", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"checkoutUrl": url,
		})
	}
}

// CheckoutCallback only logs what the payment provider reports: orders are
// not reconciled against payments.
func CheckoutCallback(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "checkout.callback.read")
			return
		}

		fields := map[string]any{}
		if err := json.Unmarshal(body, &fields); err != nil {
			log.WithFields(log.Fields{"body": string(body)}).Warn("checkout.callback: unparsable payload")
		} else {
			log.WithFields(log.Fields{
				"id":     fields["id"],
				"status": fields["status"],
				"client": fields["client"],
			}).Info("checkout.callback")
		}

		w.WriteHeader(http.StatusOK)
	}
}
