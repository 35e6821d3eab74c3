package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/mbolis/catering-order/app"
	"github.com/mbolis/catering-order/form"
	"github.com/mbolis/catering-order/httpx"
	"github.com/mbolis/catering-order/log"
)

type emailRequest struct {
	Recipient string       `json:"recipient"`
	Subject   string       `json:"subject"`
	Fields    form.Payload `json:"fields"`
}

// SendEmail relays a flat question/answer object by e-mail. Only the
// configured recipient and the -mail-allow addresses can be targeted. A 2xx
// answer means the message was accepted, not that it was delivered.
func SendEmail(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := emailRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		recipient := strings.TrimSpace(req.Recipient)
		if recipient == "" {
			recipient = app.MailRecipient
		}
		if recipient == "" {
			httpx.LogStatusMsg(w, http.StatusServiceUnavailable, log.WarnLevel, "email.recipient", "no recipient configured")
			return
		}
		if !app.AllowsRecipient(recipient) {
			httpx.LogStatusMsg(w, http.StatusForbidden, log.InfoLevel, "email.recipient", "recipient %q not allowed", recipient)
			return
		}
		if len(req.Fields) == 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "email.fields", "no fields to send")
			return
		}
		subject := req.Subject
		if subject == "" {
			subject = "Contact form"
		}

		err = app.Relay.Send(r.Context(), recipient, subject, req.Fields)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadGateway, log.ErrorLevel, "email.send", "failed to send: %s", err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}
