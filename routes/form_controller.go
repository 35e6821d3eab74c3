package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/catering-order/app"
	"github.com/mbolis/catering-order/database"
	"github.com/mbolis/catering-order/httpx"
	"github.com/mbolis/catering-order/log"
	"github.com/mbolis/catering-order/model"
)

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schema, ok := loadForm(app, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, schema)
	}
}

func StartSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schema, ok := loadForm(app, w, r)
		if !ok {
			return
		}

		session, err := app.Sessions.Create(schema, schema.Locale)
		if err != nil {
			httpx.LogInternalError(w, "session.create", err)
			return
		}
		log.Debugf("session %s started on %s/%s", session.ID, schema.Locale, schema.Slug)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, session.View())
	}
}

// loadForm fetches the form named in the URL, in the requested locale or
// the default one. A valid preview token unlocks drafts.
func loadForm(app app.App, w http.ResponseWriter, r *http.Request) (*model.Schema, bool) {
	slug := chi.URLParam(r, "slug")

	drafts := false
	if token := r.URL.Query().Get("preview"); token != "" {
		if err := app.Previewer.Verify(token, slug); err != nil {
			httpx.LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, "form.preview", "invalid preview token: %s", err)
			return nil, false
		}
		drafts = true
	}

	schema, err := database.FindForm(r.Context(), app.DB, slug, requestLocale(app, r), app.DefaultLocale, drafts)
	if errors.Is(err, database.ErrNotFound) {
		httpx.LogNotFound(w, "get_form", slug)
		return nil, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_form", err)
		return nil, false
	}
	return schema, true
}

func requestLocale(app app.App, r *http.Request) string {
	if locale := r.URL.Query().Get("locale"); locale != "" {
		return locale
	}
	return app.DefaultLocale
}
