package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/catering-order/app"
	"github.com/mbolis/catering-order/form"
	"github.com/mbolis/catering-order/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/forms/{slug}", GetForm(app))
	api.Post("/forms/{slug}/sessions", StartSession(app))

	api.Route("/sessions/{session}", func(r chi.Router) {
		r.Get("/", GetSession(app))
		r.Put("/answers", SetAnswer(app))
		r.Delete("/answers", ClearAnswer(app))
		r.Post("/files/{element}", UploadFile(app))
		r.Post("/dishes/{element}", AdjustDish(app))

		r.Post("/next", Navigate(app, (*form.Session).Next))
		r.Post("/prev", Navigate(app, (*form.Session).Prev))
		r.Post(`/goto/{step:^\d+$}`, GoToStep(app))

		r.Post("/submit", SubmitSession(app))
	})

	api.Post("/email", SendEmail(app))

	api.Post("/checkout", CreateCheckout(app))
	api.Post("/checkout/callback", CheckoutCallback(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Editor(app.TokenSecret))

		// CRUD form documents
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get(`/forms/{id:^\d+$}`, GetFormById(app))
		r.Put(`/forms/{id:^\d+$}`, UpdateForm(app))
		r.Delete(`/forms/{id:^\d+$}`, DeleteForm(app))

		r.Get(`/forms/{id:^\d+$}/preview`, PreviewForm(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
