package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"github.com/openformhq/openform/app"
	"github.com/openformhq/openform/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Verified(app.Config)).
		Mount("/dashboard", servePrivateFiles("/dashboard"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/forms/{slug}", PublicGetForm(app))
	api.Post("/forms/{slug}/responses", PublicSubmitResponse(app))

	api.Route("/auth", func(r chi.Router) {
		r.Post("/signup", Signup(app))
		r.Post("/verify", VerifyEmail(app))
		r.Post("/resend", ResendCode(app))
		r.Post("/login", Login(app))
		r.Post("/refresh", Refresh(app))
		r.With(middlewares.Verified(app.Config)).Post("/logout", Logout(app))
	})

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Verified(app.Config))

		// CRUD forms
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get("/forms/{formId}", GetForm(app))
		r.Put("/forms/{formId}", UpdateForm(app))
		r.Delete("/forms/{formId}", DeleteForm(app))
		r.Post("/forms/{formId}/publish", PublishForm(app))

		r.Get("/forms/{formId}/responses", ListResponses(app))
		r.Delete("/forms/{formId}/responses/{responseId}", DeleteResponse(app))
		r.Get("/forms/{formId}/responses/export", ExportResponses(app))
		r.Get("/forms/{formId}/analytics", FormAnalytics(app))
	})

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
