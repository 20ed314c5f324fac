package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)
	r.Use(otelchi.Middleware("seat-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.GetHealth)

	r.With(app.requireAuthentication).Route("/showtimes/{showtimeID}/holds", func(r chi.Router) {
		r.Post("/", app.HoldSeatsHandler)
		r.Get("/", app.GetHeldSeatsHandler)
	})

	r.With(app.requireAuthentication).Route("/holds", func(r chi.Router) {
		r.Post("/confirm", app.ConfirmSeatsHandler)
		r.Post("/cancel", app.CancelHoldHandler)
	})

	r.With(app.requireAuthentication).
		Delete("/connections/{connectionID}/holds", app.CancelHoldByConnectionHandler)

	r.With(app.requireAdminToken).Post("/admin/seats/status", app.UpdateSeatStatusHandler)

	return r
}
