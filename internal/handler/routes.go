package handler

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Get("/me", h.Me)
				r.Post("/change-password", h.ChangePassword)
			})
		})

		r.Route("/classes", func(r chi.Router) {
			r.Get("/", h.ListClasses)
			r.Get("/range", h.ListClassesRange)
			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth, h.requireAdmin)
				r.Post("/", h.CreateClass)
				r.Patch("/{id}", h.UpdateClass)
				r.Delete("/{id}", h.DeleteClass)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/user", h.ListMyBookings)
			r.Get("/class/{classId}", h.ListClassBookings)
			r.Post("/", h.CreateBooking)
			r.Post("/{id}/cancel", h.CancelBooking)
			r.With(h.requireAdmin).Patch("/{id}/status", h.UpdateBookingStatus)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAuth, h.requireAdmin)
			r.Post("/roster/sync", h.SyncRoster)
			r.Get("/roster/diagnostics", h.RosterDiagnostics)
			r.Get("/holidays", h.ListHolidays)
			r.Post("/holidays", h.AddHoliday)
			r.Delete("/holidays/{date}", h.RemoveHoliday)
			r.Get("/users", h.ListStudents)
			r.Delete("/users/{userId}", h.DeleteStudent)
			r.Get("/class-report", h.ClassReport)
		})
	})
}
