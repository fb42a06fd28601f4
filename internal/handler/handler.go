// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/laengalba/studio-booking/internal/auth"
	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
	"github.com/laengalba/studio-booking/internal/service"
)

// Handler holds all HTTP handlers for the booking API.
type Handler struct {
	accounts *service.AccountService
	classes  *service.ClassService
	bookings *service.BookingService
	admin    *service.AdminService
	sessions *auth.Sessions
}

// New constructs a Handler.
func New(
	accounts *service.AccountService,
	classes *service.ClassService,
	bookings *service.BookingService,
	admin *service.AdminService,
	sessions *auth.Sessions,
) *Handler {
	return &Handler{
		accounts: accounts,
		classes:  classes,
		bookings: bookings,
		admin:    admin,
		sessions: sessions,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps a service or store error onto a status code. what
// names the entity for not-found messages. Unexpected errors are logged and
// reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email is already registered")
	case errors.Is(err, repository.ErrDuplicateBooking):
		writeError(w, http.StatusConflict, "you already have an active booking for this class")
	case errors.Is(err, repository.ErrClassFull):
		writeError(w, http.StatusBadRequest, "class is full")
	case errors.Is(err, service.ErrHoliday),
		errors.Is(err, service.ErrBookingWindow),
		errors.Is(err, service.ErrCancelWindow),
		errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, service.ErrNotRosterStudent):
		writeError(w, http.StatusForbidden, "access denied: please check your email address")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrRosterDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("[http] %s %s req=%s: %v", r.Method, r.URL.Path, chimiddleware.GetReqID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Register handles POST /api/auth/register
// Creates a student account for a roster email and signs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	h.signIn(w, r, user, http.StatusCreated)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	h.signIn(w, r, user, http.StatusOK)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	if err := h.sessions.Issue(w, user); err != nil {
		writeServiceError(w, r, err, "session")
		return
	}
	writeJSON(w, status, map[string]any{"user": user})
}

// Logout handles POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	writeMessage(w, "signed out")
}

// ChangePassword handles POST /api/auth/change-password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), currentUser(r).ID, req); err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeMessage(w, "password changed")
}

// Me handles GET /api/auth/me
// The user is reloaded by requireAuth, so the refreshed cookie carries the
// current name and role.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, currentUser(r), http.StatusOK)
}

// ─── Classes ──────────────────────────────────────────────────────────────────

// ListClasses handles GET /api/classes
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classes.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	if classes == nil {
		classes = []model.ClassSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": classes})
}

// ListClassesRange handles GET /api/classes/range?start=&end=
func (h *Handler) ListClassesRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	classes, err := h.classes.ListRange(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	if classes == nil {
		classes = []model.ClassSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": classes})
}

// CreateClass handles POST /api/classes
func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req model.CreateClassRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	class, err := h.classes.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"class": class})
}

// UpdateClass handles PATCH /api/classes/{id}
func (h *Handler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateClassRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	class, err := h.classes.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"class": class})
}

// DeleteClass handles DELETE /api/classes/{id}
func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	if err := h.classes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	writeMessage(w, "class deleted")
}

// ─── Bookings ─────────────────────────────────────────────────────────────────

// ListMyBookings handles GET /api/bookings/user
func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err, "booking")
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// ListClassBookings handles GET /api/bookings/class/{classId}?status=
func (h *Handler) ListClassBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListForClass(r.Context(), chi.URLParam(r, "classId"), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// CreateBooking handles POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.bookings.Book(r.Context(), currentUser(r), req)
	if err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})
}

// CancelBooking handles POST /api/bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Cancel(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "booking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

// UpdateBookingStatus handles PATCH /api/bookings/{id}/status
func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.bookings.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err, "booking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

// ─── Admin ────────────────────────────────────────────────────────────────────

// SyncRoster handles POST /api/admin/roster/sync
func (h *Handler) SyncRoster(w http.ResponseWriter, r *http.Request) {
	report, err := h.admin.SyncRoster(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "roster")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

// RosterDiagnostics handles GET /api/admin/roster/diagnostics
func (h *Handler) RosterDiagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := h.admin.DiagnoseRoster(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "roster")
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

// ListHolidays handles GET /api/admin/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"holidays": h.admin.Holidays(r.Context())})
}

// AddHoliday handles POST /api/admin/holidays
func (h *Handler) AddHoliday(w http.ResponseWriter, r *http.Request) {
	var req model.HolidayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.admin.AddHoliday(r.Context(), req); err != nil {
		writeServiceError(w, r, err, "holiday")
		return
	}
	writeMessage(w, "holiday added")
}

// RemoveHoliday handles DELETE /api/admin/holidays/{date}
func (h *Handler) RemoveHoliday(w http.ResponseWriter, r *http.Request) {
	h.admin.RemoveHoliday(r.Context(), chi.URLParam(r, "date"))
	writeMessage(w, "holiday removed")
}

// ListStudents handles GET /api/admin/users
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.Students(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// DeleteStudent handles DELETE /api/admin/users/{userId}
// Active bookings are cancelled before the account is removed.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteStudent(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeMessage(w, "user deleted")
}

// ClassReport handles GET /api/admin/class-report?from=&to=
func (h *Handler) ClassReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.admin.ClassReport(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeServiceError(w, r, err, "class")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
