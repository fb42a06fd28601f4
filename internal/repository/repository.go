// Package repository implements the in-memory entity store for the studio
// booking system. It owns every user, class session, booking and holiday,
// and keeps each session's enrolled count in step with its active bookings.
package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/laengalba/studio-booking/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when a user with the same email already exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrDuplicateBooking is returned when the user already holds an active
// booking for the class.
var ErrDuplicateBooking = errors.New("active booking already exists for this class")

// ErrClassFull is returned when a class has no remaining capacity.
var ErrClassFull = errors.New("class is fully booked")

// Store is the process-wide entity store. The zero value is not usable; use
// NewStore. All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	users    map[string]*model.User
	classes  map[string]*model.ClassSession
	bookings map[string]*model.Booking
	holidays map[string]struct{}
	roster   map[string]struct{}

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for booking timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source used for new entities.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore constructs an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		users:    make(map[string]*model.User),
		classes:  make(map[string]*model.ClassSession),
		bookings: make(map[string]*model.Booking),
		holidays: make(map[string]struct{}),
		roster:   make(map[string]struct{}),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Users ────────────────────────────────────────────────────────────────────

// CreateUser inserts a user. Emails are compared exactly as stored.
func (s *Store) CreateUser(_ context.Context, in model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmailLocked(in.Email) != nil {
		return nil, ErrEmailTaken
	}

	role := in.Role
	if role == "" {
		role = model.RoleStudent
	}
	u := &model.User{
		ID:       s.newID(),
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
	}
	s.users[u.ID] = u
	return copyUser(u), nil
}

// GetUser returns a user by id or ErrNotFound.
func (s *Store) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

// GetUserByEmail returns the first user whose email matches exactly.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmailLocked(email)
	if u == nil {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Store) userByEmailLocked(email string) *model.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// ListUsers returns all users holding role, or every user when role is empty,
// ordered by name.
func (s *Store) ListUsers(_ context.Context, role model.Role) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []model.User
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *Store) UpdateUserPassword(_ context.Context, id, hashedPassword string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Password = hashedPassword
	return copyUser(u), nil
}

// DeleteUser cancels every active booking held by the user, releasing each
// seat, and then removes the user record.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	for _, b := range s.bookings {
		if b.UserID == id && b.Status == model.StatusActive {
			s.setStatusLocked(b, model.StatusCancelled)
		}
	}
	delete(s.users, id)
	return nil
}

// ─── Roster students ─────────────────────────────────────────────────────────

// MarkRosterStudent records email as belonging to the external roster.
func (s *Store) MarkRosterStudent(_ context.Context, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
}

// IsRosterStudent reports whether email was seen on the external roster.
func (s *Store) IsRosterStudent(_ context.Context, email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.roster[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// RosterStudents returns every roster email, sorted.
func (s *Store) RosterStudents(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.roster)
}

// ─── Classes ─────────────────────────────────────────────────────────────────

// CreateClass inserts a class session with no enrolled students.
func (s *Store) CreateClass(_ context.Context, in model.NewClass) (*model.ClassSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &model.ClassSession{
		ID:        s.newID(),
		Type:      in.Type,
		StartTime: in.StartTime.UTC(),
		Capacity:  in.Capacity,
		Enrolled:  0,
	}
	s.classes[c.ID] = c
	return copyClass(c), nil
}

// GetClass returns a class session by id or ErrNotFound.
func (s *Store) GetClass(_ context.Context, id string) (*model.ClassSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyClass(c), nil
}

// ListClasses returns every class session ordered by start time.
func (s *Store) ListClasses(ctx context.Context) ([]model.ClassSession, error) {
	return s.ListClassesBetween(ctx, time.Time{}, time.Time{})
}

// ListClassesBetween returns class sessions starting within [from, to],
// ordered by start time. A zero bound is open.
func (s *Store) ListClassesBetween(_ context.Context, from, to time.Time) ([]model.ClassSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var classes []model.ClassSession
	for _, c := range s.classes {
		if !from.IsZero() && c.StartTime.Before(from) {
			continue
		}
		if !to.IsZero() && c.StartTime.After(to) {
			continue
		}
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool {
		if !classes[i].StartTime.Equal(classes[j].StartTime) {
			return classes[i].StartTime.Before(classes[j].StartTime)
		}
		if classes[i].Type != classes[j].Type {
			return classes[i].Type > classes[j].Type
		}
		return classes[i].ID < classes[j].ID
	})
	return classes, nil
}

// UpdateClass applies the non-nil fields of patch. Capacity is never lowered
// below the current enrolled count.
func (s *Store) UpdateClass(_ context.Context, id string, patch model.ClassPatch) (*model.ClassSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Type != nil {
		c.Type = *patch.Type
	}
	if patch.StartTime != nil {
		c.StartTime = patch.StartTime.UTC()
	}
	if patch.Capacity != nil {
		c.Capacity = max(*patch.Capacity, c.Enrolled)
	}
	return copyClass(c), nil
}

// UpdateClassEnrollment overwrites the enrolled count without clamping.
// Booking flows never call it; it exists for administrative repair.
func (s *Store) UpdateClassEnrollment(_ context.Context, id string, enrolled int) (*model.ClassSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Enrolled = enrolled
	return copyClass(c), nil
}

// DeleteClass cancels the session's active bookings and removes it.
func (s *Store) DeleteClass(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[id]; !ok {
		return ErrNotFound
	}
	for _, b := range s.bookings {
		if b.ClassID == id && b.Status == model.StatusActive {
			s.setStatusLocked(b, model.StatusCancelled)
		}
	}
	delete(s.classes, id)
	return nil
}

// ─── Bookings ────────────────────────────────────────────────────────────────

// CreateBooking inserts a booking. For active bookings the duplicate and
// capacity checks and the seat increment happen under one lock, so no two
// callers can both observe the last free seat.
func (s *Store) CreateBooking(_ context.Context, in model.NewBooking) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := in.Status
	if status == "" {
		status = model.StatusActive
	}

	c, ok := s.classes[in.ClassID]
	if !ok {
		return nil, ErrNotFound
	}

	if status == model.StatusActive {
		for _, b := range s.bookings {
			if b.UserID == in.UserID && b.ClassID == in.ClassID && b.Status == model.StatusActive {
				return nil, ErrDuplicateBooking
			}
		}
		if c.IsFull() {
			return nil, ErrClassFull
		}
	}

	b := &model.Booking{
		ID:       s.newID(),
		UserID:   in.UserID,
		ClassID:  in.ClassID,
		Status:   status,
		BookedAt: s.now().UTC(),
	}
	s.bookings[b.ID] = b

	if status == model.StatusActive {
		s.adjustEnrollmentLocked(in.ClassID, 1)
	}
	return copyBooking(b), nil
}

// GetBooking returns a booking by id or ErrNotFound.
func (s *Store) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBooking(b), nil
}

// ListBookingsByUser returns the user's bookings, most recent first.
func (s *Store) ListBookingsByUser(_ context.Context, userID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterBookingsLocked(func(b *model.Booking) bool {
		return b.UserID == userID
	}), nil
}

// ListBookingsByClass returns the class's bookings. A nil status returns
// bookings in every state.
func (s *Store) ListBookingsByClass(_ context.Context, classID string, status *model.BookingStatus) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterBookingsLocked(func(b *model.Booking) bool {
		if b.ClassID != classID {
			return false
		}
		return status == nil || b.Status == *status
	}), nil
}

func (s *Store) filterBookingsLocked(keep func(*model.Booking) bool) []model.Booking {
	var out []model.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, *copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookedAt.Equal(out[j].BookedAt) {
			return out[i].BookedAt.After(out[j].BookedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UpdateBookingStatus moves a booking to status and reconciles the class's
// enrolled count. Activating a booking fails with ErrDuplicateBooking when the
// same user already holds another active booking for the class.
func (s *Store) UpdateBookingStatus(_ context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if status == model.StatusActive && b.Status != model.StatusActive {
		for _, other := range s.bookings {
			if other.ID != b.ID && other.UserID == b.UserID && other.ClassID == b.ClassID && other.Status == model.StatusActive {
				return nil, ErrDuplicateBooking
			}
		}
	}
	s.setStatusLocked(b, status)
	return copyBooking(b), nil
}

// CancelBooking is UpdateBookingStatus with StatusCancelled.
func (s *Store) CancelBooking(ctx context.Context, id string) (*model.Booking, error) {
	return s.UpdateBookingStatus(ctx, id, model.StatusCancelled)
}

func (s *Store) setStatusLocked(b *model.Booking, status model.BookingStatus) {
	old := b.Status
	b.Status = status
	if status == model.StatusCancelled {
		t := s.now().UTC()
		b.CancelledAt = &t
	}
	if old == status {
		return
	}
	s.adjustEnrollmentLocked(b.ClassID, enrollmentDelta(old, status))
}

// enrollmentDelta is the seat change implied by a status transition.
func enrollmentDelta(from, to model.BookingStatus) int {
	switch {
	case from == model.StatusActive && to != model.StatusActive:
		return -1
	case from != model.StatusActive && to == model.StatusActive:
		return 1
	default:
		return 0
	}
}

// adjustEnrollmentLocked is the single write path for enrolled counts after
// creation. The result is clamped to [0, capacity].
func (s *Store) adjustEnrollmentLocked(classID string, delta int) {
	if delta == 0 {
		return
	}
	c, ok := s.classes[classID]
	if !ok {
		return
	}
	c.Enrolled = min(max(c.Enrolled+delta, 0), c.Capacity)
}

// ─── Holidays ────────────────────────────────────────────────────────────────

// AddHoliday adds an ISO date (YYYY-MM-DD) to the holiday set.
func (s *Store) AddHoliday(_ context.Context, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays[date] = struct{}{}
}

// RemoveHoliday removes a date from the holiday set. Unknown dates are ignored.
func (s *Store) RemoveHoliday(_ context.Context, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holidays, date)
}

// Holidays returns the holiday set in ascending date order.
func (s *Store) Holidays(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.holidays)
}

// IsHoliday reports whether date is in the holiday set.
func (s *Store) IsHoliday(_ context.Context, date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.holidays[date]
	return ok
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func copyClass(c *model.ClassSession) *model.ClassSession {
	out := *c
	return &out
}

func copyBooking(b *model.Booking) *model.Booking {
	out := *b
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		out.CancelledAt = &t
	}
	return &out
}
