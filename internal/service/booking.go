// Package service implements the studio's business rules on top of the
// entity store: booking policy, class management, accounts and
// administrative utilities.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
)

const (
	// BookingLeadTime is the minimum time between booking and class start.
	BookingLeadTime = 30 * time.Minute
	// CancelLeadTime is the minimum time between a student's cancellation and
	// class start. Admins are exempt.
	CancelLeadTime = 2 * time.Hour
)

// BookingService enforces the booking and cancellation policy.
type BookingService struct {
	store *repository.Store
	now   func() time.Time
}

// NewBookingService constructs a BookingService. A nil clock uses time.Now.
func NewBookingService(store *repository.Store, now func() time.Time) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{store: store, now: now}
}

// Book claims a seat in a class for actor. Every policy check runs before the
// store is mutated.
func (s *BookingService) Book(ctx context.Context, actor *model.User, req model.CreateBookingRequest) (*model.Booking, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	class, err := s.store.GetClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if s.store.IsHoliday(ctx, class.Date()) {
		return nil, ErrHoliday
	}
	if class.StartTime.Sub(s.now()) < BookingLeadTime {
		return nil, ErrBookingWindow
	}
	if class.IsFull() {
		return nil, repository.ErrClassFull
	}

	booking, err := s.store.CreateBooking(ctx, model.NewBooking{
		UserID:  actor.ID,
		ClassID: class.ID,
		Status:  model.StatusActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrClassFull) ||
			errors.Is(err, repository.ErrDuplicateBooking) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return booking, nil
}

// Cancel releases a booking's seat. Only the owner or an admin may cancel,
// and students must do so before CancelLeadTime.
func (s *BookingService) Cancel(ctx context.Context, actor *model.User, bookingID string) (*model.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if !actor.IsAdmin() {
		class, err := s.store.GetClass(ctx, booking.ClassID)
		switch {
		case err == nil:
			if class.StartTime.Sub(s.now()) < CancelLeadTime {
				return nil, ErrCancelWindow
			}
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("get class: %w", err)
		}
	}

	return s.store.CancelBooking(ctx, bookingID)
}

// SetStatus is the administrative status override.
func (s *BookingService) SetStatus(ctx context.Context, bookingID string, status model.BookingStatus) (*model.Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.UpdateBookingStatus(ctx, bookingID, status)
}

// ListForUser returns the user's bookings.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

// ListForClass returns a class's bookings with the booker's name and email.
// An empty status returns bookings in every state.
func (s *BookingService) ListForClass(ctx context.Context, classID, status string) ([]model.EnrichedBooking, error) {
	var filter *model.BookingStatus
	if status != "" {
		st := model.BookingStatus(status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		filter = &st
	}
	if _, err := s.store.GetClass(ctx, classID); err != nil {
		return nil, err
	}

	bookings, err := s.store.ListBookingsByClass(ctx, classID, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	out := make([]model.EnrichedBooking, 0, len(bookings))
	for _, b := range bookings {
		eb := model.EnrichedBooking{Booking: b, UserName: "unknown user"}
		if u, err := s.store.GetUser(ctx, b.UserID); err == nil {
			eb.UserName = u.Name
			eb.UserEmail = u.Email
		}
		out = append(out, eb)
	}
	return out, nil
}
