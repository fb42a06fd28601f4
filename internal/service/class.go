package service

import (
	"context"
	"time"

	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
)

// ClassService manages class sessions.
type ClassService struct {
	store *repository.Store
}

// NewClassService constructs a ClassService.
func NewClassService(store *repository.Store) *ClassService {
	return &ClassService{store: store}
}

// List returns every class session.
func (s *ClassService) List(ctx context.Context) ([]model.ClassSession, error) {
	return s.store.ListClasses(ctx)
}

// ListRange returns class sessions starting between start and end inclusive.
// Both bounds accept RFC 3339 timestamps or plain dates; a plain end date
// covers the whole day.
func (s *ClassService) ListRange(ctx context.Context, start, end string) ([]model.ClassSession, error) {
	if start == "" || end == "" {
		return nil, invalid("start and end are required")
	}
	from, _, err := parseBound(start)
	if err != nil {
		return nil, invalid("invalid start: %q", start)
	}
	to, dateOnly, err := parseBound(end)
	if err != nil {
		return nil, invalid("invalid end: %q", end)
	}
	if dateOnly {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return s.store.ListClassesBetween(ctx, from, to)
}

func parseBound(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	return t, true, err
}

// Create adds a class session. Capacity defaults to the type's fixed seats.
func (s *ClassService) Create(ctx context.Context, req model.CreateClassRequest) (*model.ClassSession, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = req.Type.Capacity()
	}
	return s.store.CreateClass(ctx, model.NewClass{
		Type:      req.Type,
		StartTime: req.StartTime,
		Capacity:  capacity,
	})
}

// Update patches a class session.
func (s *ClassService) Update(ctx context.Context, id string, req model.UpdateClassRequest) (*model.ClassSession, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.store.UpdateClass(ctx, id, model.ClassPatch{
		Type:      req.Type,
		StartTime: req.StartTime,
		Capacity:  req.Capacity,
	})
}

// Delete removes a class session, cancelling its active bookings.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteClass(ctx, id)
}
