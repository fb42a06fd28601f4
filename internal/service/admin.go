package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
	"github.com/laengalba/studio-booking/internal/roster"
)

// RosterSyncer imports students and their weekly slots from the external
// roster.
type RosterSyncer interface {
	Sync(ctx context.Context) (*roster.Report, error)
	Diagnose(ctx context.Context) (*roster.Diagnostics, error)
}

// AdminService exposes administrative utilities.
type AdminService struct {
	store  *repository.Store
	roster RosterSyncer
}

// NewAdminService constructs an AdminService. A nil syncer disables roster
// operations.
func NewAdminService(store *repository.Store, syncer RosterSyncer) *AdminService {
	return &AdminService{store: store, roster: syncer}
}

// Holidays returns the holiday dates in ascending order.
func (s *AdminService) Holidays(ctx context.Context) []string {
	return s.store.Holidays(ctx)
}

// AddHoliday adds a YYYY-MM-DD date to the holiday set.
func (s *AdminService) AddHoliday(ctx context.Context, req model.HolidayRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	s.store.AddHoliday(ctx, req.Date)
	return nil
}

// RemoveHoliday removes a date from the holiday set.
func (s *AdminService) RemoveHoliday(ctx context.Context, date string) {
	s.store.RemoveHoliday(ctx, date)
}

// Students returns every account with the student role.
func (s *AdminService) Students(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx, model.RoleStudent)
}

// DeleteStudent cancels the student's active bookings and removes the
// account. Ids of non-student accounts report ErrNotFound.
func (s *AdminService) DeleteStudent(ctx context.Context, userID string) error {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != model.RoleStudent {
		return repository.ErrNotFound
	}
	return s.store.DeleteUser(ctx, userID)
}

// SyncRoster runs a roster import on demand.
func (s *AdminService) SyncRoster(ctx context.Context) (*roster.Report, error) {
	if s.roster == nil {
		return nil, ErrRosterDisabled
	}
	return s.roster.Sync(ctx)
}

// DiagnoseRoster returns raw roster query results for operators.
func (s *AdminService) DiagnoseRoster(ctx context.Context) (*roster.Diagnostics, error) {
	if s.roster == nil {
		return nil, ErrRosterDisabled
	}
	return s.roster.Diagnose(ctx)
}

// GroupStat summarises the sessions of one weekly slot.
type GroupStat struct {
	Group    string       `json:"group"`
	Weekday  time.Weekday `json:"weekday"`
	Hour     int          `json:"hour"`
	Sessions int          `json:"sessions"`
	Dates    int          `json:"dates"`
	Students int          `json:"students"`
}

// ClassReport is the per-slot distribution of classes over a period.
type ClassReport struct {
	From         string      `json:"from"`
	To           string      `json:"to"`
	Groups       []GroupStat `json:"groups"`
	TeachingDays int         `json:"teachingDays"`
	Holidays     int         `json:"holidays"`
}

// ClassReport groups the sessions between from and to (YYYY-MM-DD,
// inclusive) by weekday and start hour, skipping holidays. Students counts
// distinct users holding an active booking in the slot.
func (s *AdminService) ClassReport(ctx context.Context, from, to string) (*ClassReport, error) {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return nil, invalid("invalid from: %q", from)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return nil, invalid("invalid to: %q", to)
	}
	if end.Before(start) {
		return nil, invalid("to must not be before from")
	}

	classes, err := s.store.ListClassesBetween(ctx, start, end.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	type slot struct {
		day  time.Weekday
		hour int
	}
	type acc struct {
		sessions int
		dates    map[string]struct{}
		students map[string]struct{}
	}
	groups := make(map[slot]*acc)
	teaching := make(map[string]struct{})
	active := model.StatusActive

	for _, c := range classes {
		date := c.Date()
		if s.store.IsHoliday(ctx, date) {
			continue
		}
		at := c.StartTime.UTC()
		key := slot{day: at.Weekday(), hour: at.Hour()}
		g, ok := groups[key]
		if !ok {
			g = &acc{dates: make(map[string]struct{}), students: make(map[string]struct{})}
			groups[key] = g
		}
		g.sessions++
		g.dates[date] = struct{}{}
		teaching[date] = struct{}{}

		bookings, err := s.store.ListBookingsByClass(ctx, c.ID, &active)
		if err != nil {
			return nil, fmt.Errorf("list bookings: %w", err)
		}
		for _, b := range bookings {
			g.students[b.UserID] = struct{}{}
		}
	}

	report := &ClassReport{
		From:         from,
		To:           to,
		Groups:       make([]GroupStat, 0, len(groups)),
		TeachingDays: len(teaching),
	}
	for _, h := range s.store.Holidays(ctx) {
		if h >= from && h <= to {
			report.Holidays++
		}
	}
	for key, g := range groups {
		report.Groups = append(report.Groups, GroupStat{
			Group:    fmt.Sprintf("%s %02d:00", key.day, key.hour),
			Weekday:  key.day,
			Hour:     key.hour,
			Sessions: g.sessions,
			Dates:    len(g.dates),
			Students: len(g.students),
		})
	}
	sort.Slice(report.Groups, func(i, j int) bool {
		a, b := report.Groups[i], report.Groups[j]
		if weekdayOrder(a.Weekday) != weekdayOrder(b.Weekday) {
			return weekdayOrder(a.Weekday) < weekdayOrder(b.Weekday)
		}
		return a.Hour < b.Hour
	})
	return report, nil
}

// weekdayOrder ranks Monday first and Sunday last.
func weekdayOrder(d time.Weekday) int {
	return (int(d) + 6) % 7
}
