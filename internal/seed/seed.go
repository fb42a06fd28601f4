// Package seed populates a fresh store with the studio's closure dates,
// its weekly class timetable and the bootstrap accounts.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/laengalba/studio-booking/internal/auth"
	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
)

// MadridHolidays are the studio's 2025 and 2026 closure dates.
var MadridHolidays = []string{
	"2025-01-01", "2025-01-06", "2025-04-18", "2025-05-01", "2025-05-15",
	"2025-05-22", "2025-10-12", "2025-10-23", "2025-11-01", "2025-12-06",
	"2025-12-08", "2025-12-24", "2025-12-25", "2025-12-26", "2025-12-27",
	"2025-12-28", "2025-12-29", "2025-12-30", "2025-12-31",
	"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04", "2026-01-06",
	"2026-04-02", "2026-04-03", "2026-05-01", "2026-05-15", "2026-05-22",
	"2026-10-12", "2026-10-23", "2026-11-01", "2026-12-06", "2026-12-08",
	"2026-12-24", "2026-12-25", "2026-12-26", "2026-12-27", "2026-12-28",
	"2026-12-29", "2026-12-30", "2026-12-31",
}

// Timetable maps weekdays to the UTC start hours of their two-hour slots.
var Timetable = map[time.Weekday][]int{
	time.Monday:    {19},
	time.Tuesday:   {17, 19},
	time.Wednesday: {12, 17, 19},
	time.Thursday:  {19},
	time.Friday:    {10, 12, 19},
}

// Holidays adds dates to the store's holiday set.
func Holidays(ctx context.Context, store *repository.Store, dates []string) {
	for _, d := range dates {
		store.AddHoliday(ctx, d)
	}
}

// Classes creates one torno and one modelado session for every timetable
// slot between start and end inclusive, skipping holidays. It returns the
// number of sessions created.
func Classes(ctx context.Context, store *repository.Store, start, end time.Time, timetable map[time.Weekday][]int) (int, error) {
	created := 0
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	for ; !day.After(last); day = day.AddDate(0, 0, 1) {
		if store.IsHoliday(ctx, day.Format(time.DateOnly)) {
			continue
		}
		for _, hour := range timetable[day.Weekday()] {
			at := day.Add(time.Duration(hour) * time.Hour)
			for _, typ := range []model.ClassType{model.ClassTorno, model.ClassModelado} {
				if _, err := store.CreateClass(ctx, model.NewClass{
					Type:      typ,
					StartTime: at,
					Capacity:  typ.Capacity(),
				}); err != nil {
					return created, fmt.Errorf("create class %s %s: %w", typ, at.Format(time.RFC3339), err)
				}
				created++
			}
		}
	}
	return created, nil
}

// Accounts holds the bootstrap credentials.
type Accounts struct {
	AdminEmail    string
	AdminPassword string
	TestStudent   bool
}

// Users creates the admin account and, optionally, a test student that is
// also registered on the roster. Existing accounts are left untouched.
func Users(ctx context.Context, store *repository.Store, accounts Accounts) error {
	hashed, err := auth.HashPassword(accounts.AdminPassword)
	if err != nil {
		return err
	}

	users := []model.NewUser{{
		Name:     "Admin User",
		Email:    accounts.AdminEmail,
		Password: hashed,
		Role:     model.RoleAdmin,
	}}
	if accounts.TestStudent {
		users = append(users, model.NewUser{
			Name:     "Test Student",
			Email:    "test@laengalba.com",
			Password: hashed,
			Role:     model.RoleStudent,
		})
		store.MarkRosterStudent(ctx, "test@laengalba.com")
	}

	for _, u := range users {
		if _, err := store.CreateUser(ctx, u); err != nil && !errors.Is(err, repository.ErrEmailTaken) {
			return fmt.Errorf("create user %s: %w", u.Email, err)
		}
	}
	return nil
}

// Run seeds holidays, classes and accounts.
func Run(ctx context.Context, store *repository.Store, start, end time.Time, accounts Accounts) error {
	Holidays(ctx, store, MadridHolidays)
	n, err := Classes(ctx, store, start, end, Timetable)
	if err != nil {
		return err
	}
	if err := Users(ctx, store, accounts); err != nil {
		return err
	}
	log.Printf("[seed] %d holidays, %d classes from %s to %s",
		len(store.Holidays(ctx)), n, start.Format(time.DateOnly), end.Format(time.DateOnly))
	return nil
}
