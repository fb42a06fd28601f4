package seed

import (
	"context"
	"testing"
	"time"

	"github.com/laengalba/studio-booking/internal/auth"
	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
)

func TestClassesFollowTimetableAndSkipHolidays(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore()
	store.AddHoliday(ctx, "2025-10-08") // Wednesday

	// Monday 2025-10-06 through Sunday 2025-10-12.
	start := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC)

	n, err := Classes(ctx, store, start, end, Timetable)
	if err != nil {
		t.Fatalf("classes: %v", err)
	}
	// Mon 1 + Tue 2 + Thu 1 + Fri 3 slots, two sessions each.
	if n != 14 {
		t.Fatalf("created = %d, want 14", n)
	}

	classes, _ := store.ListClasses(ctx)
	for _, c := range classes {
		if c.Date() == "2025-10-08" {
			t.Fatalf("class generated on holiday: %+v", c)
		}
		if c.Capacity != c.Type.Capacity() || c.Enrolled != 0 {
			t.Fatalf("unexpected class: %+v", c)
		}
		if c.StartTime.Location() != time.UTC {
			t.Fatalf("expected UTC start, got %v", c.StartTime.Location())
		}
	}
	if got := classes[0].StartTime; !got.Equal(time.Date(2025, 10, 6, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("first class = %v", got)
	}
}

func TestUsersIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore()
	accounts := Accounts{AdminEmail: "admin@example.com", AdminPassword: "secret1", TestStudent: true}

	for range 2 {
		if err := Users(ctx, store, accounts); err != nil {
			t.Fatalf("users: %v", err)
		}
	}

	admin, err := store.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if admin.Role != model.RoleAdmin || !auth.ComparePassword(admin.Password, "secret1") {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	users, _ := store.ListUsers(ctx, "")
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}
	if !store.IsRosterStudent(ctx, "test@laengalba.com") {
		t.Fatal("expected test student on roster")
	}
}

func TestRunLoadsHolidays(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore()
	start := time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	if err := Run(ctx, store, start, end, Accounts{AdminEmail: "a@example.com", AdminPassword: "pw1234"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := len(store.Holidays(ctx)); got != len(MadridHolidays) {
		t.Fatalf("holidays = %d, want %d", got, len(MadridHolidays))
	}
	// Only Mon 22 and Tue 23 are open that week.
	classes, _ := store.ListClasses(ctx)
	if len(classes) != 6 {
		t.Fatalf("classes = %d, want 6", len(classes))
	}
}
