package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/laengalba/studio-booking/internal/auth"
	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
)

type fakeSource struct {
	schedule  []Row
	people    []Row
	peopleErr error
}

func (f *fakeSource) ScheduleRows(context.Context) ([]Row, error) { return f.schedule, nil }
func (f *fakeSource) PeopleRows(context.Context) ([]Row, error)   { return f.people, f.peopleErr }

// monday is 2025-10-06, a Monday.
var monday = time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)

func seedClasses(t *testing.T, s *repository.Store) {
	t.Helper()
	ctx := context.Background()
	for _, day := range []int{0, 1, 7} { // Mon, Tue, next Mon
		for _, hour := range []int{17, 19} {
			at := monday.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			for _, typ := range []model.ClassType{model.ClassTorno, model.ClassModelado} {
				if _, err := s.CreateClass(ctx, model.NewClass{Type: typ, StartTime: at, Capacity: typ.Capacity()}); err != nil {
					t.Fatalf("create class: %v", err)
				}
			}
		}
	}
}

func activeBookings(t *testing.T, s *repository.Store, email string) []model.Booking {
	t.Helper()
	ctx := context.Background()
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("get user %s: %v", email, err)
	}
	all, _ := s.ListBookingsByUser(ctx, u.ID)
	var out []model.Booking
	for _, b := range all {
		if b.Status == model.StatusActive {
			out = append(out, b)
		}
	}
	return out
}

func TestSyncCreatesUsersAndBookings(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore()
	seedClasses(t, store)

	src := &fakeSource{
		schedule: []Row{
			{"nombre alumno": "Ana López", "día": "lunes", "hora": "19:00:00", "tipo de clase": "torno"},
			{"nombre alumno": "Nadie Conocido", "día": "martes"},
		},
		people: []Row{
			{"nombre alumno": "Ana López", "email": "Ana@Example.com"},
		},
	}
	syncer := NewSyncer(src, store, "default-pass")

	report, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.UsersCreated != 1 || report.BookingsCreated != 2 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Unmatched) != 1 || report.Unmatched[0] != "Nadie Conocido" {
		t.Fatalf("unmatched = %v", report.Unmatched)
	}

	user, err := store.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Role != model.RoleStudent || !auth.ComparePassword(user.Password, "default-pass") {
		t.Fatalf("unexpected synced user: %+v", user)
	}
	if !store.IsRosterStudent(ctx, "ana@example.com") {
		t.Fatal("expected roster membership")
	}

	for _, b := range activeBookings(t, store, "ana@example.com") {
		c, _ := store.GetClass(ctx, b.ClassID)
		if c.Type != model.ClassTorno || c.StartTime.Weekday() != time.Monday || c.StartTime.Hour() != 19 {
			t.Fatalf("booked wrong class: %+v", c)
		}
		if c.Enrolled != 1 {
			t.Fatalf("enrolled = %d, want 1", c.Enrolled)
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore()
	seedClasses(t, store)

	src := &fakeSource{
		schedule: []Row{{"nombre alumno": "Ana López", "día": "lunes y martes"}},
		people:   []Row{{"nombre alumno": "Ana López", "email": "ana@example.com"}},
	}
	syncer := NewSyncer(src, store, "default-pass")

	first, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.BookingsCreated != 12 {
		t.Fatalf("first bookings = %d, want 12", first.BookingsCreated)
	}

	second, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.UsersCreated != 0 || second.BookingsCreated != 0 {
		t.Fatalf("second report = %+v", second)
	}
	if got := len(activeBookings(t, store, "ana@example.com")); got != 12 {
		t.Fatalf("active bookings = %d, want 12", got)
	}
}

func TestSyncSkipsFullClasses(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore()
	c, _ := store.CreateClass(ctx, model.NewClass{Type: model.ClassModelado, StartTime: monday.Add(19 * time.Hour), Capacity: 3})

	var schedule, people []Row
	for _, p := range []Person{
		{Name: "Uno Alumno", Email: "uno@example.com"},
		{Name: "Dos Alumno", Email: "dos@example.com"},
		{Name: "Tres Alumno", Email: "tres@example.com"},
		{Name: "Cuatro Alumno", Email: "cuatro@example.com"},
	} {
		schedule = append(schedule, Row{"nombre alumno": p.Name, "día": "lunes", "tipo de clase": "modelado"})
		people = append(people, Row{"nombre alumno": p.Name, "email": p.Email})
	}
	report, err := NewSyncer(&fakeSource{schedule: schedule, people: people}, store, "pw").Sync(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.BookingsCreated != 3 || report.FullClasses != 1 {
		t.Fatalf("report = %+v", report)
	}
	got, _ := store.GetClass(ctx, c.ID)
	if got.Enrolled != 3 {
		t.Fatalf("enrolled = %d, want 3", got.Enrolled)
	}
}

func TestSyncSourceErrorAndRunSwallows(t *testing.T) {
	store := repository.NewStore()
	boom := errors.New("boom")
	syncer := NewSyncer(&fakeSource{peopleErr: boom}, store, "pw")

	if _, err := syncer.Sync(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	// Run must log and return rather than propagate.
	syncer.Run(context.Background())
}

func TestDiagnose(t *testing.T) {
	store := repository.NewStore()
	store.MarkRosterStudent(context.Background(), "ana@example.com")
	src := &fakeSource{
		schedule:  []Row{{"nombre alumno": "Ana", "día": "lunes"}, {"nombre alumno": "X"}},
		peopleErr: errors.New("permission denied"),
	}

	d, err := NewSyncer(src, store, "pw").Diagnose(context.Background())
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if d.Schedule.Rows != 2 || d.Parsed != 1 || d.Skipped != 1 {
		t.Fatalf("schedule diagnostics = %+v parsed=%d skipped=%d", d.Schedule, d.Parsed, d.Skipped)
	}
	if len(d.Schedule.Columns) != 2 || d.Schedule.Sample["nombre alumno"] != "Ana" {
		t.Fatalf("sample = %+v", d.Schedule)
	}
	if d.People.Error == "" {
		t.Fatal("expected people error")
	}
	if len(d.LoadedStudents) != 1 {
		t.Fatalf("loaded = %v", d.LoadedStudents)
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	syncer := NewSyncer(&fakeSource{}, repository.NewStore(), "pw")
	if _, err := Schedule("not a cron spec", syncer, time.Minute); err == nil {
		t.Fatal("expected error")
	}

	c, err := Schedule("@every 1h", syncer, time.Minute)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	c.Stop()
}
