package roster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/laengalba/studio-booking/internal/auth"
	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
	"github.com/robfig/cron/v3"
)

// Store is the subset of the entity store the syncer writes through. It is
// the same contract interactive requests use.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, in model.NewUser) (*model.User, error)
	MarkRosterStudent(ctx context.Context, email string)
	RosterStudents(ctx context.Context) []string
	ListClasses(ctx context.Context) ([]model.ClassSession, error)
	CreateBooking(ctx context.Context, in model.NewBooking) (*model.Booking, error)
}

// Report summarises one sync run.
type Report struct {
	ScheduleRows    int       `json:"scheduleRows"`
	People          int       `json:"people"`
	Skipped         int       `json:"skipped"`
	Unmatched       []string  `json:"unmatched"`
	UsersCreated    int       `json:"usersCreated"`
	BookingsCreated int       `json:"bookingsCreated"`
	FullClasses     int       `json:"fullClasses"`
	StartedAt       time.Time `json:"startedAt"`
	Duration        string    `json:"duration"`
}

// Syncer reconciles the entity store with the external roster.
type Syncer struct {
	source          Source
	store           Store
	defaultPassword string
	newMatcher      func([]Person) Matcher
	now             func() time.Time

	mu sync.Mutex
}

// NewSyncer constructs a Syncer. Accounts it creates get defaultPassword.
func NewSyncer(source Source, store Store, defaultPassword string) *Syncer {
	return &Syncer{
		source:          source,
		store:           store,
		defaultPassword: defaultPassword,
		newMatcher:      func(p []Person) Matcher { return NewNameMatcher(p) },
		now:             time.Now,
	}
}

// Sync imports the roster once. It is idempotent for bookings: a student
// already holding an active booking for a class is left alone. Runs are
// serialized.
func (s *Syncer) Sync(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &Report{StartedAt: s.now().UTC()}
	defer func() { report.Duration = s.now().Sub(report.StartedAt).String() }()

	scheduleRows, err := s.source.ScheduleRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	peopleRows, err := s.source.PeopleRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}

	entries, skipped := ParseSchedule(scheduleRows)
	people := ParsePeople(peopleRows)
	report.ScheduleRows = len(scheduleRows)
	report.People = len(people)
	report.Skipped = skipped
	if len(entries) == 0 {
		return report, nil
	}

	password, err := auth.HashPassword(s.defaultPassword)
	if err != nil {
		return nil, err
	}
	classes, err := s.store.ListClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	matcher := s.newMatcher(people)
	unmatched := make(map[string]struct{})

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		email, ok := matcher.Match(entry.StudentName)
		if !ok {
			unmatched[entry.StudentName] = struct{}{}
			continue
		}
		s.store.MarkRosterStudent(ctx, email)

		user, created, err := s.ensureUser(ctx, entry.StudentName, email, password)
		if err != nil {
			log.Printf("[roster] user %s: %v", email, err)
			continue
		}
		if created {
			report.UsersCreated++
		}

		for _, c := range matchingClasses(classes, entry) {
			_, err := s.store.CreateBooking(ctx, model.NewBooking{
				UserID:  user.ID,
				ClassID: c.ID,
				Status:  model.StatusActive,
			})
			switch {
			case err == nil:
				report.BookingsCreated++
			case errors.Is(err, repository.ErrDuplicateBooking):
				// already booked
			case errors.Is(err, repository.ErrClassFull):
				report.FullClasses++
			default:
				log.Printf("[roster] booking %s in class %s: %v", email, c.ID, err)
			}
		}
	}

	for name := range unmatched {
		report.Unmatched = append(report.Unmatched, name)
	}
	sort.Strings(report.Unmatched)
	return report, nil
}

func (s *Syncer) ensureUser(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	user, err = s.store.CreateUser(ctx, model.NewUser{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     model.RoleStudent,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// matchingClasses returns the sessions on the entry's weekdays, restricted to
// its hour and type when those are set.
func matchingClasses(classes []model.ClassSession, entry ScheduleEntry) []model.ClassSession {
	var out []model.ClassSession
	for _, c := range classes {
		start := c.StartTime.UTC()
		if !containsDay(entry.Days, start.Weekday()) {
			continue
		}
		if entry.Type != "" && c.Type != entry.Type {
			continue
		}
		if entry.Hour != nil && start.Hour() != *entry.Hour {
			continue
		}
		out = append(out, c)
	}
	return out
}

func containsDay(days []time.Weekday, d time.Weekday) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// Run performs a sync and logs the outcome. Errors are not propagated: the
// roster is a best-effort background import.
func (s *Syncer) Run(ctx context.Context) {
	report, err := s.Sync(ctx)
	if err != nil {
		log.Printf("[roster] sync failed: %v", err)
		return
	}
	log.Printf("[roster] synced rows=%d people=%d users=%d bookings=%d unmatched=%d full=%d in %s",
		report.ScheduleRows, report.People, report.UsersCreated, report.BookingsCreated,
		len(report.Unmatched), report.FullClasses, report.Duration)
	for _, name := range report.Unmatched {
		log.Printf("[roster] warning: no email found for %q", name)
	}
}

// Schedule starts a cron job running s on spec. Overlapping runs are skipped.
// The caller stops the returned scheduler on shutdown.
func Schedule(spec string, s *Syncer, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule roster sync %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
