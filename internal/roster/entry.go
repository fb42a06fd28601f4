// Package roster imports students and their weekly class slots from the
// external roster database. Raw rows are normalized into ScheduleEntry and
// Person values before any name matching runs, so the loosely-typed source
// tables never reach the booking logic.
package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/laengalba/studio-booking/internal/model"
	"golang.org/x/text/unicode/norm"
)

// Row is one raw record of an external table keyed by column name.
type Row map[string]any

// ScheduleEntry is a student's standing weekly slot.
type ScheduleEntry struct {
	StudentName string
	Days        []time.Weekday
	// Hour is the UTC start hour, or nil for every hour of the day.
	Hour *int
	// Type is empty when the entry applies to both class types.
	Type model.ClassType
}

// Person is a roster identity with a contact email.
type Person struct {
	Name  string
	Email string
}

var (
	nameColumns  = []string{"nombre alumno", "nombre del alumno", "alumno", "nombre"}
	dayColumns   = []string{"dia", "dias"}
	hourColumns  = []string{"hora", "horario"}
	typeColumns  = []string{"tipo de clase", "tipo clase", "tipo"}
	emailColumns = []string{"email", "correo", "correo electronico", "e mail"}

	hourPattern = regexp.MustCompile(`^(\d{1,2})(?::|$)`)
	daySplit    = regexp.MustCompile(`\s+y\s+|\s*,\s*`)

	weekdays = map[string][]time.Weekday{
		"lunes":     {time.Monday},
		"martes":    {time.Tuesday},
		"miercoles": {time.Wednesday},
		"jueves":    {time.Thursday},
		"viernes":   {time.Friday},
		"rotativo":  {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
)

// normalize lower-cases s, strips diacritics, turns underscores into spaces
// and collapses runs of whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r == '_' {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// lookup returns the first non-empty value among the candidate columns.
func (r Row) lookup(candidates []string) string {
	byKey := make(map[string]any, len(r))
	for k, v := range r {
		byKey[normalize(k)] = v
	}
	for _, c := range candidates {
		if v, ok := byKey[c]; ok {
			if s := strings.TrimSpace(valueString(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// valueString renders a decoded column value as text.
func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.TimeOnly)
	case pgtype.Time:
		if !x.Valid {
			return ""
		}
		d := time.Duration(x.Microseconds) * time.Microsecond
		return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	case pgtype.Text:
		if !x.Valid {
			return ""
		}
		return x.String
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// ParseSchedule converts raw schedule rows into entries. Rows without a
// student name or a recognizable day are skipped and counted.
func ParseSchedule(rows []Row) ([]ScheduleEntry, int) {
	var (
		entries []ScheduleEntry
		skipped int
	)
	for _, row := range rows {
		entry, ok := parseScheduleRow(row)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

func parseScheduleRow(row Row) (ScheduleEntry, bool) {
	name := strings.Join(strings.Fields(row.lookup(nameColumns)), " ")
	days := parseDays(row.lookup(dayColumns))
	if name == "" || len(days) == 0 {
		return ScheduleEntry{}, false
	}
	return ScheduleEntry{
		StudentName: name,
		Days:        days,
		Hour:        parseHour(row.lookup(hourColumns)),
		Type:        model.ClassType(normalize(row.lookup(typeColumns))),
	}, true
}

// parseDays accepts a single Spanish weekday, a list joined by "y" or commas,
// or "rotativo" for every weekday.
func parseDays(v string) []time.Weekday {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, part := range daySplit.Split(normalize(v), -1) {
		for _, d := range weekdays[strings.TrimSpace(part)] {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}
	return days
}

// parseHour reads the leading hour of "HH:MM[:SS]" or a bare "HH".
func parseHour(v string) *int {
	m := hourPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return nil
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h > 23 {
		return nil
	}
	return &h
}

// ParsePeople converts raw people rows into persons with lower-cased emails.
// Rows missing a name or email are dropped.
func ParsePeople(rows []Row) []Person {
	var people []Person
	for _, row := range rows {
		name := strings.TrimSpace(row.lookup(nameColumns))
		email := strings.ToLower(strings.TrimSpace(row.lookup(emailColumns)))
		if name == "" || email == "" {
			continue
		}
		people = append(people, Person{Name: name, Email: email})
	}
	return people
}
