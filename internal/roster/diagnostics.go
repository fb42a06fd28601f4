package roster

import (
	"context"
	"sort"
)

// TableDiagnostics describes what a roster table query returned.
type TableDiagnostics struct {
	Rows    int               `json:"rows"`
	Columns []string          `json:"columns"`
	Sample  map[string]string `json:"sample,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Diagnostics is operational output for inspecting the external roster. It
// is not a stable contract.
type Diagnostics struct {
	Schedule       TableDiagnostics `json:"schedule"`
	People         TableDiagnostics `json:"people"`
	Parsed         int              `json:"parsedEntries"`
	Skipped        int              `json:"skippedRows"`
	LoadedStudents []string         `json:"loadedStudents"`
}

// Diagnose queries both roster tables and reports their raw shape.
func (s *Syncer) Diagnose(ctx context.Context) (*Diagnostics, error) {
	d := &Diagnostics{LoadedStudents: s.store.RosterStudents(ctx)}

	scheduleRows, err := s.source.ScheduleRows(ctx)
	d.Schedule = describe(scheduleRows, err)
	if err == nil {
		entries, skipped := ParseSchedule(scheduleRows)
		d.Parsed = len(entries)
		d.Skipped = skipped
	}

	peopleRows, err := s.source.PeopleRows(ctx)
	d.People = describe(peopleRows, err)
	return d, nil
}

func describe(rows []Row, err error) TableDiagnostics {
	if err != nil {
		return TableDiagnostics{Error: err.Error()}
	}
	td := TableDiagnostics{Rows: len(rows)}
	if len(rows) == 0 {
		return td
	}
	td.Sample = make(map[string]string, len(rows[0]))
	for k, v := range rows[0] {
		td.Columns = append(td.Columns, k)
		td.Sample[k] = valueString(v)
	}
	sort.Strings(td.Columns)
	return td
}
