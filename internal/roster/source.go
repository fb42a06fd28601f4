package roster

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Default table names in the roster database.
const (
	ScheduleTable = "horarios_asistencia"
	PeopleTable   = "alumnos"
)

// Source yields raw roster rows.
type Source interface {
	ScheduleRows(ctx context.Context) ([]Row, error)
	PeopleRows(ctx context.Context) ([]Row, error)
}

// PostgresSource reads the roster tables from a Postgres database. Columns are
// selected with * and keyed by their reported names, since the upstream
// spelling is not stable.
type PostgresSource struct {
	db            *pgxpool.Pool
	scheduleTable string
	peopleTable   string
}

// NewPostgresSource constructs a PostgresSource over the default tables.
func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{db: db, scheduleTable: ScheduleTable, peopleTable: PeopleTable}
}

// ScheduleRows implements Source.
func (s *PostgresSource) ScheduleRows(ctx context.Context) ([]Row, error) {
	return s.selectAll(ctx, s.scheduleTable)
}

// PeopleRows implements Source.
func (s *PostgresSource) PeopleRows(ctx context.Context) ([]Row, error) {
	return s.selectAll(ctx, s.peopleTable)
}

func (s *PostgresSource) selectAll(ctx context.Context, table string) ([]Row, error) {
	rows, err := s.db.Query(ctx, "SELECT * FROM "+pgx.Identifier{table}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}
