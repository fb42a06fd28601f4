package roster

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/laengalba/studio-booking/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  María   García ", "maria garcia"},
		{"Tipo_de_Clase", "tipo de clase"},
		{"MIÉRCOLES", "miercoles"},
		{"Día", "dia"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Fatalf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseScheduleVariantColumns(t *testing.T) {
	rows := []Row{
		{"id": 1, "nombre alumno": " Ana  López ", "día": "Lunes y Miércoles", "hora": "19:00:00", "tipo de clase": "Torno"},
		{"Nombre_Alumno": "Luis", "DIA": "rotativo", "Hora": "", "Tipo De Clase": ""},
		{"nombre alumno": "Sin Día", "día": "sábado"},
		{"nombre alumno": "", "día": "lunes"},
		{"nombre alumno": "Eva", "dia": "viernes", "hora": pgtype.Time{Microseconds: int64(12 * time.Hour / time.Microsecond), Valid: true}},
	}

	entries, skipped := ParseSchedule(rows)
	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	ana := entries[0]
	if ana.StudentName != "Ana López" {
		t.Fatalf("name = %q", ana.StudentName)
	}
	if len(ana.Days) != 2 || ana.Days[0] != time.Monday || ana.Days[1] != time.Wednesday {
		t.Fatalf("days = %v", ana.Days)
	}
	if ana.Hour == nil || *ana.Hour != 19 {
		t.Fatalf("hour = %v, want 19", ana.Hour)
	}
	if ana.Type != model.ClassTorno {
		t.Fatalf("type = %q", ana.Type)
	}

	luis := entries[1]
	if len(luis.Days) != 5 || luis.Hour != nil || luis.Type != "" {
		t.Fatalf("rotativo entry = %+v", luis)
	}

	eva := entries[2]
	if eva.Hour == nil || *eva.Hour != 12 {
		t.Fatalf("time column hour = %v, want 12", eva.Hour)
	}
}

func TestParseHour(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"19:00:00", 19, true},
		{"9:30", 9, true},
		{"17", 17, true},
		{"", 0, false},
		{"tarde", 0, false},
		{"25:00", 0, false},
	}
	for _, tt := range tests {
		got := parseHour(tt.in)
		if (got != nil) != tt.ok {
			t.Fatalf("parseHour(%q) = %v, want ok=%v", tt.in, got, tt.ok)
		}
		if got != nil && *got != tt.want {
			t.Fatalf("parseHour(%q) = %d, want %d", tt.in, *got, tt.want)
		}
	}
}

func TestParsePeople(t *testing.T) {
	people := ParsePeople([]Row{
		{"nombre alumno": "Ana López", "email": " ANA@Example.com ", "telefono": "600"},
		{"nombre alumno": "Sin Correo", "email": nil},
		{"Nombre": "Luis Pérez", "Correo": "luis@example.com"},
	})
	if len(people) != 2 {
		t.Fatalf("people = %d, want 2", len(people))
	}
	if people[0].Email != "ana@example.com" {
		t.Fatalf("email = %q", people[0].Email)
	}
	if people[1].Name != "Luis Pérez" {
		t.Fatalf("name = %q", people[1].Name)
	}
}
