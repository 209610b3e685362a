package db

import (
	"database/sql"
	"sort"
	"testing"
	"time"
)

func TestDisplayNameFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		participant Participant
		want        string
	}{
		{
			name: "first-and-last",
			participant: Participant{
				FirstName: sql.NullString{String: "Carol", Valid: true},
				LastName:  sql.NullString{String: "Smith", Valid: true},
				Username:  sql.NullString{String: "carol", Valid: true},
			},
			want: "Carol Smith",
		},
		{
			name: "first-only",
			participant: Participant{
				FirstName: sql.NullString{String: "Carol", Valid: true},
			},
			want: "Carol",
		},
		{
			name: "handle-only",
			participant: Participant{
				Username: sql.NullString{String: "carol", Valid: true},
			},
			want: "@carol",
		},
		{
			name:        "nothing",
			participant: Participant{},
			want:        "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.participant.DisplayName(); got != tt.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTimeCollatesChronologically(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(50 * time.Millisecond),
		base.Add(100 * time.Millisecond),
		base.Add(120 * time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Minute),
	}

	formatted := make([]string, len(times))
	for i, ts := range times {
		formatted[i] = FormatTime(ts)
	}
	if !sort.StringsAreSorted(formatted) {
		t.Fatalf("formatted timestamps must sort chronologically: %v", formatted)
	}
}

func TestWarningIssuedOn(t *testing.T) {
	t.Parallel()

	w := Warning{CreatedAt: FormatTime(time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC))}
	if got := w.IssuedOn(); got != "2025-03-01" {
		t.Fatalf("IssuedOn() = %q", got)
	}
}
