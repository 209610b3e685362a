package db

import (
	"database/sql"
	"strings"
	"time"
)

type WarningKind string

const (
	WarningKindStandard WarningKind = "standard"
	WarningKindSevere   WarningKind = "severe"
)

func (k WarningKind) Valid() bool {
	return k == WarningKindStandard || k == WarningKindSevere
}

// AmnestyScope selects which kinds a partial amnesty may delete.
type AmnestyScope string

const (
	ScopeStandard AmnestyScope = "standard"
	ScopeSevere   AmnestyScope = "severe"
	ScopeAll      AmnestyScope = "all"
)

// TimeLayout is fixed-width so the TEXT column collates chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

type Warning struct {
	ID           int64          `db:"id"`
	ChatID       int64          `db:"chat_id"`
	UserID       int64          `db:"user_id"`
	UserName     string         `db:"user_name"`
	Kind         WarningKind    `db:"kind"`
	Reason       string         `db:"reason"`
	IssuedByID   sql.NullInt64  `db:"issued_by_id"`
	IssuedByName sql.NullString `db:"issued_by_name"`
	CreatedAt    string         `db:"created_at"`
}

// IssuedOn returns the date part of the creation timestamp for display.
func (w *Warning) IssuedOn() string {
	if i := strings.IndexByte(w.CreatedAt, 'T'); i > 0 {
		return w.CreatedAt[:i]
	}
	return w.CreatedAt
}

type Participant struct {
	ChatID        int64          `db:"chat_id"`
	UserID        int64          `db:"user_id"`
	Username      sql.NullString `db:"username"`
	UsernameLower sql.NullString `db:"username_lower"`
	FirstName     sql.NullString `db:"first_name"`
	LastName      sql.NullString `db:"last_name"`
	UpdatedAt     string         `db:"updated_at"`
}

// DisplayName builds "first last", falling back to "@handle", then "user".
func (p *Participant) DisplayName() string {
	parts := make([]string, 0, 2)
	if p.FirstName.Valid && p.FirstName.String != "" {
		parts = append(parts, p.FirstName.String)
	}
	if p.LastName.Valid && p.LastName.String != "" {
		parts = append(parts, p.LastName.String)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if p.Username.Valid && p.Username.String != "" {
		return "@" + p.Username.String
	}
	return "user"
}

type Counts struct {
	Standard int `db:"standard_count"`
	Severe   int `db:"severe_count"`
}

func (c Counts) Total() int {
	return c.Standard + c.Severe
}

type UserCounts struct {
	UserID   int64  `db:"user_id"`
	UserName string `db:"user_name"`
	Standard int    `db:"standard_count"`
	Severe   int    `db:"severe_count"`
}

func (c UserCounts) Total() int {
	return c.Standard + c.Severe
}
