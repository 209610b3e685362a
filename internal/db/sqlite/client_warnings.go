package sqlite

import (
	"context"
	"time"

	"github.com/wardenbot/warden/internal/db"
)

func (c *sqliteClient) AddWarning(ctx context.Context, warning *db.Warning) (*db.Warning, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !warning.Kind.Valid() {
		return nil, db.ErrInvalidKind
	}
	if warning.CreatedAt == "" {
		warning.CreatedAt = db.FormatTime(time.Now())
	}

	query := `
		INSERT INTO warnings (chat_id, user_id, user_name, kind, reason, issued_by_id, issued_by_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := c.db.ExecContext(ctx, query,
		warning.ChatID,
		warning.UserID,
		warning.UserName,
		warning.Kind,
		warning.Reason,
		warning.IssuedByID,
		warning.IssuedByName,
		warning.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		warning.ID = id
	}
	return warning, nil
}

func (c *sqliteClient) GetWarnings(ctx context.Context, chatID, userID int64) ([]*db.Warning, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var warnings []*db.Warning
	err := c.db.SelectContext(ctx, &warnings, `
		SELECT id, chat_id, user_id, user_name, kind, reason, issued_by_id, issued_by_name, created_at
		FROM warnings
		WHERE chat_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC
	`, chatID, userID)
	return warnings, err
}

func (c *sqliteClient) GetCounts(ctx context.Context, chatID, userID int64) (db.Counts, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var counts db.Counts
	err := c.db.GetContext(ctx, &counts, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'standard' THEN 1 ELSE 0 END), 0) AS standard_count,
			COALESCE(SUM(CASE WHEN kind = 'severe' THEN 1 ELSE 0 END), 0) AS severe_count
		FROM warnings
		WHERE chat_id = ? AND user_id = ?
	`, chatID, userID)
	return counts, err
}

func (c *sqliteClient) GetChatSummary(ctx context.Context, chatID int64) ([]*db.UserCounts, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var summary []*db.UserCounts
	err := c.db.SelectContext(ctx, &summary, `
		SELECT user_id,
			COALESCE(MAX(user_name), '') AS user_name,
			SUM(CASE WHEN kind = 'standard' THEN 1 ELSE 0 END) AS standard_count,
			SUM(CASE WHEN kind = 'severe' THEN 1 ELSE 0 END) AS severe_count
		FROM warnings
		WHERE chat_id = ?
		GROUP BY user_id
		ORDER BY standard_count + severe_count DESC, severe_count DESC, user_id ASC
	`, chatID)
	return summary, err
}

// AmnestyPartial deletes up to count most recent records in one statement,
// so there is no read-then-delete window.
func (c *sqliteClient) AmnestyPartial(ctx context.Context, chatID, userID int64, count int, scope db.AmnestyScope) (int64, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var (
		query string
		args  []any
	)
	switch scope {
	case db.ScopeStandard, db.ScopeSevere:
		query = `
			DELETE FROM warnings
			WHERE id IN (
				SELECT id FROM warnings
				WHERE chat_id = ? AND user_id = ? AND kind = ?
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			)
		`
		args = []any{chatID, userID, string(scope), count}
	default:
		query = `
			DELETE FROM warnings
			WHERE id IN (
				SELECT id FROM warnings
				WHERE chat_id = ? AND user_id = ?
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			)
		`
		args = []any{chatID, userID, count}
	}

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *sqliteClient) AmnestyFull(ctx context.Context, chatID, userID int64) (int64, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	res, err := c.db.ExecContext(ctx, `DELETE FROM warnings WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
