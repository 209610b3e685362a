package db

import (
	"context"
	"errors"
)

var ErrInvalidKind = errors.New("invalid warning kind")

type Client interface {
	Close() error

	AddWarning(ctx context.Context, warning *Warning) (*Warning, error)
	GetWarnings(ctx context.Context, chatID, userID int64) ([]*Warning, error)
	GetCounts(ctx context.Context, chatID, userID int64) (Counts, error)
	GetChatSummary(ctx context.Context, chatID int64) ([]*UserCounts, error)
	AmnestyPartial(ctx context.Context, chatID, userID int64, count int, scope AmnestyScope) (int64, error)
	AmnestyFull(ctx context.Context, chatID, userID int64) (int64, error)

	UpsertParticipant(ctx context.Context, participant *Participant) error
	FindParticipantByHandle(ctx context.Context, chatID int64, handleLower string) (*Participant, error)
}
