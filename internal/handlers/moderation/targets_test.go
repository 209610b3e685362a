package moderation

import (
	"context"
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/wardenbot/warden/internal/policy/permissions"
)

func TestCleanReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args string
		want string
	}{
		{name: "strips-handles", args: "spam @alice @bob", want: "spam"},
		{name: "keeps-plain-text", args: "late again", want: "late again"},
		{name: "empty", args: "", want: ""},
		{name: "handle-only", args: "@alice", want: ""},
		{name: "leading-handle", args: "@alice flooding", want: "flooding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cleanReason(tt.args); got != tt.want {
				t.Fatalf("cleanReason(%q) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestLastMentionHandleUsesUTF16Offsets(t *testing.T) {
	t.Parallel()

	// Each flame emoji occupies two UTF-16 code units, so byte- or
	// rune-based slicing would cut the entities in the wrong place.
	text := "🔥🔥 see @alice and @bob"
	msg := &api.Message{
		Text: text,
		Entities: []api.MessageEntity{
			{Type: "mention", Offset: 9, Length: 6},
			{Type: "mention", Offset: 20, Length: 4},
		},
	}

	if got := lastMentionHandle(msg); got != "bob" {
		t.Fatalf("lastMentionHandle() = %q, want %q", got, "bob")
	}
}

func TestLastMentionHandleIgnoresNonMentionEntities(t *testing.T) {
	t.Parallel()

	msg := &api.Message{
		Text: "/warn @alice",
		Entities: []api.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 5},
			{Type: "mention", Offset: 6, Length: 6},
		},
	}
	if got := lastMentionHandle(msg); got != "alice" {
		t.Fatalf("lastMentionHandle() = %q, want %q", got, "alice")
	}

	noMentions := &api.Message{
		Text: "/warn @alice",
		Entities: []api.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 5},
		},
	}
	if got := lastMentionHandle(noMentions); got != "" {
		t.Fatalf("a bare @token without a mention entity must not resolve, got %q", got)
	}
}

func TestLastMentionHandleReadsCaption(t *testing.T) {
	t.Parallel()

	msg := &api.Message{
		Caption: "cc @carol",
		CaptionEntities: []api.MessageEntity{
			{Type: "mention", Offset: 3, Length: 6},
		},
	}
	if got := lastMentionHandle(msg); got != "carol" {
		t.Fatalf("lastMentionHandle() = %q, want %q", got, "carol")
	}
}

func TestResolveTargetPrecedence(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seedParticipant(1, 300, "alice", "Alice", "")
	h := &Warden{store: store, guard: permissions.NewGuard(nil, nil)}

	reply := &api.Message{From: &api.User{ID: 200, FirstName: "Bob"}}
	msg := &api.Message{
		Chat:           api.Chat{ID: 1},
		ReplyToMessage: reply,
		Text:           "/warn @alice",
		Entities: []api.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 5},
			{Type: "mention", Offset: 6, Length: 6},
		},
	}

	target := h.resolveTarget(context.Background(), msg)
	if target == nil || target.ID != 200 {
		t.Fatalf("reply author must beat the plain mention, got %#v", target)
	}
	if target.DisplayName != "Bob" {
		t.Fatalf("unexpected display name: %q", target.DisplayName)
	}
}

func TestResolveTargetTextMentionBeatsPlainMention(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seedParticipant(1, 300, "alice", "Alice", "")
	h := &Warden{store: store, guard: permissions.NewGuard(nil, nil)}

	msg := &api.Message{
		Chat: api.Chat{ID: 1},
		Text: "/warn Dave @alice",
		Entities: []api.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 5},
			{Type: "text_mention", Offset: 6, Length: 4, User: &api.User{ID: 400, FirstName: "Dave"}},
			{Type: "mention", Offset: 11, Length: 6},
		},
	}

	target := h.resolveTarget(context.Background(), msg)
	if target == nil || target.ID != 400 {
		t.Fatalf("resolved mention must beat the plain mention, got %#v", target)
	}
}

func TestResolveTargetPlainMentionNeedsDirectoryEntry(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seedParticipant(2, 300, "alice", "Alice", "")
	h := &Warden{store: store, guard: permissions.NewGuard(nil, nil)}

	msg := &api.Message{
		Chat: api.Chat{ID: 1},
		Text: "/warn @alice",
		Entities: []api.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 5},
			{Type: "mention", Offset: 6, Length: 6},
		},
	}

	// alice was seen in chat 2, not chat 1.
	if target := h.resolveTarget(context.Background(), msg); target != nil {
		t.Fatalf("handle sighted in another chat must not resolve, got %#v", target)
	}

	msg.Chat = api.Chat{ID: 2}
	target := h.resolveTarget(context.Background(), msg)
	if target == nil || target.ID != 300 {
		t.Fatalf("handle must resolve in the chat where it was seen, got %#v", target)
	}
}

func TestResolveTargetMentionIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seedParticipant(1, 300, "alice", "Alice", "")
	h := &Warden{store: store, guard: permissions.NewGuard(nil, nil)}

	msg := &api.Message{
		Chat: api.Chat{ID: 1},
		Text: "/warn @Alice",
		Entities: []api.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 5},
			{Type: "mention", Offset: 6, Length: 6},
		},
	}

	target := h.resolveTarget(context.Background(), msg)
	if target == nil || target.ID != 300 {
		t.Fatalf("mixed-case mention must resolve, got %#v", target)
	}
}

func TestParseAmnestyArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      string
		wantCount int
		wantScope string
		wantOK    bool
	}{
		{name: "count-only", args: "2 @user", wantCount: 2, wantScope: "all", wantOK: true},
		{name: "standard-scope", args: "3 standard @user", wantCount: 3, wantScope: "standard", wantOK: true},
		{name: "severe-alias", args: "1 hard @user", wantCount: 1, wantScope: "severe", wantOK: true},
		{name: "warn-alias", args: "4 warn", wantCount: 4, wantScope: "standard", wantOK: true},
		{name: "unknown-scope-defaults-to-all", args: "2 oops @user", wantCount: 2, wantScope: "all", wantOK: true},
		{name: "non-numeric", args: "two @user", wantOK: false},
		{name: "zero", args: "0 @user", wantOK: false},
		{name: "negative", args: "-3 @user", wantOK: false},
		{name: "empty", args: "@user", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			count, scope, ok := parseAmnestyArgs(tt.args)
			if ok != tt.wantOK {
				t.Fatalf("parseAmnestyArgs(%q) ok = %v, want %v", tt.args, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if count != tt.wantCount || string(scope) != tt.wantScope {
				t.Fatalf("parseAmnestyArgs(%q) = (%d, %s), want (%d, %s)", tt.args, count, scope, tt.wantCount, tt.wantScope)
			}
		})
	}
}
