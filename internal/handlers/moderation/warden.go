package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/wardenbot/warden/internal/bot"
	"github.com/wardenbot/warden/internal/db"
	"github.com/wardenbot/warden/internal/i18n"
	"github.com/wardenbot/warden/internal/infrastructure/telegram"
	"github.com/wardenbot/warden/internal/observability"
	"github.com/wardenbot/warden/internal/policy/permissions"
)

const maxListedWarnings = 20

type moderationStore interface {
	AddWarning(ctx context.Context, warning *db.Warning) (*db.Warning, error)
	GetWarnings(ctx context.Context, chatID, userID int64) ([]*db.Warning, error)
	GetCounts(ctx context.Context, chatID, userID int64) (db.Counts, error)
	GetChatSummary(ctx context.Context, chatID int64) ([]*db.UserCounts, error)
	AmnestyPartial(ctx context.Context, chatID, userID int64, count int, scope db.AmnestyScope) (int64, error)
	AmnestyFull(ctx context.Context, chatID, userID int64) (int64, error)
	UpsertParticipant(ctx context.Context, participant *db.Participant) error
	FindParticipantByHandle(ctx context.Context, chatID int64, handleLower string) (*db.Participant, error)
}

type messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Warden tracks reprimands: operators on the allow-list issue, list and
// revoke warnings; chat admin status gates every mutating command.
type Warden struct {
	store moderationStore
	guard *permissions.Guard
	msgr  messenger
	lang  string
}

func NewWarden(s bot.Service, guard *permissions.Guard) *Warden {
	return &Warden{
		store: s.GetDB(),
		guard: guard,
		msgr:  telegram.NewOperations(s.GetBot()),
		lang:  s.GetLanguage(),
	}
}

// Commands returns the command menu to register with the platform.
func (h *Warden) Commands() []api.BotCommand {
	return []api.BotCommand{
		{Command: "help", Description: h.t("Help")},
		{Command: "warn", Description: h.t("Warn (reply/@user)")},
		{Command: "hardwarn", Description: h.t("Severe warning (reply/@user)")},
		{Command: "warns", Description: h.t("Show warnings")},
		{Command: "allwarns", Description: h.t("Chat-wide warning summary")},
		{Command: "amnesty", Description: h.t("Amnesty N [standard|severe|all] @user")},
		{Command: "fullamnesty", Description: h.t("Full amnesty @user")},
	}
}

func (h *Warden) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil || u.Message == nil || chat == nil {
		return true, nil
	}
	msg := u.Message
	if !msg.IsCommand() {
		return true, nil
	}

	command := msg.Command()
	entry := h.getLogEntry().WithField("command", command)
	switch command {
	case "start", "help", "warn", "hardwarn", "warns", "allwarns", "amnesty", "fullamnesty":
	default:
		entry.Debug("unknown command")
		return true, nil
	}

	if user == nil || !h.guard.IsAllowed(user.ID) {
		observability.RecordCommand(command, "denied")
		h.reply(ctx, chat.ID, h.t("Access denied."))
		return false, nil
	}

	h.trackParticipants(ctx, msg)

	var err error
	switch command {
	case "start":
		err = h.handleStart(ctx, msg)
	case "help":
		err = h.handleHelp(ctx, msg)
	case "warn":
		err = h.handleWarn(ctx, msg, db.WarningKindStandard)
	case "hardwarn":
		err = h.handleWarn(ctx, msg, db.WarningKindSevere)
	case "warns":
		err = h.handleWarns(ctx, msg)
	case "allwarns":
		err = h.handleAllWarns(ctx, msg)
	case "amnesty":
		err = h.handleAmnesty(ctx, msg)
	case "fullamnesty":
		err = h.handleFullAmnesty(ctx, msg)
	}
	if err != nil {
		observability.RecordCommand(command, "error")
		entry.WithError(err).Error("command failed")
		return false, err
	}
	observability.RecordCommand(command, "handled")
	return false, nil
}

func (h *Warden) handleStart(ctx context.Context, msg *api.Message) error {
	h.reply(ctx, msg.Chat.ID, strings.Join([]string{
		h.t("Hello! I keep track of reprimands."),
		h.t("Add me to a group and grant me admin rights."),
		h.t("Help: /help"),
	}, "\n"))
	return nil
}

func (h *Warden) handleHelp(ctx context.Context, msg *api.Message) error {
	h.reply(ctx, msg.Chat.ID, strings.Join([]string{
		h.t("<b>Commands:</b>"),
		h.t("• /warn [reason] @user — warn the target (or reply to a message)"),
		h.t("• /hardwarn [reason] @user — severe warning"),
		h.t("• /warns [@user] — show warnings for the target or yourself"),
		h.t("• /allwarns — chat-wide summary"),
		h.t("• /amnesty N [standard|severe|all] @user — remove up to N warnings"),
		h.t("• /fullamnesty @user — remove all warnings"),
		"",
		h.t("<i>Only chat administrators can issue or lift warnings.</i>"),
	}, "\n"))
	return nil
}

func (h *Warden) handleWarn(ctx context.Context, msg *api.Message, kind db.WarningKind) error {
	denial := h.t("Only chat administrators can issue warnings.")
	prompt := h.t("Who should be warned? Reply to a message or mention @username.")
	issued := h.t("Warning issued: %s")
	if kind == db.WarningKindSevere {
		denial = h.t("Only chat administrators can issue severe warnings.")
		prompt = h.t("Who gets a severe warning? Reply to a message or mention @username.")
		issued = h.t("Severe warning issued: %s")
	}

	if !h.requireGroupAdmin(ctx, msg, denial) {
		return nil
	}
	target := h.resolveTarget(ctx, msg)
	if target == nil {
		h.reply(ctx, msg.Chat.ID, prompt)
		return nil
	}

	reason := cleanReason(msg.CommandArguments())
	warning := &db.Warning{
		ChatID:       msg.Chat.ID,
		UserID:       target.ID,
		UserName:     target.DisplayName,
		Kind:         kind,
		Reason:       reason,
		IssuedByID:   sql.NullInt64{Int64: msg.From.ID, Valid: true},
		IssuedByName: sql.NullString{String: bot.GetFullName(msg.From), Valid: true},
	}
	if _, err := h.store.AddWarning(ctx, warning); err != nil {
		return err
	}
	observability.RecordWarningIssued(string(kind))

	text := fmt.Sprintf(issued, userLink(target.ID, target.DisplayName))
	if reason != "" {
		text += "\n" + fmt.Sprintf(h.t("Reason: %s"), reason)
	}
	h.reply(ctx, msg.Chat.ID, text)
	return nil
}

func (h *Warden) handleWarns(ctx context.Context, msg *api.Message) error {
	target := h.resolveTarget(ctx, msg)
	if target == nil {
		target = &ResolvedTarget{ID: msg.From.ID, DisplayName: displayName(msg.From)}
	}

	warnings, err := h.store.GetWarnings(ctx, msg.Chat.ID, target.ID)
	if err != nil {
		return err
	}
	counts, err := h.store.GetCounts(ctx, msg.Chat.ID, target.ID)
	if err != nil {
		return err
	}

	link := userLink(target.ID, target.DisplayName)
	if len(warnings) == 0 {
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf(h.t("No warnings for %s."), link))
		return nil
	}

	lines := []string{
		fmt.Sprintf(h.t("Warnings for %s:"), link),
		fmt.Sprintf(h.t("Standard: <b>%d</b> | Severe: <b>%d</b>"), counts.Standard, counts.Severe),
		"— — —",
	}
	for i, warning := range warnings {
		if i == maxListedWarnings {
			break
		}
		tag := h.t("Standard")
		if warning.Kind == db.WarningKindSevere {
			tag = h.t("Severe")
		}
		var who string
		if warning.IssuedByName.Valid && warning.IssuedByName.String != "" {
			who = fmt.Sprintf(h.t(" from %s"), warning.IssuedByName.String)
		}
		var why string
		if warning.Reason != "" {
			why = " — " + warning.Reason
		}
		lines = append(lines, fmt.Sprintf("%d) %s%s (%s)%s", i+1, tag, who, warning.IssuedOn(), why))
	}
	if omitted := len(warnings) - maxListedWarnings; omitted > 0 {
		lines = append(lines, fmt.Sprintf(h.t("…and %d more entries"), omitted))
	}
	h.reply(ctx, msg.Chat.ID, strings.Join(lines, "\n"))
	return nil
}

func (h *Warden) handleAllWarns(ctx context.Context, msg *api.Message) error {
	summary, err := h.store.GetChatSummary(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		h.reply(ctx, msg.Chat.ID, h.t("No warnings in this chat yet."))
		return nil
	}

	lines := []string{h.t("<b>Warning summary for this chat:</b>")}
	for _, userCounts := range summary {
		name := userCounts.UserName
		if name == "" {
			name = "user"
		}
		lines = append(lines, fmt.Sprintf(
			h.t("%s — total: <b>%d</b> (standard: %d, severe: %d)"),
			userLink(userCounts.UserID, name), userCounts.Total(), userCounts.Standard, userCounts.Severe,
		))
	}
	h.reply(ctx, msg.Chat.ID, strings.Join(lines, "\n"))
	return nil
}

func (h *Warden) handleAmnesty(ctx context.Context, msg *api.Message) error {
	if !h.requireGroupAdmin(ctx, msg, h.t("Only chat administrators can grant amnesty.")) {
		return nil
	}
	target := h.resolveTarget(ctx, msg)
	if target == nil {
		h.reply(ctx, msg.Chat.ID, h.t("Who gets amnesty? Reply to a message or mention @username."))
		return nil
	}

	count, scope, ok := parseAmnestyArgs(msg.CommandArguments())
	if !ok {
		h.reply(ctx, msg.Chat.ID, strings.Join([]string{
			h.t("Invalid arguments."),
			h.t("Examples:"),
			"/amnesty 2 @user",
			"/amnesty 3 standard @user",
			"/amnesty 1 severe @user",
		}, "\n"))
		return nil
	}

	removed, err := h.store.AmnestyPartial(ctx, msg.Chat.ID, target.ID, count, scope)
	if err != nil {
		return err
	}
	observability.RecordWarningsRevoked(removed)

	counts, err := h.store.GetCounts(ctx, msg.Chat.ID, target.ID)
	if err != nil {
		return err
	}
	h.reply(ctx, msg.Chat.ID, strings.Join([]string{
		fmt.Sprintf(h.t("Amnesty applied to %s: up to %d removed (%s)."), userLink(target.ID, target.DisplayName), count, scope),
		fmt.Sprintf(h.t("Remaining — standard: <b>%d</b>, severe: <b>%d</b>."), counts.Standard, counts.Severe),
	}, "\n"))
	return nil
}

func (h *Warden) handleFullAmnesty(ctx context.Context, msg *api.Message) error {
	if !h.requireGroupAdmin(ctx, msg, h.t("Only chat administrators can grant amnesty.")) {
		return nil
	}
	target := h.resolveTarget(ctx, msg)
	if target == nil {
		h.reply(ctx, msg.Chat.ID, h.t("Who gets full amnesty? Reply to a message or mention @username."))
		return nil
	}

	removed, err := h.store.AmnestyFull(ctx, msg.Chat.ID, target.ID)
	if err != nil {
		return err
	}
	observability.RecordWarningsRevoked(removed)

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf(h.t("Full amnesty applied to %s."), userLink(target.ID, target.DisplayName)))
	return nil
}

// parseAmnestyArgs parses "<count> [standard|severe|all]" after stripping
// @handle tokens. The original warn/hard keywords are accepted as aliases.
func parseAmnestyArgs(args string) (int, db.AmnestyScope, bool) {
	fields := strings.Fields(handlePattern.ReplaceAllString(args, ""))
	if len(fields) == 0 {
		return 0, db.ScopeAll, false
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count <= 0 {
		return 0, db.ScopeAll, false
	}
	scope := db.ScopeAll
	if len(fields) >= 2 {
		switch strings.ToLower(fields[1]) {
		case "standard", "warn":
			scope = db.ScopeStandard
		case "severe", "hard":
			scope = db.ScopeSevere
		case "all":
			scope = db.ScopeAll
		}
	}
	return count, scope, true
}

// requireGroupAdmin enforces the group-only and admin gates for mutating
// commands, replying on failure.
func (h *Warden) requireGroupAdmin(ctx context.Context, msg *api.Message, denial string) bool {
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		h.reply(ctx, msg.Chat.ID, h.t("This command is intended for groups and supergroups."))
		return false
	}
	if msg.From == nil || !h.guard.IsAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, denial)
		return false
	}
	return true
}

// trackParticipants refreshes the directory from the sender and the reply
// author. A passive cache: failures are logged and otherwise ignored.
func (h *Warden) trackParticipants(ctx context.Context, msg *api.Message) {
	for _, user := range []*api.User{msg.From, replyAuthor(msg)} {
		if user == nil {
			continue
		}
		if err := h.store.UpsertParticipant(ctx, participantFromUser(msg.Chat.ID, user)); err != nil {
			h.getLogEntry().WithError(err).WithField("user_id", user.ID).Error("cant upsert participant")
		}
	}
}

func replyAuthor(msg *api.Message) *api.User {
	if msg.ReplyToMessage == nil {
		return nil
	}
	return msg.ReplyToMessage.From
}

func participantFromUser(chatID int64, user *api.User) *db.Participant {
	return &db.Participant{
		ChatID:    chatID,
		UserID:    user.ID,
		Username:  nullable(user.UserName),
		FirstName: nullable(user.FirstName),
		LastName:  nullable(user.LastName),
	}
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var nameEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// userLink renders a tappable user reference for HTML parse mode.
func userLink(userID int64, name string) string {
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, nameEscaper.Replace(name))
}

func (h *Warden) reply(ctx context.Context, chatID int64, text string) {
	if err := h.msgr.SendMessage(ctx, chatID, text); err != nil {
		h.getLogEntry().WithError(err).Error("cant send reply")
	}
}

func (h *Warden) t(key string) string {
	return i18n.Get(key, h.lang)
}

func (h *Warden) getLogEntry() *log.Entry {
	return log.WithField("context", "moderation")
}
