package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"teemixer/internal/db"
	"teemixer/internal/logic"
	"teemixer/internal/messages"
	"teemixer/internal/scheduler"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	API   *tgbotapi.BotAPI
	Store *db.Store
	// Rand feeds every shuffle and draw; swapped for a fixed source in tests.
	Rand *rand.Rand

	TestMode         bool
	SignupWindow     time.Duration
	DefaultGroupSize int
	DefaultDailyTime string
}

func New(api *tgbotapi.BotAPI, store *db.Store) *Bot {
	return &Bot{
		API:              api,
		Store:            store,
		Rand:             rand.New(rand.NewSource(time.Now().UnixNano())),
		DefaultGroupSize: 4,
		DefaultDailyTime: "08:00",
	}
}

func (b *Bot) Start(ctx context.Context) {
	updates := b.API.GetUpdatesChan(tgbotapi.UpdateConfig{Timeout: 30})
	for {
		select {
		case <-ctx.Done():
			return
		case upd := <-updates:
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.MyChatMember != nil:
		b.onMyChatMember(*upd.MyChatMember)
	case upd.CallbackQuery != nil:
		b.onCallback(upd.CallbackQuery)
	case upd.Message != nil && upd.Message.IsCommand():
		b.onCommand(ctx, upd.Message)
	}
}

func (b *Bot) onMyChatMember(m tgbotapi.ChatMemberUpdated) {
	status := m.NewChatMember.Status
	if status == "member" || status == "administrator" || status == "creator" {
		b.onAddedToChat(m.Chat.ID, m.Chat.Title)
	}
}

func (b *Bot) onAddedToChat(chatID int64, title string) {
	if err := b.Store.UpsertChat(chatID, title, b.DefaultGroupSize, b.DefaultDailyTime); err != nil {
		log.Println("chat upsert error:", err)
	}
	b.reply(chatID, messages.Intro)
	if b.TestMode {
		b.SendInviteToChat(chatID)
	}
}

// SendDailyInvites posts the signup invite to every known chat.
func (b *Bot) SendDailyInvites() {
	ids, err := b.Store.ListChatIDs()
	if err != nil {
		log.Println("daily send error:", err)
		return
	}
	for _, chatID := range ids {
		b.SendInviteToChat(chatID)
	}
}

// SendInviteToChat posts the signup invite to one chat, creating today's
// session unless an invite already went out.
func (b *Bot) SendInviteToChat(chatID int64) {
	now := time.Now().UTC()
	date := now.Format("2006-01-02")
	// skip chats that already got today's invite
	if id, inviteID, err := b.Store.GetSessionByChatDate(chatID, date); err == nil && id != 0 && inviteID.Valid {
		return
	}
	window := b.SignupWindow
	if window == 0 {
		window = 30 * time.Minute
	}
	sessionID, err := b.Store.CreateOrGetTodaySession(chatID, date, now.Add(window))
	if err != nil {
		log.Println("session create error:", err)
		return
	}

	btn := tgbotapi.NewInlineKeyboardButtonData(messages.JoinButton, fmt.Sprintf("join:%d", sessionID))
	msg := tgbotapi.NewMessage(chatID, messages.DailyInvite)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn))
	resp, err := b.API.Send(msg)
	if err != nil {
		log.Println("invite send error:", err)
		return
	}
	_ = b.Store.SetInviteMessageID(sessionID, resp.MessageID)
}

func (b *Bot) onCallback(cb *tgbotapi.CallbackQuery) {
	var sessionID int64
	if _, err := fmt.Sscanf(cb.Data, "join:%d", &sessionID); err != nil {
		return
	}
	reply, err := b.joinSession(sessionID, cb.From)
	if err != nil {
		log.Println("signup error:", err)
		return
	}
	b.answerCallback(cb.ID, reply)
}

// joinSession records a signup and returns the callback acknowledgement. A
// lookup failure (including a forged or unknown session id) aborts before
// any row is written.
func (b *Bot) joinSession(sessionID int64, user *tgbotapi.User) (string, error) {
	open, err := b.Store.SessionOpen(sessionID, time.Now())
	if err != nil {
		return "", fmt.Errorf("session %d lookup: %w", sessionID, err)
	}
	if !open {
		return messages.SignupClosed, nil
	}
	in, err := b.Store.IsParticipant(sessionID, user.ID)
	if err != nil {
		return "", fmt.Errorf("session %d participant lookup: %w", sessionID, err)
	}
	if in {
		return messages.AlreadyIn, nil
	}
	if err := b.Store.AddParticipant(sessionID, user.ID, user.UserName, userDisplayName(user)); err != nil {
		return "", fmt.Errorf("session %d signup: %w", sessionID, err)
	}
	return messages.JoinedAck, nil
}

func (b *Bot) onCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	user := msg.From
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, messages.Intro)

	case "handicap":
		if args == "" {
			b.reply(chatID, messages.HandicapUsage)
			return
		}
		var handicap *float64
		note := messages.HandicapSet
		if !strings.EqualFold(args, "none") {
			if v, err := strconv.ParseFloat(args, 64); err == nil {
				handicap = &v
			} else {
				// unparsable input means "rating unknown", never a failure
				note = messages.HandicapCleared
			}
		}
		if err := b.Store.SetHandicap(chatID, user.ID, userDisplayName(user), handicap); err != nil {
			log.Println("handicap save error:", err)
			return
		}
		b.reply(chatID, note)

	case "division":
		d, err := logic.ParseDivision(args)
		if err != nil {
			b.reply(chatID, messages.DivisionUsage)
			return
		}
		if err := b.Store.SetDivision(chatID, user.ID, userDisplayName(user), d.String()); err != nil {
			log.Println("division save error:", err)
			return
		}
		b.reply(chatID, messages.DivisionSet)

	case "mode":
		mode, err := logic.ParseMode(args)
		if err != nil {
			b.reply(chatID, messages.ModeUsage)
			return
		}
		if err := b.Store.SetSplitMode(chatID, mode.String()); err != nil {
			log.Println("mode save error:", err)
			return
		}
		b.reply(chatID, messages.ModeSet)

	case "groupsize":
		size, err := strconv.Atoi(args)
		if err != nil || size < 1 {
			b.reply(chatID, messages.SizeUsage)
			return
		}
		if err := b.Store.SetGroupSize(chatID, size); err != nil {
			log.Println("size save error:", err)
			return
		}
		b.reply(chatID, messages.SizeSet)

	case "time":
		if _, _, err := scheduler.ParseClock(args); err != nil {
			b.reply(chatID, messages.TimeUsage)
			return
		}
		if err := b.Store.SetChatDailyTime(chatID, args); err != nil {
			log.Println("time save error:", err)
			return
		}
		b.reply(chatID, messages.TimeSet)

	case "split":
		date := time.Now().UTC().Format("2006-01-02")
		id, _, err := b.Store.GetSessionByChatDate(chatID, date)
		if err != nil || id == 0 {
			b.reply(chatID, messages.NoOpenSession)
			return
		}
		b.CloseAndPublish(ctx, id)

	case "roster":
		entries, err := b.Store.ChatRoster(chatID)
		if err != nil {
			log.Println("roster load error:", err)
			return
		}
		if len(entries) == 0 {
			b.reply(chatID, messages.EmptyRoster)
			return
		}
		out := tgbotapi.NewMessage(chatID, "<pre>"+rosterTable(entries)+"</pre>")
		out.ParseMode = tgbotapi.ModeHTML
		if _, err := b.API.Send(out); err != nil {
			log.Println("roster send error:", err)
		}
	}
}

// CloseAndPublish closes a signup session, draws the tee-off groups and
// posts the report to the chat.
func (b *Bot) CloseAndPublish(ctx context.Context, sessionID int64) {
	chatID, roster, err := b.Store.CloseAndCollect(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, db.ErrSessionClosed) {
			log.Println("session close error:", err)
		}
		return
	}
	players := playersFromRoster(roster)
	if len(players) == 0 {
		b.reply(chatID, messages.NoPlayers)
		return
	}

	size, modeStr, err := b.Store.ChatSettings(chatID)
	if err != nil || size < 1 {
		size = b.DefaultGroupSize
	}
	mode, err := logic.ParseMode(modeStr)
	if err != nil {
		mode = logic.ModeRandom
	}

	groups, err := logic.Partition(b.Rand, players, size, mode)
	if err != nil {
		log.Println("split error:", err)
		return
	}
	names := logic.AssignNames(b.Rand, len(groups))
	b.reply(chatID, logic.FormatResult(groups, names, len(players)))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.API.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Println("send error:", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.API.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Println("callback answer error:", err)
	}
}

func userDisplayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
	if name == "" {
		name = u.UserName
	}
	return name
}
