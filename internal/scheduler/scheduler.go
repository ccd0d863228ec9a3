package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"teemixer/internal/db"
)

// Scheduler drives the two recurring jobs: the per-chat signup invite and
// the closing of sessions whose deadline has passed. The actual work
// happens in the callbacks so the bot layer stays in charge of Telegram
// traffic.
type Scheduler struct {
	Store           *db.Store
	OnInviteChat    func(chatID int64)
	OnCloseSessions func(ids []int64)

	CloseInterval time.Duration
	DisableDaily  bool
}

func New(store *db.Store) *Scheduler {
	return &Scheduler{Store: store, CloseInterval: 30 * time.Second}
}

func (s *Scheduler) Start(ctx context.Context) {
	if !s.DisableDaily {
		go s.runDaily(ctx)
	}
	go s.runCloser(ctx)
}

// ParseClock parses a "HH:MM" wall-clock string.
func ParseClock(v string) (hh, mm int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, 0, fmt.Errorf("parse daily time %q: %w", v, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextFire returns the next UTC instant at hh:mm strictly after from.
func NextFire(from time.Time, hh, mm int) time.Time {
	n := time.Date(from.Year(), from.Month(), from.Day(), hh, mm, 0, 0, time.UTC)
	if !n.After(from) {
		n = n.Add(24 * time.Hour)
	}
	return n
}

// NextInvites returns the earliest upcoming invite instant after from and
// the chats due at that instant. Each chat has its own configured time; a
// missing or malformed setting falls back to 09:00. With no chats known
// yet it returns a short re-check with nothing due.
func (s *Scheduler) NextInvites(from time.Time) (time.Time, []int64) {
	invites, err := s.Store.ChatInviteTimes()
	if err != nil {
		log.Println("invite times error:", err)
	}
	if len(invites) == 0 {
		return from.Add(time.Minute), nil
	}
	var next time.Time
	var due []int64
	for _, ci := range invites {
		hh, mm := 9, 0
		if h, m, perr := ParseClock(ci.DailyTime); perr == nil {
			hh, mm = h, m
		}
		fire := NextFire(from, hh, mm)
		switch {
		case next.IsZero() || fire.Before(next):
			next = fire
			due = []int64{ci.ChatID}
		case fire.Equal(next):
			due = append(due, ci.ChatID)
		}
	}
	return next, due
}

// runDaily fires the invite callback per chat at that chat's configured
// time. A minute ticker re-reads the settings so a /time change or a newly
// added chat takes effect without a restart.
func (s *Scheduler) runDaily(ctx context.Context) {
	next, due := s.NextInvites(time.Now().UTC())
	timer := time.NewTimer(time.Until(next))
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer timer.Stop()

	rearm := func(to time.Time, chats []int64) {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		next, due = to, chats
		timer.Reset(time.Until(to))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if s.OnInviteChat != nil {
				for _, chatID := range due {
					s.OnInviteChat(chatID)
				}
			}
			rearm(s.NextInvites(time.Now().UTC()))
		case <-ticker.C:
			if wantNext, wantDue := s.NextInvites(time.Now().UTC()); !wantNext.Equal(next) || len(wantDue) != len(due) {
				rearm(wantNext, wantDue)
			}
		}
	}
}

// runCloser polls for sessions past their signup deadline.
func (s *Scheduler) runCloser(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.CloseInterval):
			ids, err := s.Store.GetOpenSessionsToClose(time.Now().UTC())
			if err != nil {
				log.Println("closer error:", err)
				continue
			}
			if len(ids) > 0 && s.OnCloseSessions != nil {
				s.OnCloseSessions(ids)
			}
		}
	}
}
