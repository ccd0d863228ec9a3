package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

type Store struct {
	DB *sqlx.DB
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_fk=1", path)
	d, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := d.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	// WAL lets readers proceed during a write; a single writer connection
	// keeps SQLITE_BUSY rare.
	_, _ = d.Exec("PRAGMA journal_mode=WAL;")
	_, _ = d.Exec("PRAGMA synchronous=NORMAL;")
	d.SetMaxOpenConns(1)
	d.SetMaxIdleConns(1)
	d.SetConnMaxLifetime(0)

	st := &Store{DB: d}
	if err := st.migrate(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) migrate() error {
	ddl, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := s.DB.Exec(string(ddl)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.DB.Close() }

func isLockedError(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database is busy")
}

// withBusyRetry re-runs fn with a growing pause while sqlite reports the
// database busy or locked.
func withBusyRetry(fn func() error) error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil || !isLockedError(err) {
			return err
		}
		time.Sleep(time.Duration(attempt*100) * time.Millisecond)
	}
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- credentials ---

func (s *Store) UpsertToken(token string) error {
	_, err := s.DB.Exec("INSERT INTO bot_credentials (id, token) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET token=excluded.token", token)
	return err
}

func (s *Store) GetToken() (string, error) {
	var token sql.NullString
	if err := s.DB.Get(&token, "SELECT token FROM bot_credentials WHERE id=1"); err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("no token stored")
	}
	return token.String, nil
}

// --- chats ---

// UpsertChat records a chat the bot was added to. defaultSize and
// defaultTime apply only on first insert; later title changes never reset
// the chat's settings.
func (s *Store) UpsertChat(chatID int64, title string, defaultSize int, defaultTime string) error {
	_, err := s.DB.Exec(`INSERT INTO chats (chat_id, title, group_size, daily_time) VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET title=excluded.title`, chatID, title, defaultSize, defaultTime)
	return err
}

func (s *Store) ListChatIDs() ([]int64, error) {
	var ids []int64
	if err := s.DB.Select(&ids, "SELECT chat_id FROM chats ORDER BY chat_id"); err != nil {
		return nil, err
	}
	return ids, nil
}

// ChatSettings returns the split settings for a chat.
func (s *Store) ChatSettings(chatID int64) (groupSize int, splitMode string, err error) {
	row := s.DB.QueryRowx("SELECT group_size, split_mode FROM chats WHERE chat_id=?", chatID)
	err = row.Scan(&groupSize, &splitMode)
	return
}

func (s *Store) SetGroupSize(chatID int64, size int) error {
	_, err := s.DB.Exec("UPDATE chats SET group_size=? WHERE chat_id=?", size, chatID)
	return err
}

func (s *Store) SetSplitMode(chatID int64, mode string) error {
	_, err := s.DB.Exec("UPDATE chats SET split_mode=? WHERE chat_id=?", mode, chatID)
	return err
}

func (s *Store) SetChatDailyTime(chatID int64, t string) error {
	_, err := s.DB.Exec("UPDATE chats SET daily_time=? WHERE chat_id=?", t, chatID)
	return err
}

// ChatInvite pairs a chat with its configured invite time.
type ChatInvite struct {
	ChatID    int64  `db:"chat_id"`
	DailyTime string `db:"daily_time"`
}

// ChatInviteTimes lists every chat's invite time for the daily scheduler.
func (s *Store) ChatInviteTimes() ([]ChatInvite, error) {
	var out []ChatInvite
	if err := s.DB.Select(&out, "SELECT chat_id, daily_time FROM chats ORDER BY chat_id"); err != nil {
		return nil, err
	}
	return out, nil
}

// --- sessions ---

// CreateOrGetTodaySession returns the session id for a chat and date,
// creating the row when needed and pushing the signup deadline forward.
func (s *Store) CreateOrGetTodaySession(chatID int64, date string, deadline time.Time) (int64, error) {
	deadlineUTC := deadline.UTC()
	var id int64
	err := withBusyRetry(func() error {
		if _, err := s.DB.Exec("INSERT OR IGNORE INTO daily_sessions (chat_id, session_date, signup_deadline) VALUES (?, ?, ?)", chatID, date, deadlineUTC); err != nil {
			return err
		}
		_, _ = s.DB.Exec("UPDATE daily_sessions SET signup_deadline=? WHERE chat_id=? AND session_date=? AND (signup_deadline IS NULL OR signup_deadline < ?)", deadlineUTC, chatID, date, deadlineUTC)
		return s.DB.Get(&id, "SELECT id FROM daily_sessions WHERE chat_id=? AND session_date=?", chatID, date)
	})
	if err != nil {
		return 0, fmt.Errorf("create/get session chat=%d date=%s: %w", chatID, date, err)
	}
	return id, nil
}

func (s *Store) SetInviteMessageID(sessionID int64, msgID int) error {
	_, err := s.DB.Exec("UPDATE daily_sessions SET invite_message_id=? WHERE id=?", msgID, sessionID)
	return err
}

// GetSessionByChatDate returns the session id and invite message id, if a
// session exists for the chat and date.
func (s *Store) GetSessionByChatDate(chatID int64, date string) (id int64, inviteMsgID sql.NullInt64, err error) {
	err = s.DB.QueryRowx("SELECT id, invite_message_id FROM daily_sessions WHERE chat_id=? AND session_date=?", chatID, date).Scan(&id, &inviteMsgID)
	return
}

// SessionOpen reports whether signups are still accepted at the given time.
func (s *Store) SessionOpen(id int64, now time.Time) (bool, error) {
	var closed int
	var deadline time.Time
	err := s.DB.QueryRowx("SELECT closed, COALESCE(signup_deadline, CURRENT_TIMESTAMP) FROM daily_sessions WHERE id=?", id).Scan(&closed, &deadline)
	if err != nil {
		return false, err
	}
	if closed != 0 {
		return false, nil
	}
	return !now.UTC().After(deadline.UTC()), nil
}

func (s *Store) GetOpenSessionsToClose(now time.Time) ([]int64, error) {
	var ids []int64
	if err := s.DB.Select(&ids, "SELECT id FROM daily_sessions WHERE closed=0 AND signup_deadline <= ?", now.UTC()); err != nil {
		return nil, err
	}
	return ids, nil
}

// --- participants and profiles ---

func (s *Store) AddParticipant(sessionID, userID int64, username, display string) error {
	return withBusyRetry(func() error {
		_, err := s.DB.Exec("INSERT OR IGNORE INTO participants (session_id, user_id, username, display_name) VALUES (?, ?, ?, ?)", sessionID, userID, username, display)
		return err
	})
}

func (s *Store) IsParticipant(sessionID, userID int64) (bool, error) {
	var cnt int
	err := s.DB.Get(&cnt, "SELECT COUNT(1) FROM participants WHERE session_id=? AND user_id=?", sessionID, userID)
	return cnt > 0, err
}

// RosterEntry is a signed-up player joined with their per-chat profile.
type RosterEntry struct {
	UserID      int64           `db:"user_id"`
	Username    string          `db:"username"`
	DisplayName string          `db:"display_name"`
	Handicap    sql.NullFloat64 `db:"handicap"`
	Division    string          `db:"division"`
}

const rosterQuery = `
SELECT p.user_id,
       COALESCE(p.username, '')     AS username,
       COALESCE(p.display_name, '') AS display_name,
       pl.handicap                  AS handicap,
       COALESCE(pl.division, '-')   AS division
FROM participants p
JOIN daily_sessions s ON s.id = p.session_id
LEFT JOIN players pl ON pl.chat_id = s.chat_id AND pl.user_id = p.user_id
WHERE p.session_id = ?
ORDER BY p.id`

// ErrSessionClosed is returned when a session was already closed and published.
var ErrSessionClosed = errors.New("session already closed")

// CloseAndCollect marks a session closed and returns its chat and signup
// roster in one transaction, so a concurrently firing closer cannot publish
// the same session twice.
func (s *Store) CloseAndCollect(ctx context.Context, sessionID int64) (chatID int64, roster []RosterEntry, err error) {
	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var closed int
		if err := tx.QueryRowx("SELECT chat_id, closed FROM daily_sessions WHERE id=?", sessionID).Scan(&chatID, &closed); err != nil {
			return fmt.Errorf("load session %d: %w", sessionID, err)
		}
		if closed != 0 {
			return ErrSessionClosed
		}
		if err := tx.Select(&roster, rosterQuery, sessionID); err != nil {
			return fmt.Errorf("load roster for session %d: %w", sessionID, err)
		}
		if _, err := tx.Exec("UPDATE daily_sessions SET closed=1 WHERE id=?", sessionID); err != nil {
			return fmt.Errorf("close session %d: %w", sessionID, err)
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return chatID, roster, nil
}

// UpsertProfile makes sure a player profile row exists with a fresh display name.
func (s *Store) UpsertProfile(chatID, userID int64, name string) error {
	_, err := s.DB.Exec(`INSERT INTO players (chat_id, user_id, display_name) VALUES (?, ?, ?)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET display_name=excluded.display_name`, chatID, userID, name)
	return err
}

// SetHandicap stores a player's handicap; nil clears it back to unknown.
func (s *Store) SetHandicap(chatID, userID int64, name string, handicap *float64) error {
	if err := s.UpsertProfile(chatID, userID, name); err != nil {
		return err
	}
	_, err := s.DB.Exec("UPDATE players SET handicap=? WHERE chat_id=? AND user_id=?", handicap, chatID, userID)
	return err
}

func (s *Store) SetDivision(chatID, userID int64, name, division string) error {
	if err := s.UpsertProfile(chatID, userID, name); err != nil {
		return err
	}
	_, err := s.DB.Exec("UPDATE players SET division=? WHERE chat_id=? AND user_id=?", division, chatID, userID)
	return err
}

// ChatRoster lists every profile known for a chat, for the /roster table.
func (s *Store) ChatRoster(chatID int64) ([]RosterEntry, error) {
	var entries []RosterEntry
	err := s.DB.Select(&entries, `
SELECT user_id,
       ''                        AS username,
       COALESCE(display_name,'') AS display_name,
       handicap,
       COALESCE(division,'-')    AS division
FROM players WHERE chat_id=? ORDER BY display_name`, chatID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
