package db_test

import (
	"context"
	"testing"
	"time"

	"teemixer/internal/db"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *db.Store {
	t.Helper()
	st, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStore_ChatDailyTimes(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.UpsertChat(10, "Morning Swindle", 4, "08:00"))
	require.NoError(t, st.UpsertChat(20, "Twilight Nine", 4, "08:00"))

	// changing one chat's invite time leaves the other untouched
	require.NoError(t, st.SetChatDailyTime(20, "16:30"))
	invites, err := st.ChatInviteTimes()
	require.NoError(t, err)
	require.Equal(t, []db.ChatInvite{
		{ChatID: 10, DailyTime: "08:00"},
		{ChatID: 20, DailyTime: "16:30"},
	}, invites)

	// a re-add keeps the tuned time
	require.NoError(t, st.UpsertChat(20, "Twilight Nine v2", 4, "08:00"))
	invites, err = st.ChatInviteTimes()
	require.NoError(t, err)
	require.Equal(t, "16:30", invites[1].DailyTime)
}

func TestStore_Token(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.UpsertToken("abc"))
	require.NoError(t, st.UpsertToken("def"))
	got, err := st.GetToken()
	require.NoError(t, err)
	require.Equal(t, "def", got)
}

func TestStore_ChatSettings(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.UpsertChat(10, "Saturday Swindle", 3, "07:30"))

	size, mode, err := st.ChatSettings(10)
	require.NoError(t, err)
	require.Equal(t, 3, size)
	require.Equal(t, "random", mode)

	require.NoError(t, st.SetGroupSize(10, 4))
	require.NoError(t, st.SetSplitMode(10, "handicap"))

	// a re-add with a new title keeps the tuned settings
	require.NoError(t, st.UpsertChat(10, "Sunday Swindle", 3, "07:30"))
	size, mode, err = st.ChatSettings(10)
	require.NoError(t, err)
	require.Equal(t, 4, size)
	require.Equal(t, "handicap", mode)

	ids, err := st.ListChatIDs()
	require.NoError(t, err)
	require.Equal(t, []int64{10}, ids)
}

func TestStore_SessionLifecycle(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.UpsertChat(10, "Swindle", 4, "08:00"))

	deadline := time.Now().UTC().Add(30 * time.Minute)
	id, err := st.CreateOrGetTodaySession(10, "2026-08-29", deadline)
	require.NoError(t, err)

	again, err := st.CreateOrGetTodaySession(10, "2026-08-29", deadline.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, id, again)

	open, err := st.SessionOpen(id, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, open)

	open, err = st.SessionOpen(id, deadline.Add(2*time.Hour))
	require.NoError(t, err)
	require.False(t, open)

	require.NoError(t, st.SetInviteMessageID(id, 77))
	gotID, inviteID, err := st.GetSessionByChatDate(10, "2026-08-29")
	require.NoError(t, err)
	require.Equal(t, id, gotID)
	require.True(t, inviteID.Valid)
	require.EqualValues(t, 77, inviteID.Int64)
}

func TestStore_CloseAndCollect(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.UpsertChat(10, "Swindle", 4, "08:00"))

	hcp := 12.5
	require.NoError(t, st.SetHandicap(10, 100, "Alice", &hcp))
	require.NoError(t, st.SetDivision(10, 100, "Alice", "A"))

	deadline := time.Now().UTC().Add(-time.Minute)
	id, err := st.CreateOrGetTodaySession(10, "2026-08-29", deadline)
	require.NoError(t, err)

	require.NoError(t, st.AddParticipant(id, 100, "alice", "Alice"))
	require.NoError(t, st.AddParticipant(id, 200, "bob", "Bob"))
	// duplicate join is a no-op
	require.NoError(t, st.AddParticipant(id, 100, "alice", "Alice"))

	in, err := st.IsParticipant(id, 100)
	require.NoError(t, err)
	require.True(t, in)

	due, err := st.GetOpenSessionsToClose(time.Now().UTC())
	require.NoError(t, err)
	require.Contains(t, due, id)

	chatID, roster, err := st.CloseAndCollect(context.Background(), id)
	require.NoError(t, err)
	require.EqualValues(t, 10, chatID)
	require.Len(t, roster, 2)

	require.EqualValues(t, 100, roster[0].UserID)
	require.True(t, roster[0].Handicap.Valid)
	require.InDelta(t, 12.5, roster[0].Handicap.Float64, 1e-9)
	require.Equal(t, "A", roster[0].Division)

	require.EqualValues(t, 200, roster[1].UserID)
	require.False(t, roster[1].Handicap.Valid)
	require.Equal(t, "-", roster[1].Division)

	// a second close is rejected, and the session no longer shows as due
	_, _, err = st.CloseAndCollect(context.Background(), id)
	require.ErrorIs(t, err, db.ErrSessionClosed)

	due, err = st.GetOpenSessionsToClose(time.Now().UTC())
	require.NoError(t, err)
	require.NotContains(t, due, id)
}

func TestStore_ProfileUpdates(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.UpsertChat(10, "Swindle", 4, "08:00"))

	hcp := 18.0
	require.NoError(t, st.SetHandicap(10, 100, "Alice", &hcp))
	require.NoError(t, st.SetHandicap(10, 200, "Bob", nil))
	require.NoError(t, st.SetDivision(10, 200, "Bob", "B"))

	entries, err := st.ChatRoster(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "Alice", entries[0].DisplayName)
	require.True(t, entries[0].Handicap.Valid)
	require.Equal(t, "Bob", entries[1].DisplayName)
	require.False(t, entries[1].Handicap.Valid)
	require.Equal(t, "B", entries[1].Division)
}
