package scheduler_test

import (
	"testing"
	"time"

	"teemixer/internal/db"
	"teemixer/internal/scheduler"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *db.Store {
	t.Helper()
	st, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestParseClock(t *testing.T) {
	hh, mm, err := scheduler.ParseClock("08:30")
	require.NoError(t, err)
	require.Equal(t, 8, hh)
	require.Equal(t, 30, mm)

	hh, mm, err = scheduler.ParseClock(" 23:59 ")
	require.NoError(t, err)
	require.Equal(t, 23, hh)
	require.Equal(t, 59, mm)

	for _, bad := range []string{"", "8", "25:00", "10:75", "ten thirty"} {
		_, _, err := scheduler.ParseClock(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestNextFire(t *testing.T) {
	from := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)

	// later the same day
	next := scheduler.NextFire(from, 8, 0)
	require.Equal(t, time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC), next)

	// already passed today, rolls to tomorrow
	next = scheduler.NextFire(from, 6, 30)
	require.Equal(t, time.Date(2026, 8, 30, 6, 30, 0, 0, time.UTC), next)

	// exactly now still rolls forward
	next = scheduler.NextFire(from, 7, 0)
	require.Equal(t, time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC), next)
}

func TestNextInvites_PerChat(t *testing.T) {
	st := openStore(t)
	sch := scheduler.New(st)
	from := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)

	// no chats yet: nothing due, re-check soon
	next, due := sch.NextInvites(from)
	require.Empty(t, due)
	require.True(t, next.After(from))

	require.NoError(t, st.UpsertChat(1, "Early Birds", 4, "08:00"))
	require.NoError(t, st.UpsertChat(2, "Twilight Nine", 4, "08:00"))
	require.NoError(t, st.UpsertChat(3, "Twilight Ten", 4, "08:00"))
	require.NoError(t, st.SetChatDailyTime(2, "16:00"))
	require.NoError(t, st.SetChatDailyTime(3, "16:00"))

	// only the early chat fires at 08:00
	next, due = sch.NextInvites(from)
	require.Equal(t, time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC), next)
	require.Equal(t, []int64{1}, due)

	// once that passed, the tied later pair is due together
	next, due = sch.NextInvites(next)
	require.Equal(t, time.Date(2026, 8, 29, 16, 0, 0, 0, time.UTC), next)
	require.ElementsMatch(t, []int64{2, 3}, due)
}

func TestNextInvites_MalformedTimeFallsBack(t *testing.T) {
	st := openStore(t)
	sch := scheduler.New(st)
	require.NoError(t, st.UpsertChat(1, "Swindle", 4, "08:00"))
	require.NoError(t, st.SetChatDailyTime(1, "late-ish"))

	from := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	next, due := sch.NextInvites(from)
	require.Equal(t, time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC), next)
	require.Equal(t, []int64{1}, due)
}
