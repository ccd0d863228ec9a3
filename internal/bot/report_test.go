package bot

import (
	"database/sql"
	"strings"
	"testing"

	"teemixer/internal/db"
	"teemixer/internal/logic"

	"github.com/stretchr/testify/require"
)

func TestPlayersFromRoster(t *testing.T) {
	entries := []db.RosterEntry{
		{UserID: 1, DisplayName: "Alice", Handicap: sql.NullFloat64{Float64: 9.5, Valid: true}, Division: "A"},
		{UserID: 2, Username: "bob", Division: "-"},
		{UserID: 3, Division: "weird"},
	}

	players := playersFromRoster(entries)
	require.Len(t, players, 3)

	require.Equal(t, "Alice", players[0].Name)
	require.NotNil(t, players[0].Handicap)
	require.InDelta(t, 9.5, *players[0].Handicap, 1e-9)
	require.Equal(t, logic.DivisionA, players[0].Division)

	require.Equal(t, "@bob", players[1].Name)
	require.Nil(t, players[1].Handicap)
	require.Equal(t, logic.DivisionNone, players[1].Division)

	require.Equal(t, "id:3", players[2].Name)
	require.Equal(t, logic.DivisionNone, players[2].Division)
}

func TestRosterTable(t *testing.T) {
	entries := []db.RosterEntry{
		{UserID: 1, DisplayName: "Alice", Handicap: sql.NullFloat64{Float64: 12, Valid: true}, Division: "A"},
		{UserID: 2, DisplayName: "Bob", Division: "-"},
	}

	out := rosterTable(entries)
	for _, want := range []string{"PLAYER", "HCP", "DIV", "Alice", "12", "Bob"} {
		require.True(t, strings.Contains(strings.ToUpper(out), strings.ToUpper(want)), "missing %q in:\n%s", want, out)
	}
}
