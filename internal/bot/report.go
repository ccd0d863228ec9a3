package bot

import (
	"fmt"
	"strconv"
	"strings"

	"teemixer/internal/db"
	"teemixer/internal/logic"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// playersFromRoster converts store rows into engine players. A division the
// engine cannot parse lands in the catch-all bucket; a missing display name
// falls back to the username and then the numeric id.
func playersFromRoster(entries []db.RosterEntry) []logic.Player {
	return lo.Map(entries, func(e db.RosterEntry, _ int) logic.Player {
		p := logic.Player{ID: e.UserID, Name: entryDisplayName(e)}
		if e.Handicap.Valid {
			h := e.Handicap.Float64
			p.Handicap = &h
		}
		if d, err := logic.ParseDivision(e.Division); err == nil {
			p.Division = d
		}
		return p
	})
}

func entryDisplayName(e db.RosterEntry) string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	if e.Username != "" {
		return "@" + e.Username
	}
	return fmt.Sprintf("id:%d", e.UserID)
}

// rosterTable renders the chat's player profiles as a monospace table for a
// <pre> block.
func rosterTable(entries []db.RosterEntry) string {
	var sb strings.Builder
	tw := tablewriter.NewWriter(&sb)
	tw.SetHeader([]string{"Player", "Hcp", "Div"})
	tw.SetBorder(false)
	for _, row := range lo.Map(entries, func(e db.RosterEntry, _ int) []string {
		hcp := "-"
		if e.Handicap.Valid {
			hcp = strconv.FormatFloat(e.Handicap.Float64, 'g', -1, 64)
		}
		return []string{entryDisplayName(e), hcp, e.Division}
	}) {
		tw.Append(row)
	}
	tw.Render()
	return sb.String()
}
