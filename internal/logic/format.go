package logic

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatResult renders the published report: a title, a totals line, then
// one block per group with its name, average handicap and member list.
// Pure string building; identical inputs produce identical output.
func FormatResult(groups Groups, names []string, total int) string {
	var sb strings.Builder
	sb.WriteString("Tee-off groups\n")
	fmt.Fprintf(&sb, "%d players in %d groups\n\n", total, len(groups))
	for i, g := range groups {
		name := fmt.Sprintf("Group %d", i+1)
		if i < len(names) {
			name = names[i]
		}
		if avg, ok := AverageHandicap(g); ok {
			fmt.Fprintf(&sb, "%s (avg hcp %.1f)\n", name, avg)
		} else {
			sb.WriteString(name)
			sb.WriteString("\n")
		}
		members := make([]string, 0, len(g.Members))
		for _, p := range g.Members {
			if p.Handicap != nil {
				members = append(members, fmt.Sprintf("%s (%s)", p.Name, strconv.FormatFloat(*p.Handicap, 'g', -1, 64)))
			} else {
				members = append(members, p.Name)
			}
		}
		sb.WriteString(strings.Join(members, ", "))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
