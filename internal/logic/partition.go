package logic

import (
	"math/rand"
	"sort"
	"strings"
)

// Mode selects the partitioning strategy for a split.
type Mode int

const (
	// ModeRandom shuffles the roster and slices it into consecutive groups.
	ModeRandom Mode = iota
	// ModeDivision deals each division bucket round-robin across the groups
	// to approximate divisional balance.
	ModeDivision
	// ModeHandicap snake-drafts players sorted by handicap so cumulative
	// handicaps stay close across groups.
	ModeHandicap
)

func (m Mode) String() string {
	switch m {
	case ModeRandom:
		return "random"
	case ModeDivision:
		return "division"
	case ModeHandicap:
		return "handicap"
	}
	return "unknown"
}

// ParseMode maps user input to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random":
		return ModeRandom, nil
	case "division":
		return ModeDivision, nil
	case "handicap":
		return ModeHandicap, nil
	}
	return ModeRandom, ErrUnknownMode
}

// Partition splits players into tee-off groups of roughly groupSize members.
// The input slice is never mutated and every player ends up in exactly one
// group. An empty roster yields an empty partition; whether that is an error
// is the caller's call.
func Partition(r *rand.Rand, players []Player, groupSize int, mode Mode) (Groups, error) {
	if groupSize < 1 {
		return nil, ErrInvalidGroupSize
	}
	if len(players) == 0 {
		return Groups{}, nil
	}
	switch mode {
	case ModeRandom:
		return randomSplit(r, players, groupSize), nil
	case ModeDivision:
		return divisionSplit(r, players, groupSize), nil
	case ModeHandicap:
		return handicapSplit(players, groupSize), nil
	}
	return nil, ErrUnknownMode
}

func groupCount(n, size int) int {
	return (n + size - 1) / size
}

// randomSplit shuffles the roster and slices it into consecutive chunks of
// size members. When the trailing chunk would leave the group sizes spread
// by more than one member, its members are folded round-robin into the
// earlier groups, starting at group 0, and the chunk is dropped.
func randomSplit(r *rand.Rand, players []Player, size int) Groups {
	shuffled := Shuffle(r, players)
	var groups Groups
	for i := 0; i < len(shuffled); i += size {
		end := i + size
		if end > len(shuffled) {
			end = len(shuffled)
		}
		groups = append(groups, Group{Members: append([]Player(nil), shuffled[i:end]...)})
	}
	last := groups[len(groups)-1]
	if len(groups) > 1 && size-len(last.Members) > 1 {
		groups = groups[:len(groups)-1]
		for i, p := range last.Members {
			g := i % len(groups)
			groups[g].Members = append(groups[g].Members, p)
		}
	}
	return groups
}

// divisionSplit buckets players by division (A, then B, then none),
// shuffles each bucket and deals it round-robin across the groups. Every
// bucket's cursor starts at group 0, so early groups can end up larger when
// bucket sizes are not multiples of the group count.
func divisionSplit(r *rand.Rand, players []Player, size int) Groups {
	buckets := make(map[Division][]Player)
	for _, p := range players {
		buckets[p.Division] = append(buckets[p.Division], p)
	}
	n := groupCount(len(players), size)
	groups := make(Groups, n)
	for _, d := range []Division{DivisionA, DivisionB, DivisionNone} {
		for i, p := range Shuffle(r, buckets[d]) {
			groups[i%n].Members = append(groups[i%n].Members, p)
		}
	}
	return groups
}

// handicapSplit sorts players by handicap, strongest first, with unknown
// handicaps last, then deals them in snake order: 0..n-1, then n-1..0, and
// so on. Equal handicaps keep their input order so the result is stable.
func handicapSplit(players []Player, size int) Groups {
	sorted := append([]Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Handicap, sorted[j].Handicap
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	n := groupCount(len(sorted), size)
	groups := make(Groups, n)
	idx, dir := 0, 1
	for _, p := range sorted {
		groups[idx].Members = append(groups[idx].Members, p)
		if next := idx + dir; next < 0 || next >= n {
			dir = -dir
		} else {
			idx = next
		}
	}
	return groups
}
