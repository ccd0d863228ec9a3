package logic

import (
	"fmt"
	"math/rand"
)

// namePool is the curated set of tee-off group names.
var namePool = []string{
	"The Albatrosses",
	"Birdie Hunters",
	"Fairway Flyers",
	"The Mulligans",
	"Sand Savers",
	"Eagle Squad",
	"Bogey Brigade",
	"Green Readers",
	"Pin Seekers",
	"The Shankers",
}

// AssignNames returns one display name per group: a random draw from the
// name pool first, then a numbered "Group N" label once the pool runs out.
func AssignNames(r *rand.Rand, count int) []string {
	pool := Shuffle(r, namePool)
	names := make([]string, count)
	for i := range names {
		if i < len(pool) {
			names[i] = pool[i]
		} else {
			names[i] = fmt.Sprintf("Group %d", i+1)
		}
	}
	return names
}
