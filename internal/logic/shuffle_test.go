package logic_test

import (
	"math/rand"
	"testing"

	"teemixer/internal/logic"

	"github.com/stretchr/testify/require"
)

func TestShuffle_PreservesElements(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	in := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	out := logic.Shuffle(r, in)
	require.Len(t, out, len(in))
	require.ElementsMatch(t, in, out)
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	in := []string{"a", "b", "c", "d"}
	_ = logic.Shuffle(r, in)
	require.Equal(t, []string{"a", "b", "c", "d"}, in)
}

func TestShuffle_FixedSourceIsReproducible(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}

	// constant keys: stable sort keeps input order
	require.Equal(t, in, logic.Shuffle(rand.New(zeroSource{}), in))

	// strictly decreasing keys: sort by key reverses the input
	require.Equal(t, []int{5, 4, 3, 2, 1}, logic.Shuffle(rand.New(&descSource{}), in))
}

func TestShuffle_Empty(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	require.Empty(t, logic.Shuffle(r, []int(nil)))
}
