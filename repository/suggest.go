package repository

import (
	"fmt"
	"math/rand"
)

// SuggestItemID returns a candidate id of the form ITEM-NNNN with NNNN in
// [1000, 9999]. It is only a hint: uniqueness is enforced by Create, which
// returns ErrDuplicateItem on a collision. A nil rng uses the global source.
func SuggestItemID(rng *rand.Rand) string {
	var n int
	if rng == nil {
		n = rand.Intn(9000)
	} else {
		n = rng.Intn(9000)
	}
	return fmt.Sprintf("ITEM-%d", 1000+n)
}
