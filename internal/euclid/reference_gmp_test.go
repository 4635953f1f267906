//go:build gmp

package euclid

import (
	"testing"

	"github.com/ncw/gmp"
)

// TestCompute_MatchesGMP cross-checks the tracer against libgmp's mpz_gcd.
// Requires libgmp and the gmp build tag.
func TestCompute_MatchesGMP(t *testing.T) {
	t.Parallel()
	pairs := [][2]int64{
		{120, 45},
		{7, 7},
		{1, 1000000},
		{7540113804746346429, 4660046610375530309},
		{9223372036854775807, 3037000499},
		{600851475143, 6857},
	}
	for _, p := range pairs {
		want := new(gmp.Int).GCD(nil, nil, gmp.NewInt(p[0]), gmp.NewInt(p[1])).Int64()
		if got := Compute(p[0], p[1]).GCD; got != want {
			t.Errorf("Compute(%d, %d).GCD = %d, gmp = %d", p[0], p[1], got, want)
		}
	}
}
