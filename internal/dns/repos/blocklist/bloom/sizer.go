package bloom

import (
	"math"

	"github.com/haukened/dns-block/internal/dns/repos/blocklist"
)

// sizer implements blocklist.BloomSizer using standard formulas:
//
//	m = - (n * ln p) / (ln 2)^2
//	k = (m / n) * ln 2
//
// k is derived from the exact m; m is then rounded up to whole 64-bit words,
// which the underlying bitset allocates anyway. An empty index is sized as
// one entry and an invalid p falls back to 1%.
type sizer struct{}

// NewSizer returns a BloomSizer implementation.
func NewSizer() blocklist.BloomSizer { return sizer{} }

const wordBits = 64

func (s sizer) Size(n uint64, p float64) (uint64, uint8) {
	if n == 0 {
		n = 1
	}
	if !(p > 0 && p < 1) {
		p = 0.01
	}
	ln2 := math.Ln2
	exact := math.Ceil(-float64(n) * math.Log(p) / (ln2 * ln2))
	k := uint8(math.Min(math.MaxUint8, math.Max(1, math.Round(exact/float64(n)*ln2))))

	m := uint64(exact)
	if m == 0 {
		m = 1
	}
	m = (m + wordBits - 1) / wordBits * wordBits
	return m, k
}
