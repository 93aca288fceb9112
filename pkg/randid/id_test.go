package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	for _, n := range []int{-3, 0, 1, 8, 32} {
		id := Generate(n)

		assert.Len(t, id, max(n, 0))
		for _, r := range id {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q in %q", r, id)
		}
	}
}

func TestGenerate_Distinct(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for range 200 {
		seen[Generate(8)] = struct{}{}
	}

	// 36^8 values make a collision in 200 draws vanishingly rare
	assert.Len(t, seen, 200)
}
