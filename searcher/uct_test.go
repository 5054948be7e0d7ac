package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUCT(t *testing.T) {
	t.Run("exploitation plus scaled exploration", func(t *testing.T) {
		want := 0.5 + C*math.Sqrt(math.Log(10)/4)
		require.InDelta(t, want, uct(2, 4, 9, C), 1e-12)
	})

	t.Run("unvisited child counts as one visit", func(t *testing.T) {
		require.InDelta(t, C*math.Sqrt(math.Log(4)), uct(0, 0, 3, C), 1e-12)
	})

	t.Run("higher average wins at equal visits", func(t *testing.T) {
		require.Greater(t, uct(3, 4, 8, C), uct(1, 4, 8, C))
	})
}
