package game

import (
	"time"

	"golang.org/x/exp/rand"
)

// Roller produces six-sided die rolls.
type Roller interface {
	Roll() int
}

type RollerFunc func() int

func (f RollerFunc) Roll() int { return f() }

type die struct {
	rng *rand.Rand
}

// NewDie returns a fair die drawing from rng. A nil rng is seeded from the clock.
func NewDie(rng *rand.Rand) Roller {
	if rng == nil {
		rng = NewRand()
	}
	return &die{rng: rng}
}

func (d *die) Roll() int {
	return d.rng.Intn(6) + 1
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}

// Sequence replays fixed rolls, starting over when exhausted.
func Sequence(rolls ...int) Roller {
	i := 0
	return RollerFunc(func() int {
		if len(rolls) == 0 {
			return 1
		}
		r := rolls[i%len(rolls)]
		i++
		return r
	})
}
