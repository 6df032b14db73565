package playback

import (
	"math/rand"
	"strings"
	"time"
)

// Break characters that make natural chunk boundaries: whitespace plus
// sentence and clause punctuation.
const breakChars = " .,!?;:\n"

// nextChunkLen picks how many runes of the remainder to reveal in one step.
// The sizing is deliberately irregular so the reveal reads like live typing
// rather than fixed-width ticks: nearby breaks are usually honored, and when
// none is close the chunk is a small random run that occasionally shrinks to
// a character or two or stretches into a longer burst.
func nextChunkLen(remainder []rune, rng *rand.Rand) int {
	if len(remainder) == 0 {
		return 0
	}

	brk := -1
	for i, r := range remainder {
		if strings.ContainsRune(breakChars, r) {
			brk = i
			break
		}
	}

	var n int
	switch {
	case brk >= 0 && brk < 3:
		n = brk + 1
	case brk >= 0 && brk < 15:
		if rng.Float64() < 0.7 {
			n = brk + 1
		} else {
			// Stop short of the break to vary the rhythm: 30-80% of
			// the distance to it.
			n = int(float64(brk) * (0.3 + rng.Float64()*0.5))
			if n < 1 {
				n = 1
			}
		}
	default:
		n = 2 + rng.Intn(8)
		switch roll := rng.Float64(); {
		case roll < 0.10:
			n = 1 + rng.Intn(2)
		case roll < 0.30:
			n = 10 + rng.Intn(11)
		}
	}

	if n > len(remainder) {
		n = len(remainder)
	}
	return n
}

// chunkDelay computes how long to wait before committing a chunk. A short
// uniform base gets additive pauses after sentence or clause punctuation and
// around newlines, an occasional unprompted hesitation, and a mild stretch
// for longer chunks.
func chunkDelay(chunk []rune, rng *rand.Rand) time.Duration {
	ms := 30 + rng.Float64()*50

	if len(chunk) > 0 {
		switch chunk[len(chunk)-1] {
		case '.', '!', '?':
			ms += 200 + rng.Float64()*300
		case ',', ';', ':':
			ms += 100 + rng.Float64()*100
		}
	}
	for _, r := range chunk {
		if r == '\n' {
			ms += 150 + rng.Float64()*150
			break
		}
	}
	if rng.Float64() < 0.15 {
		ms += 50 + rng.Float64()*150
	}

	ms *= 1 + float64(len(chunk))/20
	return time.Duration(ms * float64(time.Millisecond))
}
