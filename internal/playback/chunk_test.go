package playback

import (
	"math/rand"
	"testing"
	"time"
)

func TestNextChunkLen_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputs := []string{
		"a",
		"hi",
		"Hello, world! This is a longer sentence.\nNew line here.",
		"nopunctuationatallforalongstretchoftext",
		"word word word",
		". leading break",
	}
	for _, in := range inputs {
		remainder := []rune(in)
		for i := 0; i < 500; i++ {
			n := nextChunkLen(remainder, rng)
			if n < 1 || n > len(remainder) {
				t.Fatalf("chunk len %d out of range [1, %d] for %q", n, len(remainder), in)
			}
		}
	}
}

func TestNextChunkLen_EmptyRemainder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if n := nextChunkLen(nil, rng); n != 0 {
		t.Fatalf("empty remainder: got %d, want 0", n)
	}
}

func TestNextChunkLen_TakesNearbyBreak(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// Break at index 1: always taken inclusively.
	for i := 0; i < 200; i++ {
		if n := nextChunkLen([]rune("a bcdefgh"), rng); n != 2 {
			t.Fatalf("break within 3 chars: got %d, want 2", n)
		}
	}
}

func TestNextChunkLen_MidBreakUsuallyHonored(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	remainder := []rune("abcdefghij klmno") // break at index 10
	full, short := 0, 0
	for i := 0; i < 2000; i++ {
		n := nextChunkLen(remainder, rng)
		if n == 11 {
			full++
		} else if n >= 1 && n < 11 {
			short++
		} else {
			t.Fatalf("unexpected chunk len %d", n)
		}
	}
	// ~70/30 split; allow generous slack for the seed.
	if full < 1200 || short < 300 {
		t.Fatalf("split full=%d short=%d, expected roughly 70/30", full, short)
	}
}

func TestChunkDelay_Ranges(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	tests := []struct {
		name  string
		chunk string
		min   time.Duration
		max   time.Duration
	}{
		// Bounds include the 15% thinking pause and the length scale.
		{name: "short plain", chunk: "ab", min: 30 * time.Millisecond, max: 310 * time.Millisecond},
		{name: "sentence end", chunk: "done.", min: 230 * time.Millisecond, max: 1100 * time.Millisecond},
		{name: "clause end", chunk: "so,", min: 130 * time.Millisecond, max: 700 * time.Millisecond},
		{name: "newline", chunk: "a\nb", min: 180 * time.Millisecond, max: 800 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				d := chunkDelay([]rune(tc.chunk), rng)
				if d < tc.min || d > tc.max {
					t.Fatalf("delay %v outside [%v, %v]", d, tc.min, tc.max)
				}
			}
		})
	}
}
