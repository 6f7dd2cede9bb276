package seal

// None is the empty seal value fed to the tracker when no hand is detected
// or the prediction falls below the confidence threshold.
const None = ""

// stabilizer smooths noisy per-frame predictions with a fixed-size rolling
// window and a majority vote. It is frame-count driven, not wall-clock
// driven: the window measures observation density.
type stabilizer struct {
	window []string
	size   int
}

func newStabilizer(size int) *stabilizer {
	return &stabilizer{
		window: make([]string, 0, size),
		size:   size,
	}
}

// push adds one observation (possibly None) to the window, evicting the
// oldest entry once the window is full, and returns the current stable seal.
func (s *stabilizer) push(seal string) string {
	if len(s.window) >= s.size {
		copy(s.window, s.window[1:])
		s.window = s.window[:len(s.window)-1]
	}
	s.window = append(s.window, seal)
	return s.majorityVote()
}

// majorityVote returns the most frequent non-empty seal in the window,
// provided it holds a strict majority of the window's current length.
// The bar scales with how many frames have accumulated, so a seal can
// stabilize before the window is full. Which seal wins an exact count tie
// is unspecified (map iteration order).
func (s *stabilizer) majorityVote() string {
	counts := make(map[string]int)
	for _, seal := range s.window {
		if seal != None {
			counts[seal]++
		}
	}

	best := None
	bestCount := 0
	for seal, n := range counts {
		if n > bestCount {
			best = seal
			bestCount = n
		}
	}

	if bestCount > len(s.window)/2 {
		return best
	}
	return None
}

func (s *stabilizer) reset() {
	s.window = s.window[:0]
}
