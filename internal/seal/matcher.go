package seal

// matchJutsu checks whether the trailing suffix of the confirmed sequence
// equals any catalog entry's seal sequence. Among all matches the longest
// wins; on equal lengths the earlier catalog entry is kept.
func matchJutsu(catalog Catalog, sequence []string) *Jutsu {
	var best *Jutsu
	for i := range catalog.jutsu {
		j := &catalog.jutsu[i]
		n := len(j.Seals)
		if n > len(sequence) {
			continue
		}
		if !sealsEqual(sequence[len(sequence)-n:], j.Seals) {
			continue
		}
		if best == nil || n > len(best.Seals) {
			best = j
		}
	}
	return best
}

func sealsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
