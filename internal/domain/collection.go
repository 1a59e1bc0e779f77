package domain

// Categories returns each distinct category once, in first-seen order.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]string, 0, len(quotes))

	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	return out
}

// FilterByCategory returns the quotes filed under selected, preserving order.
// AllCategories and the empty string both select the whole collection.
// The result never aliases the input.
func FilterByCategory(quotes []Quote, selected string) []Quote {
	if selected == AllCategories || selected == "" {
		return append([]Quote(nil), quotes...)
	}

	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Category == selected {
			out = append(out, q)
		}
	}

	return out
}

// Merge combines local and remote quotes, keeping the first quote seen for
// each Text. Local quotes are scanned first, so on a Text collision the local
// category survives and the remote record is dropped. Duplicates already
// present inside local collapse as well.
func Merge(local, remote []Quote) []Quote {
	seen := make(map[string]struct{}, len(local)+len(remote))
	out := make([]Quote, 0, len(local)+len(remote))

	for _, group := range [][]Quote{local, remote} {
		for _, q := range group {
			if _, ok := seen[q.Text]; ok {
				continue
			}

			seen[q.Text] = struct{}{}
			out = append(out, q)
		}
	}

	return out
}

// IntN returns a non-negative pseudo-random int in [0, n).
// math/rand/v2.IntN and (*rand.Rand).IntN both satisfy it.
type IntN func(n int) int

// PickRandom returns a uniformly chosen quote. ok is false when quotes is empty.
func PickRandom(quotes []Quote, intN IntN) (q Quote, ok bool) {
	if len(quotes) == 0 {
		return Quote{}, false
	}

	return quotes[intN(len(quotes))], true
}
