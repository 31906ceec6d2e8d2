package symspell

import (
	"fmt"
	"sort"
)

// deleteFloor is the shortest variant length that generateDeletes deletes
// further from; variants of every length, down to the empty string, are
// retained so very short dictionary words remain reachable at k=1.
const deleteFloor = 1

// Index is an immutable SymSpell deletion index. It is built once and is
// safe for concurrent use by multiple goroutines without locking.
type Index struct {
	// dictionary maps a canonical word to its frequency; membership in
	// this map is the canonical-word membership set.
	dictionary map[string]int64

	// deletes maps a deletion variant to every dictionary word that
	// produces it.
	deletes map[string][]string

	maxEditDistance int
	prefixLength    int
}

// Build constructs an immutable index from entries using the given
// maximum edit distance k and prefix length p. It returns an error only
// when k > p, the one build-time failure mode this component has.
func Build(entries []Entry, k, p int) (*Index, error) {
	if k > p {
		return nil, fmt.Errorf("symspell: max edit distance %d exceeds prefix length %d", k, p)
	}

	idx := &Index{
		dictionary:      make(map[string]int64, len(entries)),
		deletes:         make(map[string][]string, len(entries)*4),
		maxEditDistance: k,
		prefixLength:    p,
	}

	for _, e := range entries {
		idx.addEntry(e.Word, e.Frequency)
	}
	return idx, nil
}

func (idx *Index) addEntry(word string, frequency int64) {
	if word == "" {
		return
	}
	if existing, ok := idx.dictionary[word]; !ok || frequency > existing {
		idx.dictionary[word] = frequency
	}

	prefix := word
	if len(prefix) > idx.prefixLength {
		prefix = prefix[:idx.prefixLength]
	}

	for del := range generateDeletes(prefix, idx.maxEditDistance) {
		idx.deletes[del] = appendUnique(idx.deletes[del], word)
	}
}

func appendUnique(words []string, word string) []string {
	for _, w := range words {
		if w == word {
			return words
		}
	}
	return append(words, word)
}

// Contains reports whether word is an exact dictionary member.
func (idx *Index) Contains(word string) bool {
	_, ok := idx.dictionary[word]
	return ok
}

// Stats reports index size for diagnostics.
func (idx *Index) Stats() Stats {
	return Stats{
		WordCount:   len(idx.dictionary),
		DeleteCount: len(idx.deletes),
		MaxEditDist: idx.maxEditDistance,
		PrefixLen:   idx.prefixLength,
	}
}

// Lookup finds spelling suggestions for input within edit distance k
// (capped to the index's configured maximum), ranked by
// (distance ascending, frequency descending, word ascending).
func (idx *Index) Lookup(input string, v Verbosity, k int) []Suggestion {
	if input == "" {
		return nil
	}
	if k > idx.maxEditDistance {
		k = idx.maxEditDistance
	}

	if freq, ok := idx.dictionary[input]; ok {
		exact := Suggestion{Word: input, Distance: 0, Frequency: freq}
		if v == Top {
			return []Suggestion{exact}
		}
	}

	prefix := input
	if len(prefix) > idx.prefixLength {
		prefix = prefix[:idx.prefixLength]
	}
	// Enumerate deletions of the (prefix-bounded) input, plus the prefix
	// itself, which is how an input with extra trailing characters still
	// reaches a shorter dictionary word's own zero-deletion key.
	variants := generateDeletes(prefix, k)
	variants[prefix] = struct{}{}

	best := make(map[string]int, 16) // word -> minimum distance seen
	for variant := range variants {
		for _, word := range idx.deletes[variant] {
			if _, done := best[word]; done {
				continue
			}
			if absDiff(len(input), len(word)) > k {
				continue
			}
			d := distance(input, word, k)
			if d < 0 {
				continue
			}
			if prev, ok := best[word]; !ok || d < prev {
				best[word] = d
			}
		}
	}

	candidates := make([]Suggestion, 0, len(best))
	for word, d := range best {
		candidates = append(candidates, Suggestion{Word: word, Distance: d, Frequency: idx.dictionary[word]})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		if candidates[i].Frequency != candidates[j].Frequency {
			return candidates[i].Frequency > candidates[j].Frequency
		}
		return candidates[i].Word < candidates[j].Word
	})

	switch v {
	case Top:
		if len(candidates) == 0 {
			return nil
		}
		return candidates[:1]
	case Closest:
		if len(candidates) == 0 {
			return nil
		}
		min := candidates[0].Distance
		cut := 0
		for cut < len(candidates) && candidates[cut].Distance == min {
			cut++
		}
		return candidates[:cut]
	default: // All
		return candidates
	}
}

// LookupBest is a convenience wrapper around Lookup(input, Top, k).
func (idx *Index) LookupBest(input string, k int) *Suggestion {
	res := idx.Lookup(input, Top, k)
	if len(res) == 0 {
		return nil
	}
	return &res[0]
}

// generateDeletes returns every distinct string obtainable by removing
// 0..maxDistance characters from term, in order, including term itself.
// Variants shorter than deleteFloor are still retained.
func generateDeletes(term string, maxDistance int) map[string]struct{} {
	out := map[string]struct{}{term: {}}
	if maxDistance <= 0 {
		return out
	}
	frontier := []string{term}
	for d := 0; d < maxDistance; d++ {
		var next []string
		for _, s := range frontier {
			if len(s) < deleteFloor {
				continue
			}
			for i := 0; i < len(s); i++ {
				del := s[:i] + s[i+1:]
				if _, seen := out[del]; !seen {
					out[del] = struct{}{}
					next = append(next, del)
				}
			}
		}
		frontier = next
	}
	return out
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// distance computes the true Damerau-Levenshtein distance (adjacent
// transpositions cost 1) between a and b, bounded by maxDistance with an
// early exit. Returns -1 if the distance exceeds maxDistance.
func distance(a, b string, maxDistance int) int {
	lenA, lenB := len(a), len(b)
	if absDiff(lenA, lenB) > maxDistance {
		return -1
	}
	if lenA == 0 {
		if lenB > maxDistance {
			return -1
		}
		return lenB
	}
	if lenB == 0 {
		if lenA > maxDistance {
			return -1
		}
		return lenA
	}

	if lenA > lenB {
		a, b = b, a
		lenA, lenB = lenB, lenA
	}

	prev := make([]int, lenA+1)
	curr := make([]int, lenA+1)
	prevPrev := make([]int, lenA+1)

	for i := 0; i <= lenA; i++ {
		prev[i] = i
	}

	for j := 1; j <= lenB; j++ {
		curr[0] = j
		rowMin := j

		for i := 1; i <= lenA; i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min3(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)

			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				curr[i] = min2(curr[i], prevPrev[i-2]+cost)
			}

			if curr[i] < rowMin {
				rowMin = curr[i]
			}
		}

		if rowMin > maxDistance {
			return -1
		}
		prevPrev, prev, curr = prev, curr, prevPrev
	}

	if prev[lenA] > maxDistance {
		return -1
	}
	return prev[lenA]
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int {
	return min2(min2(a, b), c)
}
