package symspell

import (
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Word: "the", Frequency: 100},
		{Word: "then", Frequency: 50},
		{Word: "hello", Frequency: 30},
		{Word: "world", Frequency: 30},
		{Word: "receive", Frequency: 10},
		{Word: "a", Frequency: 1000},
		{Word: "an", Frequency: 500},
	}
}

func buildTestIndex(t *testing.T, k, p int) *Index {
	t.Helper()
	idx, err := Build(testEntries(), k, p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestBuildRejectsKGreaterThanP(t *testing.T) {
	if _, err := Build(testEntries(), 3, 2); err == nil {
		t.Fatal("expected error when k > p")
	}
}

func TestLookupExactMatchIsTop(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	for _, e := range testEntries() {
		got := idx.Lookup(e.Word, Top, 2)
		if len(got) != 1 || got[0].Word != e.Word || got[0].Distance != 0 {
			t.Fatalf("Lookup(%q, Top) = %+v, want exact distance-0 match", e.Word, got)
		}
	}
}

func TestLookupFindsOneEditTypo(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	got := idx.Lookup("teh", Top, 2)
	if len(got) != 1 || got[0].Word != "the" {
		t.Fatalf("Lookup(teh) = %+v, want [the]", got)
	}
	if got[0].Distance != 1 {
		t.Errorf("Lookup(teh).Distance = %d, want 1 (Damerau transposition)", got[0].Distance)
	}
}

func TestLookupNoCandidate(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	got := idx.Lookup("xyzxyz", Top, 2)
	if len(got) != 0 {
		t.Fatalf("Lookup(xyzxyz) = %+v, want no candidates", got)
	}
}

func TestLookupClosestReturnsAllAtMinimum(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	got := idx.Lookup("hell", Closest, 2)
	if len(got) == 0 {
		t.Fatal("Lookup(hell, Closest) returned nothing")
	}
	min := got[0].Distance
	for _, s := range got {
		if s.Distance != min {
			t.Errorf("Closest result %+v has distance != minimum %d", s, min)
		}
	}
}

func TestLookupRankingOrder(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	got := idx.Lookup("teh", All, 2)
	for i := 1; i < len(got); i++ {
		a, b := got[i-1], got[i]
		if a.Distance > b.Distance {
			t.Fatalf("ranking not distance-ascending at %d: %+v then %+v", i, a, b)
		}
		if a.Distance == b.Distance && a.Frequency < b.Frequency {
			t.Fatalf("ranking not frequency-descending at %d: %+v then %+v", i, a, b)
		}
		if a.Distance == b.Distance && a.Frequency == b.Frequency && a.Word > b.Word {
			t.Fatalf("ranking not word-ascending at %d: %+v then %+v", i, a, b)
		}
	}
}

func TestLookupEveryResultWithinBoundAndDistanceCorrect(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	for _, input := range []string{"teh", "recieve", "helo", "worlld", "n"} {
		for _, s := range idx.Lookup(input, All, 2) {
			if s.Distance > 2 {
				t.Errorf("Lookup(%q) candidate %+v exceeds k=2", input, s)
			}
			if got := distance(input, s.Word, 99); got != s.Distance {
				t.Errorf("Lookup(%q) reported distance %d for %q, true distance is %d", input, s.Distance, s.Word, got)
			}
		}
	}
}

func TestLookupVeryShortWordReachableAtK1(t *testing.T) {
	idx := buildTestIndex(t, 1, 7)
	got := idx.Lookup("b", Top, 1)
	if len(got) != 1 || got[0].Word != "a" {
		t.Fatalf("Lookup(b) = %+v, want [a] (single deletion to empty string floor)", got)
	}
}

func TestDistanceIsSymmetricAndCaseSensitive(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"the", "the", 0},
		{"teh", "the", 1}, // adjacent transposition
		{"the", "then", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"The", "the", 1}, // case differs: counted as a substitution
	}
	for _, c := range cases {
		if got := distance(c.a, c.b, 10); got != c.want {
			t.Errorf("distance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := distance(c.b, c.a, 10); got != c.want {
			t.Errorf("distance(%q, %q) = %d, want %d (not symmetric)", c.b, c.a, got, c.want)
		}
	}
}

func TestDistanceEarlyExit(t *testing.T) {
	if d := distance("aaaaaaaaaa", "bbbbbbbbbb", 2); d != -1 {
		t.Errorf("distance with bound 2 on 10 substitutions = %d, want -1", d)
	}
}

func TestContains(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	if !idx.Contains("the") {
		t.Error("Contains(the) = false, want true")
	}
	if idx.Contains("thhe") {
		t.Error("Contains(thhe) = true, want false")
	}
}

func TestStats(t *testing.T) {
	idx := buildTestIndex(t, 2, 7)
	stats := idx.Stats()
	if stats.WordCount != len(testEntries()) {
		t.Errorf("Stats().WordCount = %d, want %d", stats.WordCount, len(testEntries()))
	}
	if stats.MaxEditDist != 2 || stats.PrefixLen != 7 {
		t.Errorf("Stats() = %+v, want MaxEditDist=2 PrefixLen=7", stats)
	}
}
