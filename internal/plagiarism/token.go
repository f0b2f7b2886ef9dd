package plagiarism

// TilingScore measures word-level overlap with Greedy String Tiling (GST):
// 2 * tiled_words / (lenA + lenB), counting only tiles of at least minLength
// words.
func TilingScore(wordsA, wordsB []string, minLength int) float64 {
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	t := newTiler(wordsA, wordsB)
	covered := t.run(max(minLength, 1))

	return 2.0 * float64(covered) / float64(len(wordsA)+len(wordsB))
}

// tile is a run of equal words starting at a in A and b in B
type tile struct {
	a, b, length int
}

type tiler struct {
	wordsA, wordsB []string
	usedA, usedB   []bool
	occurrences    map[string][]int // word → indexes in B
}

func newTiler(wordsA, wordsB []string) *tiler {
	occurrences := make(map[string][]int, len(wordsB))
	for j, word := range wordsB {
		occurrences[word] = append(occurrences[word], j)
	}
	return &tiler{
		wordsA:      wordsA,
		wordsB:      wordsB,
		usedA:       make([]bool, len(wordsA)),
		usedB:       make([]bool, len(wordsB)),
		occurrences: occurrences,
	}
}

// run places the longest unused tile until none of minLength words is left
// and returns the number of words covered on each side.
func (t *tiler) run(minLength int) int {
	covered := 0
	for {
		best := t.longest()
		if best.length < minLength {
			return covered
		}
		for k := 0; k < best.length; k++ {
			t.usedA[best.a+k] = true
			t.usedB[best.b+k] = true
		}
		covered += best.length
	}
}

// longest returns the first maximal tile over unused words
func (t *tiler) longest() tile {
	var best tile
	for i, word := range t.wordsA {
		if t.usedA[i] {
			continue
		}
		for _, j := range t.occurrences[word] {
			if t.usedB[j] {
				continue
			}
			if n := t.extend(i, j); n > best.length {
				best = tile{a: i, b: j, length: n}
			}
		}
	}
	return best
}

func (t *tiler) extend(i, j int) int {
	n := 0
	for i+n < len(t.wordsA) && j+n < len(t.wordsB) {
		if t.usedA[i+n] || t.usedB[j+n] || t.wordsA[i+n] != t.wordsB[j+n] {
			break
		}
		n++
	}
	return n
}
