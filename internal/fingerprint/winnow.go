package fingerprint

import "fmt"

// Winnow selects fingerprints from hashes with robust winnowing: the minimum
// hash of every window of windowSize consecutive hashes, preferring the
// rightmost minimum on ties. A selection is recorded only when it differs
// from the previous one. Inputs no longer than one window are returned whole.
func Winnow(hashes []HashedNGram, windowSize int) ([]Fingerprint, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindowSize, windowSize)
	}
	return winnow(hashes, windowSize), nil
}

func winnow(hashes []HashedNGram, windowSize int) []Fingerprint {
	if len(hashes) <= windowSize {
		fingerprints := make([]Fingerprint, len(hashes))
		for i, h := range hashes {
			fingerprints[i] = Fingerprint(h)
		}
		return fingerprints
	}

	fingerprints := make([]Fingerprint, 0, 2*len(hashes)/(windowSize+1)+1)

	minIdx := -1
	lastIdx := -1
	for end := windowSize - 1; end < len(hashes); end++ {
		start := end - windowSize + 1

		if minIdx < start {
			// minimum left the window, rescan it
			minIdx = start
			for i := start + 1; i <= end; i++ {
				if hashes[i].Hash <= hashes[minIdx].Hash {
					minIdx = i
				}
			}
		} else if hashes[end].Hash <= hashes[minIdx].Hash {
			minIdx = end
		}

		if minIdx != lastIdx {
			fingerprints = append(fingerprints, Fingerprint(hashes[minIdx]))
			lastIdx = minIdx
		}
	}

	return fingerprints
}
