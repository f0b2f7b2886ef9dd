package plagiarism

import (
	"math"
	"sort"

	"github.com/RishiKendai/quill/internal/models"
)

// DocumentSimilarity aggregates peer scores using the Top-K + boost formula
func DocumentSimilarity(peers []models.PeerResult, significant float64) float64 {
	// Step 1: Filter peers with FinalScore >= significant
	scores := make([]float64, 0, len(peers))
	for _, peer := range peers {
		if peer.FinalScore >= significant {
			scores = append(scores, peer.FinalScore)
		}
	}

	// If no significant peers, return 0
	if len(scores) == 0 {
		return 0.0
	}

	// Step 2: Take top K=3 scores
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	K := min(3, len(scores))

	// Step 3: Calculate average of top K scores
	sum := 0.0
	for _, s := range scores[:K] {
		sum += s
	}
	similarity := sum / float64(K)

	// Step 4: Frequency boost, M = number of significant peers
	M := len(scores)
	similarity += math.Min(0.15, 0.05*float64(M-1))

	// Clamp to [0, 1]
	return math.Max(0.0, math.Min(1.0, similarity))
}

// RiskLevel returns the risk level for a similarity score
func RiskLevel(score float64) string {
	if score < 0.3 {
		return "clean"
	} else if score < 0.6 {
		return "suspicious"
	} else if score < 0.85 {
		return "highly suspicious"
	}
	return "near copy"
}
