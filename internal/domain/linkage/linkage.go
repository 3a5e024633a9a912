// Package linkage holds the idea-linkage math: cosine similarity over node
// embeddings, the persisted snapshot blob, and the content-hash keyed
// explanation cache.
package linkage

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
)

// SnapshotVersion gates schema migrations of the stored blob. A snapshot
// persisted under an older version is treated as empty and fully recomputed.
const SnapshotVersion = 2

// Input is one addressable unit of content to link.
type Input struct {
	NodeID string
	Text   string
}

// Snapshot is the per-document linkage state, persisted as a single JSON blob.
// NodeList, Vectors and NodeText are parallel arrays; Similarity is
// upper-triangular with the column stored as an offset past the row
// (the real column of Similarity[i][j] is i+j+1).
type Snapshot struct {
	Version    int               `json:"version"`
	NodeList   []string          `json:"nodeList"`
	Vectors    [][]float32       `json:"embedding"`
	NodeText   []string          `json:"nodeText"`
	Similarity [][]float64       `json:"similarityMatrix"`
	Explainers map[string]string `json:"linkageExplainer"`
}

// Empty returns a fresh snapshot at the current schema version.
func Empty() Snapshot {
	return Snapshot{Version: SnapshotVersion, Explainers: map[string]string{}}
}

// Normalize discards stale-version or internally inconsistent blobs.
// The parallel-array invariant must hold or the whole node state is dropped;
// the explainer cache survives since it is keyed by content, not by index.
func (s Snapshot) Normalize() Snapshot {
	if s.Explainers == nil {
		s.Explainers = map[string]string{}
	}
	if s.Version != SnapshotVersion ||
		len(s.NodeList) != len(s.Vectors) || len(s.NodeList) != len(s.NodeText) {
		return Snapshot{Version: SnapshotVersion, Explainers: s.Explainers}
	}
	return s
}

// IndexOf returns the position of nodeID in NodeList, or -1.
func (s Snapshot) IndexOf(nodeID string) int {
	for i, id := range s.NodeList {
		if id == nodeID {
			return i
		}
	}
	return -1
}

// PairColumn reconstructs the real column index from the row and stored offset.
func PairColumn(row, offset int) int { return row + offset + 1 }

// CosineSimilarity computes the standard dot-product-over-norms similarity.
// Returns 0 for zero-length or zero-norm vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Matrix computes the upper-triangular similarity matrix over the vectors in
// list order. Row i holds len(vectors)-i-1 entries; entry j is the similarity
// of node i with node i+j+1.
func Matrix(vectors [][]float32) [][]float64 {
	n := len(vectors)
	m := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, 0, n-i-1)
		for j := i + 1; j < n; j++ {
			row = append(row, CosineSimilarity(vectors[i], vectors[j]))
		}
		m[i] = row
	}
	return m
}

// Qualifies applies the sharpening curve before thresholding: the raw cosine
// similarity is raised to exponent and only then compared. Values near 1 stay
// near 1 while mid-range similarities are suppressed, which is not equivalent
// to lowering the raw threshold.
func Qualifies(similarity float64, exponent float64, threshold float64) bool {
	return math.Pow(similarity, exponent) > threshold
}

// PairKey hashes the ordered concatenation of two node texts. Explanations are
// order-independent at lookup time: callers try PairKey(a, b) and PairKey(b, a).
func PairKey(first, second string) string {
	h := sha256.Sum256([]byte(first + second))
	return hex.EncodeToString(h[:])
}

// LookupExplanation finds a cached explanation for the pair under either hash
// order. The second return reports whether one was found.
func (s Snapshot) LookupExplanation(first, second string) (string, bool) {
	if e, ok := s.Explainers[PairKey(first, second)]; ok {
		return e, ok
	}
	e, ok := s.Explainers[PairKey(second, first)]
	return e, ok
}
