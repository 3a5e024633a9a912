package draftzero

import (
	"context"
	"fmt"
	"time"

	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
)

// NodeInput carries new or changed text for one idea node.
type NodeInput struct {
	NodeID string
	Text   string
}

// LinkageResult is the computed linkage state of a document.
type LinkageResult struct {
	// NodeList is the working set in display order.
	NodeList []string
	// Similarity is an upper-triangular matrix: Similarity[i][k] is the cosine
	// similarity between node i and node i+k+1.
	Similarity [][]float64
	// Explainers maps content pair hashes to one-sentence explanations.
	Explainers map[string]string
}

// LinkageService computes idea linkage on behalf of one user. Provider calls
// count against that user's AI budget.
type LinkageService struct {
	userID string
	svc    linkageUseCase
	obs    *observer
}

// Linkage returns the linkage service acting as the given user.
func (c *Client) Linkage(userID string) *LinkageService {
	return &LinkageService{userID: userID, svc: c.linkSvc, obs: c.obs}
}

// Compute brings a document's linkage snapshot up to date and returns it.
// inputs carry new or changed node text; nodeIDs is the full working set in
// display order. Unchanged nodes reuse stored vectors and cached explanations.
func (s *LinkageService) Compute(
	ctx context.Context, documentID string,
	inputs []NodeInput, nodeIDs []string,
) (_ LinkageResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("linkage.compute", start, err) }()

	internal := make([]domlink.Input, len(inputs))
	for i, in := range inputs {
		internal[i] = domlink.Input{NodeID: in.NodeID, Text: in.Text}
	}

	result, err := s.svc.Compute(ctx, s.userID, documentID, internal, nodeIDs)
	if err != nil {
		return LinkageResult{}, fmt.Errorf("compute linkage: %w", err)
	}
	return LinkageResult{
		NodeList:   result.NodeList,
		Similarity: result.Similarity,
		Explainers: result.Explainers,
	}, nil
}
