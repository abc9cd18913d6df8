package knowledge

import (
	"context"
	"math/bits"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/external/media"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

const (
	repostMaxDistance   = 5
	mutationMaxDistance = 15
)

// NewForensics builds the forensics Knowledge Source (§4.4): on a new
// report carrying a media_url, it computes a perceptual hash and
// compares it by Hamming distance against every media_variant node
// already in the case, emitting a repost_of or mutation_of edge per
// the distance ladder (§4.4 "Media variant (perceptual hash)
// policy"). Grounded on the donor's distance-to-confidence-bucket
// pattern (internal/graph/temporal_correlator.go); Hamming distance
// itself is math/bits.OnesCount64, a single bit-count intrinsic with
// no library concern.
func NewForensics(store *graphstore.Store, analyzer media.Analyzer) *blackboard.Source {
	return blackboard.NewSource(
		"forensics",
		blackboard.HIGH,
		[]string{"node:report"},
		func(ctx context.Context, rec graphstore.MutationRecord) error {
			return runForensics(ctx, store, analyzer, rec.Node)
		},
	).WithCondition(func(rec graphstore.MutationRecord) bool {
		_, ok := mediaURL(rec.Node)
		return ok
	})
}

func runForensics(ctx context.Context, store *graphstore.Store, analyzer media.Analyzer, report *graphstore.Node) error {
	url, ok := mediaURL(report)
	if !ok {
		return nil
	}

	hash, ok := analyzer.Phash(ctx, url)
	if !ok {
		return nil
	}

	variantNode, err := store.AddNode(graphstore.KindMediaVariant, report.CaseID, map[string]any{
		"media_url": url,
		"phash":     hash,
	}, "")
	if err != nil {
		return err
	}

	existing := store.MediaVariantsInCase(report.CaseID)
	for _, candidate := range existing {
		if candidate.ID == variantNode.ID {
			continue
		}
		candidateHash, ok := candidate.Data["phash"].(uint64)
		if !ok {
			continue
		}

		d := hammingDistance(hash, candidateHash)
		switch {
		case d <= repostMaxDistance:
			if _, err := store.AddEdge(graphstore.EdgeRepostOf, report.ID, candidate.ID, map[string]any{"hamming_distance": d}); err != nil {
				return err
			}
		case d <= mutationMaxDistance:
			if _, err := store.AddEdge(graphstore.EdgeMutationOf, report.ID, candidate.ID, map[string]any{"hamming_distance": d}); err != nil {
				return err
			}
		}
	}

	return nil
}

func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
