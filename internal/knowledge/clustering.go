package knowledge

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

const (
	temporalWindow   = 30 * time.Minute
	geoWindowMeters  = 200.0
	earthRadiusM     = 6371000.0
	clusterThreshold = 0.4

	tokenMinLen = 4 // "length > 3"

	wTemporal = 0.3
	wGeo      = 0.3
	wSemantic = 0.4
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// NewClustering builds the clustering Knowledge Source (§4.4,
// "Clustering algorithm (authoritative)"): on every new report, edge
// of repost or mutation, it scores the triggering report against
// every other report in the same case and links the ones that clear
// the combined threshold. Grounded on the donor's weighted
// sub-score pattern (internal/graph/linking_quality_score.go) and its
// token-bag Jaccard similarity (internal/graph/semantic_matcher.go),
// adapted from issue/PR text to report text and given the spec's own
// temporal/geographic decay curves in place of the donor's.
func NewClustering(store *graphstore.Store) *blackboard.Source {
	s := blackboard.NewSource(
		"clustering",
		blackboard.CRITICAL,
		[]string{"node:report", "edge:repost_of", "edge:mutation_of"},
		func(ctx context.Context, rec graphstore.MutationRecord) error {
			report := triggeringReport(store, rec)
			if report == nil {
				return nil
			}
			return runClustering(store, report)
		},
	)
	return s
}

// triggeringReport resolves the report node a mutation record should
// be scored from: for node:report it is the node itself; for
// edge:repost_of / edge:mutation_of it is the edge's source node
// (the newly-added report the forensics source just linked).
func triggeringReport(store *graphstore.Store, rec graphstore.MutationRecord) *graphstore.Node {
	switch rec.Kind {
	case graphstore.MutationAddNode:
		if rec.Node != nil && rec.Node.Kind == graphstore.KindReport {
			return rec.Node
		}
	case graphstore.MutationAddEdge:
		if rec.Edge != nil {
			return store.GetNode(rec.Edge.SourceNodeID)
		}
	}
	return nil
}

func runClustering(store *graphstore.Store, report *graphstore.Node) error {
	peers := store.ReportsInCase(report.CaseID)
	tokens := tokenize(reportText(report))

	for _, peer := range peers {
		if peer.ID == report.ID {
			continue
		}
		temporal := temporalScore(report, peer)
		geo := geoScore(report, peer)
		semantic := jaccard(tokens, tokenize(reportText(peer)))
		combined := wTemporal*temporal + wGeo*geo + wSemantic*semantic

		if combined < clusterThreshold {
			continue
		}

		_, err := store.AddEdge(graphstore.EdgeSimilarTo, report.ID, peer.ID, map[string]any{
			"score": combined,
			"t":     temporal,
			"g":     geo,
			"s":     semantic,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// temporalScore: 1.0 within 30 min, linearly decaying to 0 over the
// next 30 min, 0 if either timestamp is missing.
func temporalScore(a, b *graphstore.Node) float64 {
	ta, aOK := reportTimestamp(a)
	tb, bOK := reportTimestamp(b)
	if !aOK || !bOK {
		return 0
	}
	d := ta.Sub(tb)
	if d < 0 {
		d = -d
	}
	if d <= temporalWindow {
		return 1.0
	}
	extra := d - temporalWindow
	decayed := 1.0 - float64(extra)/float64(temporalWindow)
	if decayed < 0 {
		return 0
	}
	return decayed
}

// geoScore: 1.0 within 200m (haversine great-circle distance),
// linearly decaying to 0 over the next 200m, 0 if either location is
// missing.
func geoScore(a, b *graphstore.Node) float64 {
	la, aOK := reportLocation(a)
	lb, bOK := reportLocation(b)
	if !aOK || !bOK {
		return 0
	}
	d := haversineMeters(la, lb)
	if d <= geoWindowMeters {
		return 1.0
	}
	extra := d - geoWindowMeters
	decayed := 1.0 - extra/geoWindowMeters
	if decayed < 0 {
		return 0
	}
	return decayed
}

// haversineMeters computes the great-circle distance between two
// lat/lng points, in meters. Closed-form formula; no library in the
// retrieval pack computes this, so it is implemented directly against
// the standard library's math package.
func haversineMeters(a, b Location) float64 {
	lat1, lat2 := deg2rad(a.Lat), deg2rad(b.Lat)
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}

// tokenize lowercases and splits on non-alphanumerics, keeping only
// tokens longer than 3 characters (§4.4 "lowercased words of length >
// 3").
func tokenize(text string) map[string]struct{} {
	lower := strings.ToLower(text)
	words := tokenPattern.FindAllString(lower, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) > tokenMinLen-1 {
			set[w] = struct{}{}
		}
	}
	return set
}

// jaccard computes |A∩B| / |A∪B| over two token sets; 0 if either is
// empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
