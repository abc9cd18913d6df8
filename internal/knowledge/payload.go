// Package knowledge implements the seven Knowledge Sources (§4.4):
// pure consumers of the graph store that produce further mutations.
// Each source file here builds one blackboard.Source (this file only
// holds the shared readers for report data fields); internal/blackboard
// only knows their scheduling contract, never their content.
package knowledge

import (
	"time"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

// Location is the well-known lat/lng shape a report's data may carry.
type Location struct {
	Lat float64
	Lng float64
}

// reportText reads the free-text field the clustering source
// tokenizes and the network source sends to the AI completer.
func reportText(n *graphstore.Node) string {
	if n == nil || n.Data == nil {
		return ""
	}
	if v, ok := n.Data["text"].(string); ok {
		return v
	}
	return ""
}

// reportTimestamp reads the report's timestamp, accepting either a
// time.Time (set by in-process callers) or an RFC3339 string (set by
// the HTTP boundary decoding JSON).
func reportTimestamp(n *graphstore.Node) (time.Time, bool) {
	if n == nil || n.Data == nil {
		return time.Time{}, false
	}
	switch v := n.Data["timestamp"].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// reportLocation reads the report's location, if present and
// well-formed.
func reportLocation(n *graphstore.Node) (Location, bool) {
	if n == nil || n.Data == nil {
		return Location{}, false
	}
	raw, ok := n.Data["location"]
	if !ok {
		return Location{}, false
	}
	switch v := raw.(type) {
	case Location:
		return v, true
	case map[string]any:
		lat, latOK := toFloat(v["lat"])
		lng, lngOK := toFloat(v["lng"])
		if !latOK || !lngOK {
			return Location{}, false
		}
		return Location{Lat: lat, Lng: lng}, true
	default:
		return Location{}, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// mediaURL reads the report's media_url field, if any.
func mediaURL(n *graphstore.Node) (string, bool) {
	if n == nil || n.Data == nil {
		return "", false
	}
	v, ok := n.Data["media_url"].(string)
	return v, ok && v != ""
}

// claims reads the report's claims list, if any.
func claims(n *graphstore.Node) ([]string, bool) {
	if n == nil || n.Data == nil {
		return nil, false
	}
	raw, ok := n.Data["claims"]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []string:
		return v, len(v) > 0
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}
