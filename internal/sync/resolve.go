package sync

import (
	"encoding/json"
	"hash/fnv"
	"strings"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// resolve decides which of a conflicting local/remote change pair survives,
// per spec.md §4.7's four resolution strategies. It returns the ChangeRecord
// to apply locally; for Merge it returns a new record carrying the merged
// payload.
func resolve(strategy Strategy, local, remote *domain.ChangeRecord) *domain.ChangeRecord {
	// Delete vs update defaults to delete wins, regardless of strategy,
	// matching spec's stated default for that specific case.
	if local.Op == domain.OpDelete && remote.Op != domain.OpDelete {
		return local
	}
	if remote.Op == domain.OpDelete && local.Op != domain.OpDelete {
		return remote
	}

	switch strategy {
	case UseLocal:
		return local
	case UseRemote:
		return remote
	case Merge:
		return mergeRecords(local, remote)
	case UseNewest:
		fallthrough
	default:
		return useNewest(local, remote)
	}
}

func useNewest(local, remote *domain.ChangeRecord) *domain.ChangeRecord {
	if local.TimestampMs != remote.TimestampMs {
		if local.TimestampMs > remote.TimestampMs {
			return local
		}
		return remote
	}
	// Tie: lower device-id hash wins, a stable deterministic tiebreaker
	// independent of which side happens to be "local" here.
	if deviceHash(local.DeviceID) <= deviceHash(remote.DeviceID) {
		return local
	}
	return remote
}

func deviceHash(deviceID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return h.Sum32()
}

// mergeRecords builds a new ChangeRecord whose payload merges local and
// remote field-by-field: scalars last-writer-wins (by TimestampMs), arrays
// union, and any field named "*position*" takes the numeric maximum. The
// merge is JSON-shape generic since the changelog payload isn't typed at
// this layer.
func mergeRecords(local, remote *domain.ChangeRecord) *domain.ChangeRecord {
	var localFields, remoteFields map[string]any
	if err := json.Unmarshal(local.Payload, &localFields); err != nil {
		return useNewest(local, remote)
	}
	if err := json.Unmarshal(remote.Payload, &remoteFields); err != nil {
		return useNewest(local, remote)
	}

	newer, older := remote, local
	if local.TimestampMs > remote.TimestampMs {
		newer, older = local, remote
	}
	newerFields, olderFields := remoteFields, localFields
	if newer == local {
		newerFields, olderFields = localFields, remoteFields
	}

	merged := make(map[string]any, len(newerFields))
	for k, v := range olderFields {
		merged[k] = v
	}
	for k, v := range newerFields {
		existing, had := merged[k]
		switch {
		case !had:
			merged[k] = v
		case isPositionField(k):
			merged[k] = maxNumeric(existing, v)
		case isSlice(existing) && isSlice(v):
			merged[k] = unionSlices(existing, v)
		default:
			merged[k] = v // scalar: newer wins
		}
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return newer
	}

	out := *newer
	out.Payload = payload
	return &out
}

func isPositionField(name string) bool {
	return strings.Contains(strings.ToLower(name), "position")
}

func isSlice(v any) bool {
	_, ok := v.([]any)
	return ok
}

func maxNumeric(a, b any) any {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok && af > bf {
		return a
	}
	if bok {
		return b
	}
	return a
}

func unionSlices(a, b any) []any {
	as, _ := a.([]any)
	bs, _ := b.([]any)
	seen := make(map[string]bool, len(as)+len(bs))
	var out []any
	for _, v := range append(append([]any{}, as...), bs...) {
		key, err := json.Marshal(v)
		if err != nil {
			continue
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		out = append(out, v)
	}
	return out
}
