package a2ui

import "log/slog"

// MergeByID merges an incoming batch into an existing tree: components with
// a matching ID are replaced in place, new IDs are appended in batch order.
// The existing order is preserved so incremental updates never reshuffle the
// tree. Components without an ID cannot be addressed and are dropped.
func MergeByID(existing, incoming []Component, logger *slog.Logger) []Component {
	if logger == nil {
		logger = slog.Default()
	}

	index := make(map[string]int, len(existing))
	merged := make([]Component, 0, len(existing)+len(incoming))
	for _, c := range existing {
		if c.ID == "" {
			continue
		}
		index[c.ID] = len(merged)
		merged = append(merged, c)
	}

	for _, c := range incoming {
		if c.ID == "" {
			logger.Warn("a2ui: dropping component without id", "kind", c.Kind)
			continue
		}
		if i, ok := index[c.ID]; ok {
			merged[i] = c
		} else {
			index[c.ID] = len(merged)
			merged = append(merged, c)
		}
	}
	return merged
}
