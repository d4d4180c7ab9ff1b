package domain

// MergeCandidates unions candidate lists, keeping the first occurrence of each id.
func MergeCandidates(lists ...[]ItemID) []ItemID {
	total := 0
	for _, list := range lists {
		total += len(list)
	}

	merged := make([]ItemID, 0, total)
	seen := make(map[ItemID]struct{}, total)
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}

	return merged
}
