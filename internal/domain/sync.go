package domain

// HasDrift reports whether any two Ready members disagree on the play flag
// or are further apart than the room's drift threshold.
func (r *Room) HasDrift() bool {
	ready := make([]Ready, 0, r.members.Length())
	for _, member := range r.members.list {
		if state, ok := AsReady(member.State); ok {
			ready = append(ready, state)
		}
	}

	for i := range ready {
		for j := i + 1; j < len(ready); j++ {
			if drifted(ready[i], ready[j], r.driftThresholdSecs) {
				return true
			}
		}
	}

	return false
}

func drifted(a, b Ready, thresholdSecs uint64) bool {
	if a.Playing != b.Playing {
		return true
	}

	return absDiff(a.PositionSecs, b.PositionSecs) > thresholdSecs
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
