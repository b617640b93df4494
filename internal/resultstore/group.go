package resultstore

// mergeGroups implements spec §4.6's grouping rule for a duplicate pair
// pathA/pathB: allocate a fresh group if neither side has one, adopt the
// existing group if exactly one side has one, or merge the
// lower-numbered group into the higher-numbered one (reassigning every
// result and image currently in the lower group) if both sides already
// belong to different groups. Caller must hold s.mu.
func (s *Store) mergeGroups(pathA, pathB string) int {
	groupA, hasA := s.groupOf[pathA]
	groupB, hasB := s.groupOf[pathB]

	switch {
	case !hasA && !hasB:
		s.groupNext++
		id := s.groupNext
		s.groupOf[pathA] = id
		s.groupOf[pathB] = id
		return id

	case hasA && !hasB:
		s.groupOf[pathB] = groupA
		return groupA

	case !hasA && hasB:
		s.groupOf[pathA] = groupB
		return groupB

	case groupA == groupB:
		return groupA

	default:
		low, high := groupA, groupB
		if low > high {
			low, high = high, low
		}
		s.reassignGroup(low, high)
		return high
	}
}

// reassignGroup moves every result and interned image currently in
// group from into group to.
func (s *Store) reassignGroup(from, to int) {
	for _, r := range s.results {
		if r.Group == from {
			r.Group = to
		}
	}
	for path, id := range s.groupOf {
		if id == from {
			s.groupOf[path] = to
			if info, ok := s.images[path]; ok {
				info.Group = to
			}
		}
	}
}
