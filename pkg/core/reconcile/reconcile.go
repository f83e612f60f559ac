package reconcile

// FindMissing returns the entities whose cell for the period is the missing
// sentinel. When the column does not exist at all, every entity in the
// matrix is missing: the period is wholly unfetched.
func FindMissing(m *Matrix, period string) []string {
	if m == nil {
		return nil
	}
	if !m.HasPeriod(period) {
		return m.Entities()
	}
	var missing []string
	for _, entity := range m.Entities() {
		if m.Get(entity, period) == nil {
			missing = append(missing, entity)
		}
	}
	return missing
}

// Merge combines an existing matrix with freshly derived values. An
// existing non-missing cell always wins, whatever fresh holds for it;
// fresh values only fill holes. The result carries the union of rows and
// columns from both sides. Neither input is modified.
func Merge(existing, fresh *Matrix) *Matrix {
	merged := NewMatrix()
	for _, m := range []*Matrix{existing, fresh} {
		if m == nil {
			continue
		}
		for entity := range m.cells {
			merged.AddEntity(entity)
		}
		for period := range m.periods {
			merged.AddPeriod(period)
		}
	}

	for _, entity := range merged.Entities() {
		for _, period := range merged.Periods() {
			if existing != nil {
				if v := existing.Get(entity, period); v != nil {
					merged.Set(entity, period, v)
					continue
				}
			}
			if fresh != nil {
				if v := fresh.Get(entity, period); v != nil {
					merged.Set(entity, period, v)
				}
			}
		}
	}
	return merged
}
