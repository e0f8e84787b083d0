package geom

// UnionAll merges a list of geometries into one via balanced pairwise unions.
// The tree-shaped merge keeps intermediate operands comparably sized, which
// is substantially cheaper than folding left over tens of thousands of
// polygons.
//
// The inputs are not released; the returned geometry is a new value owned by
// the caller. An error from any pairwise union aborts the merge.
func UnionAll(geoms []Geometry) (Geometry, error) {
	switch len(geoms) {
	case 0:
		return nil, nil
	case 1:
		return geoms[0].Clone(), nil
	}

	work := make([]Geometry, len(geoms))
	for i, g := range geoms {
		work[i] = g.Clone()
	}

	for len(work) > 1 {
		var merged []Geometry
		for i := 0; i < len(work); i += 2 {
			if i+1 == len(work) {
				merged = append(merged, work[i])
				continue
			}
			u, err := work[i].Union(work[i+1])
			work[i].Release()
			work[i+1].Release()
			if err != nil {
				for _, m := range merged {
					m.Release()
				}
				for _, w := range work[i+2:] {
					w.Release()
				}
				return nil, err
			}
			merged = append(merged, u)
		}
		work = merged
	}
	return work[0], nil
}

// UnionSequential folds the geometries left to right with pairwise unions.
// It is the fallback path when the balanced merge fails; a per-pair failure
// skips that operand instead of aborting.
func UnionSequential(geoms []Geometry) (Geometry, error) {
	var acc Geometry
	for _, g := range geoms {
		if acc == nil {
			acc = g.Clone()
			continue
		}
		u, err := acc.Union(g)
		if err != nil {
			continue
		}
		acc.Release()
		acc = u
	}
	return acc, nil
}
