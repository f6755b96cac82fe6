package compare

import (
	"math"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

// ShapeDiff produces the shape tier diff for a matched pair. Both mesh
// surfaces are sampled on a fixed-resolution 3D grid and the symmetric
// Hausdorff distance between the two sample sets is measured against the
// absolute threshold. An empty mesh on either side cannot be sampled and is
// reported as changed with an infinite distance sentinel, never silently
// treated as unchanged.
func ShapeDiff(old, new *models.Mesh, resolution int, threshold float64) models.TierDiff {
	diff := models.TierDiff{
		Tier:           models.TierShape,
		GridResolution: resolution,
		Threshold:      threshold,
	}

	if old.IsEmpty() || new.IsEmpty() {
		return degenerateShapeDiff(diff, old, new)
	}

	oldSamples, oldCell := sampleGrid(old, resolution)
	newSamples, newCell := sampleGrid(new, resolution)
	if len(oldSamples) == 0 || len(newSamples) == 0 {
		return degenerateShapeDiff(diff, old, new)
	}

	dist := hausdorff(oldSamples, newSamples, math.Max(oldCell, newCell))
	diff.Distance = models.Distance(dist)
	if dist > threshold {
		diff.Changed = true
		diff.Entries = append(diff.Entries, models.FieldDiff{Path: "hausdorff", New: dist})
	}
	return diff
}

func degenerateShapeDiff(diff models.TierDiff, old, new *models.Mesh) models.TierDiff {
	diff.Changed = true
	diff.Distance = models.Distance(math.Inf(1))
	diff.Entries = append(diff.Entries, models.FieldDiff{
		Path: "mesh",
		Old:  presence(!old.IsEmpty()),
		New:  presence(!new.IsEmpty()),
	})
	return diff
}

// sampleGrid samples the mesh surface by projecting the centers of a
// fixed-resolution grid over the bounding box onto the nearest surface
// point. Grid sampling is independent of the triangulation, so retriangulated
// but identical surfaces sample to near-identical point sets. It returns the
// samples and the grid cell size, which the nearest-neighbour index reuses.
func sampleGrid(m *models.Mesh, resolution int) ([]models.Vec3, float64) {
	desc := m.Descriptors()
	size := desc.BBox.Size()

	longest := math.Max(size.X, math.Max(size.Y, size.Z))
	if longest == 0 {
		// Degenerate extent: every vertex coincides, sample the vertices.
		return append([]models.Vec3(nil), m.Vertices...), 1
	}
	cell := longest / float64(resolution)

	nx := axisCells(size.X, cell)
	ny := axisCells(size.Y, cell)
	nz := axisCells(size.Z, cell)
	sx := size.X / float64(nx)
	sy := size.Y / float64(ny)
	sz := size.Z / float64(nz)

	samples := make([]models.Vec3, 0, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				p := models.Vec3{
					X: desc.BBox.Min.X + (float64(i)+0.5)*sx,
					Y: desc.BBox.Min.Y + (float64(j)+0.5)*sy,
					Z: desc.BBox.Min.Z + (float64(k)+0.5)*sz,
				}
				samples = append(samples, closestSurfacePoint(m, p))
			}
		}
	}
	return samples, cell
}

func axisCells(extent, cell float64) int {
	n := int(math.Ceil(extent / cell))
	if n < 1 {
		return 1
	}
	return n
}

func closestSurfacePoint(m *models.Mesh, p models.Vec3) models.Vec3 {
	best := m.Vertices[m.Faces[0][0]]
	bestDist := math.Inf(1)
	for _, f := range m.Faces {
		q := closestPointOnTriangle(p, m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
		if d := p.Dist(q); d < bestDist {
			bestDist = d
			best = q
		}
	}
	return best
}

// closestPointOnTriangle returns the point of triangle abc closest to p,
// via the Voronoi-region case analysis.
func closestPointOnTriangle(p, a, b, c models.Vec3) models.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Scale(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Scale(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Scale(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// hausdorff computes the symmetric Hausdorff distance between two sample
// sets: the maximum over both directions of the worst-case nearest-neighbour
// distance. Nearest-neighbour queries go through a uniform grid bucket index
// sized to the sampling grid, so the cost stays near O(n) for well-spread
// samples instead of O(n*m).
func hausdorff(a, b []models.Vec3, cell float64) float64 {
	gridA := newPointGrid(a, cell)
	gridB := newPointGrid(b, cell)

	var dist float64
	for _, p := range a {
		if d := gridB.nearestDist(p); d > dist {
			dist = d
		}
	}
	for _, p := range b {
		if d := gridA.nearestDist(p); d > dist {
			dist = d
		}
	}
	return dist
}

// pointGrid buckets points into uniform cubic cells for nearest-neighbour
// queries by expanding shell search.
type pointGrid struct {
	cell    float64
	buckets map[[3]int][]models.Vec3
	minIdx  [3]int
	maxIdx  [3]int
}

func newPointGrid(pts []models.Vec3, cell float64) *pointGrid {
	if cell <= 0 {
		cell = 1
	}
	g := &pointGrid{cell: cell, buckets: make(map[[3]int][]models.Vec3)}
	for i, p := range pts {
		idx := g.cellOf(p)
		g.buckets[idx] = append(g.buckets[idx], p)
		if i == 0 {
			g.minIdx, g.maxIdx = idx, idx
			continue
		}
		for axis := 0; axis < 3; axis++ {
			if idx[axis] < g.minIdx[axis] {
				g.minIdx[axis] = idx[axis]
			}
			if idx[axis] > g.maxIdx[axis] {
				g.maxIdx[axis] = idx[axis]
			}
		}
	}
	return g
}

func (g *pointGrid) cellOf(p models.Vec3) [3]int {
	return [3]int{
		int(math.Floor(p.X / g.cell)),
		int(math.Floor(p.Y / g.cell)),
		int(math.Floor(p.Z / g.cell)),
	}
}

// nearestDist returns the distance from p to its nearest bucketed point.
// Shells are scanned outward; once a candidate is found, the search stops as
// soon as the next shell cannot hold anything closer.
func (g *pointGrid) nearestDist(p models.Vec3) float64 {
	base := g.cellOf(p)
	maxRing := 0
	for axis := 0; axis < 3; axis++ {
		if d := base[axis] - g.minIdx[axis]; d > maxRing {
			maxRing = d
		}
		if d := g.maxIdx[axis] - base[axis]; d > maxRing {
			maxRing = d
		}
	}

	best := math.Inf(1)
	for ring := 0; ring <= maxRing; ring++ {
		if !math.IsInf(best, 1) && float64(ring-1)*g.cell > best {
			break
		}
		g.scanShell(base, ring, p, &best)
	}
	return best
}

func (g *pointGrid) scanShell(base [3]int, ring int, p models.Vec3, best *float64) {
	for dx := -ring; dx <= ring; dx++ {
		for dy := -ring; dy <= ring; dy++ {
			for dz := -ring; dz <= ring; dz++ {
				if maxAbs3(dx, dy, dz) != ring {
					continue
				}
				idx := [3]int{base[0] + dx, base[1] + dy, base[2] + dz}
				for _, q := range g.buckets[idx] {
					if d := p.Dist(q); d < *best {
						*best = d
					}
				}
			}
		}
	}
}

func maxAbs3(a, b, c int) int {
	m := a
	if m < 0 {
		m = -m
	}
	if b < 0 {
		b = -b
	}
	if b > m {
		m = b
	}
	if c < 0 {
		c = -c
	}
	if c > m {
		m = c
	}
	return m
}
