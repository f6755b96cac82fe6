package models

import "math"

// Vec3 is a point or vector in model space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Dist returns the Euclidean distance between v and w.
func (v Vec3) Dist(w Vec3) float64 { return v.Sub(w).Norm() }

// BBox is an axis-aligned bounding box given by its min and max corners.
type BBox struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Size returns the extent of the box along each axis.
func (b BBox) Size() Vec3 { return b.Max.Sub(b.Min) }

// Mesh is a triangulated surface owned by exactly one element. Faces index
// into Vertices. A mesh is immutable once constructed; the summary
// descriptors are derived from it, never set independently.
type Mesh struct {
	Vertices []Vec3   `json:"vertices"`
	Faces    [][3]int `json:"faces"`
}

// IsEmpty reports whether the mesh has no surface to compare.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Faces) == 0 || len(m.Vertices) < 3
}

// Descriptors holds the derived summary shape descriptors of a mesh.
type Descriptors struct {
	Volume      float64 `json:"volume"`
	SurfaceArea float64 `json:"surface_area"`
	Centroid    Vec3    `json:"centroid"`
	BBox        BBox    `json:"bbox"`
}

// Descriptors computes the summary descriptors of the mesh. Volume is the
// signed volume by the divergence theorem and assumes outward-oriented
// triangles; the centroid is the area-weighted surface centroid.
func (m *Mesh) Descriptors() Descriptors {
	var d Descriptors
	if m.IsEmpty() {
		return d
	}

	d.BBox.Min = m.Vertices[0]
	d.BBox.Max = m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		d.BBox.Min.X = math.Min(d.BBox.Min.X, v.X)
		d.BBox.Min.Y = math.Min(d.BBox.Min.Y, v.Y)
		d.BBox.Min.Z = math.Min(d.BBox.Min.Z, v.Z)
		d.BBox.Max.X = math.Max(d.BBox.Max.X, v.X)
		d.BBox.Max.Y = math.Max(d.BBox.Max.Y, v.Y)
		d.BBox.Max.Z = math.Max(d.BBox.Max.Z, v.Z)
	}

	var weighted Vec3
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]

		d.Volume += a.Dot(b.Cross(c)) / 6

		area := b.Sub(a).Cross(c.Sub(a)).Norm() / 2
		d.SurfaceArea += area

		center := a.Add(b).Add(c).Scale(1.0 / 3.0)
		weighted = weighted.Add(center.Scale(area))
	}
	if d.SurfaceArea > 0 {
		d.Centroid = weighted.Scale(1 / d.SurfaceArea)
	}
	d.Volume = math.Abs(d.Volume)

	return d
}
