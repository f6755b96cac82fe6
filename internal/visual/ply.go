// Package visual exports classified element geometry as a color-coded mesh:
// green for added, red for deleted, blue for modified, grey for unchanged.
package visual

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

type rgb struct{ r, g, b uint8 }

var classColors = map[models.Classification]rgb{
	models.ClassAdded:     {0, 170, 0},
	models.ClassDeleted:   {200, 0, 0},
	models.ClassModified:  {40, 90, 220},
	models.ClassUnchanged: {160, 160, 160},
}

// WritePLY merges the meshes of all classified elements into one ASCII PLY
// with per-vertex colors. Deleted elements take their mesh from the old
// version, everything else from the new one. Elements without geometry are
// skipped.
func WritePLY(w io.Writer, res *models.ComparisonResult, oldModel, newModel *models.Model) error {
	oldByID := meshesByID(oldModel)
	newByID := meshesByID(newModel)

	var vertices []models.Vec3
	var colors []rgb
	var faces [][3]int

	for _, v := range res.Verdicts {
		var mesh *models.Mesh
		if v.Classification == models.ClassDeleted {
			mesh = oldByID[v.ID]
		} else {
			mesh = newByID[v.ID]
		}
		if mesh.IsEmpty() {
			continue
		}

		color := classColors[v.Classification]
		offset := len(vertices)
		vertices = append(vertices, mesh.Vertices...)
		for range mesh.Vertices {
			colors = append(colors, color)
		}
		for _, f := range mesh.Faces {
			faces = append(faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment bimdiff change visualization")
	fmt.Fprintf(bw, "element vertex %d\n", len(vertices))
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintln(bw, "property uchar red")
	fmt.Fprintln(bw, "property uchar green")
	fmt.Fprintln(bw, "property uchar blue")
	fmt.Fprintf(bw, "element face %d\n", len(faces))
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for i, vert := range vertices {
		c := colors[i]
		fmt.Fprintf(bw, "%g %g %g %d %d %d\n", vert.X, vert.Y, vert.Z, c.r, c.g, c.b)
	}
	for _, f := range faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write PLY: %w", err)
	}
	return nil
}

func meshesByID(m *models.Model) map[string]*models.Mesh {
	out := make(map[string]*models.Mesh, len(m.Elements))
	for _, el := range m.Elements {
		if el.Geometry != nil {
			out[el.ID] = el.Geometry
		}
	}
	return out
}
