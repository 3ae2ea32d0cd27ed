// Package export writes simulation frames and raw solver data to disk.
package export

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/fogleman/gg"

	"github.com/pthm-cable/pivot/field"
	"github.com/pthm-cable/pivot/sim"
	"github.com/pthm-cable/pivot/solver"
)

// Overlay controls what is drawn over the liquid mask.
type Overlay struct {
	Mesh      bool
	LineWidth float64
	Color     color.Color
}

// DefaultOverlay draws the interface in red.
var DefaultOverlay = Overlay{Mesh: true, LineWidth: 1.5, Color: color.RGBA{R: 220, G: 40, B: 40, A: 255}}

// WriteMaskPNG saves a liquid mask as a single channel PNG.
func WriteMaskPNG(path string, mask *image.Gray) error {
	if err := gg.SavePNG(path, mask); err != nil {
		return fmt.Errorf("writing mask %s: %w", path, err)
	}
	return nil
}

// RenderFrame draws the interface mesh over a mask produced by
// sim.Simulation.Mask. The mask must cover the domain box of topo.
func RenderFrame(mask *image.Gray, mesh *solver.SurfaceMesh, topo *field.Staggered, ov Overlay) image.Image {
	dc := gg.NewContextForImage(mask)
	if !ov.Mesh || mesh.NumSegments() == 0 {
		return dc.Image()
	}

	b := mask.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	o := topo.DomainOrigin()
	l := topo.DomainLengths()
	toPixel := func(i uint32) (float64, float64) {
		p := mesh.Positions[i]
		return (p.X - o.X) / l.X * w, h - (p.Y-o.Y)/l.Y*h
	}

	dc.SetColor(ov.Color)
	dc.SetLineWidth(ov.LineWidth)
	for i := 0; i < len(mesh.Indices); i += 2 {
		x0, y0 := toPixel(mesh.Indices[i])
		x1, y1 := toPixel(mesh.Indices[i+1])
		dc.DrawLine(x0, y0, x1, y1)
	}
	dc.Stroke()
	return dc.Image()
}

// WriteFramePNG rasterizes s with factor pixels per cell and saves it,
// with the interface drawn on top when ov.Mesh is set.
func WriteFramePNG(path string, s *sim.Simulation, factor int, ov Overlay) error {
	mask := s.Mask(factor)
	if !ov.Mesh {
		return WriteMaskPNG(path, mask)
	}
	img := RenderFrame(mask, s.Mesh(), s.Topology(), ov)
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("writing frame %s: %w", path, err)
	}
	return nil
}

// WriteMesh saves the interface mesh in its binary layout.
func WriteMesh(path string, mesh *solver.SurfaceMesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mesh file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := mesh.Export(w); err != nil {
		f.Close()
		return fmt.Errorf("writing mesh: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing mesh: %w", err)
	}
	return f.Close()
}

// SaveFields checkpoints the level set followed by both velocity
// components as raw little-endian float64.
func SaveFields(path string, s *sim.Simulation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating checkpoint: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := s.LevelSet().Save(w); err != nil {
		f.Close()
		return fmt.Errorf("saving level set: %w", err)
	}
	if err := s.Velocity().Save(w); err != nil {
		f.Close()
		return fmt.Errorf("saving velocity: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return f.Close()
}

// LoadFields restores a checkpoint written by SaveFields into s, which
// must have been built with the same grid.
func LoadFields(path string, s *sim.Simulation) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening checkpoint: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if err := s.LevelSet().Load(r); err != nil {
		return fmt.Errorf("loading level set: %w", err)
	}
	if err := s.Velocity().Load(r); err != nil {
		return fmt.Errorf("loading velocity: %w", err)
	}
	return nil
}

// Palette colors liquid and air pixels of a mask.
type Palette struct {
	Liquid color.RGBA
	Air    color.RGBA
}

// DefaultPalette shades liquid blue on a light background.
var DefaultPalette = Palette{
	Liquid: color.RGBA{R: 40, G: 90, B: 200, A: 255},
	Air:    color.RGBA{R: 245, G: 245, B: 245, A: 255},
}

// MaskRGBA converts a mask to row-major RGBA pixels, blending between the
// palette colors by gray level. dst is reused when large enough.
func MaskRGBA(mask *image.Gray, pal Palette, dst []color.RGBA) []color.RGBA {
	b := mask.Bounds()
	n := b.Dx() * b.Dy()
	if cap(dst) < n {
		dst = make([]color.RGBA, n)
	}
	dst = dst[:n]
	lerp := func(a, b uint8, t uint32) uint8 {
		return uint8((uint32(a)*(255-t) + uint32(b)*t) / 255)
	}
	for y := 0; y < b.Dy(); y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x, g := range row {
			t := uint32(g)
			dst[y*b.Dx()+x] = color.RGBA{
				R: lerp(pal.Liquid.R, pal.Air.R, t),
				G: lerp(pal.Liquid.G, pal.Air.G, t),
				B: lerp(pal.Liquid.B, pal.Air.B, t),
				A: 255,
			}
		}
	}
	return dst
}
