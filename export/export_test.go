package export

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/pivot/sim"
)

func buildBox(t *testing.T) *sim.Simulation {
	t.Helper()
	opts := sim.DefaultOptions()
	opts.Resolution = 32
	s, err := sim.Build(opts)
	require.NoError(t, err)
	return s
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestWriteMaskPNG(t *testing.T) {
	s := buildBox(t)
	path := filepath.Join(t.TempDir(), "mask.png")
	require.NoError(t, WriteFramePNG(path, s, 2, Overlay{}))

	img := decodePNG(t, path)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	r, _, _, _ := img.At(32, 63).RGBA()
	assert.Equal(t, uint32(0), r, "bottom row is liquid")
	r, _, _, _ = img.At(32, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r, "top row is air")
}

func TestWriteFramePNGDrawsInterface(t *testing.T) {
	s := buildBox(t)
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, WriteFramePNG(path, s, 4, DefaultOverlay))

	img := decodePNG(t, path)
	b := img.Bounds()
	var red int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, _, _ := img.At(x, y).RGBA()
			if r > 0x9000 && g < 0x6000 {
				red++
			}
		}
	}
	// The slab surface spans the whole width.
	assert.Greater(t, red, b.Dx()/2)
}

func TestWriteMeshLayout(t *testing.T) {
	s := buildBox(t)
	path := filepath.Join(t.TempDir(), "mesh.bin")
	require.NoError(t, WriteMesh(path, s.Mesh()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	m := s.Mesh()
	want := 4 + 8*len(m.Positions) + 4 + 4*len(m.Indices)
	assert.Equal(t, int64(want), info.Size())
}

func TestCheckpointRoundTrip(t *testing.T) {
	s := buildBox(t)
	wantLS := s.LevelSet().Clone()
	s.Velocity().Axis(1).Fill(-0.25)
	wantVel := s.Velocity().Clone()

	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, SaveFields(path, s))

	s.LevelSet().Fill(1)
	s.Velocity().Fill([2]float64{})
	require.NoError(t, LoadFields(path, s))

	assert.Equal(t, wantLS.Data, s.LevelSet().Data)
	assert.Equal(t, wantVel.Axis(0).Data, s.Velocity().Axis(0).Data)
	assert.Equal(t, wantVel.Axis(1).Data, s.Velocity().Axis(1).Data)
}

func TestLoadFieldsRejectsTruncated(t *testing.T) {
	s := buildBox(t)
	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 16), 0644))
	assert.Error(t, LoadFields(path, s))
}

func TestMaskRGBA(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 3, 2))
	mask.Pix = []uint8{0, 255, 0, 255, 0, 255}

	px := MaskRGBA(mask, DefaultPalette, nil)
	require.Len(t, px, 6)
	assert.Equal(t, DefaultPalette.Liquid, px[0])
	assert.Equal(t, DefaultPalette.Air, px[1])
	assert.Equal(t, DefaultPalette.Air, px[3])

	// Reuses a large enough buffer.
	buf := make([]color.RGBA, 0, 16)
	out := MaskRGBA(mask, DefaultPalette, buf)
	assert.Equal(t, &buf[:1][0], &out[0])
}

func TestResumeFromCheckpoint(t *testing.T) {
	s := buildBox(t)
	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, SaveFields(path, s))

	r := buildBox(t)
	require.NoError(t, LoadFields(path, r))
	require.NoError(t, r.Resume(3))
	assert.Equal(t, 3, r.Frame())

	cur, init := r.Volume()
	assert.InEpsilon(t, init, cur, 1e-2)
	assert.Greater(t, r.Mesh().NumSegments(), 0)
	assert.Error(t, r.Resume(-1))
}
