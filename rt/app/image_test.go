package app

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeTriFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 100), B: 7, A: 255})
		}
	}
	return img
}

func TestSaveImage(t *testing.T) {
	specs := []struct {
		name   string
		decode func(f *os.File) (image.Image, error)
	}{
		{"frame.png", func(f *os.File) (image.Image, error) { return png.Decode(f) }},
		{"frame.BMP", func(f *os.File) (image.Image, error) { return bmp.Decode(f) }},
	}
	src := testImage()

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), spec.name)
			require.NoError(t, SaveImage(path, src))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			got, err := spec.decode(f)
			require.NoError(t, err)

			require.Equal(t, src.Bounds(), got.Bounds())
			for y := 0; y < 3; y++ {
				for x := 0; x < 4; x++ {
					r0, g0, b0, _ := src.At(x, y).RGBA()
					r1, g1, b1, _ := got.At(x, y).RGBA()
					assert.Equal(t, []uint32{r0, g0, b0}, []uint32{r1, g1, b1})
				}
			}
		})
	}
}

func TestSaveImageBadPath(t *testing.T) {
	err := SaveImage(filepath.Join(t.TempDir(), "missing", "frame.png"), testImage())
	assert.Error(t, err)
}
