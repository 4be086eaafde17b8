package app

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// SaveImage writes img to path, as BMP for a .bmp extension and PNG otherwise.
func SaveImage(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("save image: %w", cerr)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
