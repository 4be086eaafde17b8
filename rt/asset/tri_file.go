package asset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gekko3d/raybvh/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
)

// ReadTris parses the .tri text format: one triangle per line as nine
// space separated floats, v0 v1 v2. Blank lines and lines starting with
// "999" are skipped.
func ReadTris(r io.Reader) ([]bvh.Tri, error) {
	var tris []bvh.Tri
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "999") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 9 {
			return nil, fmt.Errorf("line %d: expected 9 values, got %d", line, len(fields))
		}
		var v [9]float32
		for i := range v {
			f, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: value %d: %w", line, i+1, err)
			}
			v[i] = float32(f)
		}
		tris = append(tris, bvh.NewTri(
			mgl32.Vec3{v[0], v[1], v[2]},
			mgl32.Vec3{v[3], v[4], v[5]},
			mgl32.Vec3{v[6], v[7], v[8]},
		))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tris, nil
}

func LoadTriFile(path string) ([]bvh.Tri, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tris, err := ReadTris(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tris, nil
}
