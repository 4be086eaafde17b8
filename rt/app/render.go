package app

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/gekko3d/raybvh"
	"github.com/gekko3d/raybvh/rt/bvh"
	"github.com/gekko3d/raybvh/rt/core"
)

const (
	ScopeBLAS   = "blas build"
	ScopeTLAS   = "tlas build"
	ScopeRender = "render"
	CounterRays = "rays"
	CounterHits = "hits"
)

// Renderer casts one primary ray per pixel and shades hits by their
// barycentric coordinates.
type Renderer struct {
	Workers  int
	Profiler *Profiler
	logger   raybvh.Logger
}

func NewRenderer(workers int, logger raybvh.Logger) *Renderer {
	if workers <= 0 {
		workers = 1
	}
	return &Renderer{
		Workers:  workers,
		Profiler: NewProfiler(),
		logger:   raybvh.OrNop(logger),
	}
}

// Render traces the scene through cam. The scene must already be committed
// and must not change until Render returns.
func (r *Renderer) Render(s *core.Scene, cam *core.Camera) *image.RGBA {
	defer r.Profiler.Begin(ScopeRender)()

	img := image.NewRGBA(image.Rect(0, 0, cam.Width, cam.Height))
	rows := make(chan int, cam.Height)
	for y := 0; y < cam.Height; y++ {
		rows <- y
	}
	close(rows)

	var hits atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < r.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				rowHits := 0
				for x := 0; x < cam.Width; x++ {
					ray := cam.PixelRay(x, y)
					hit, ok := ray.IntersectTLAS(s.TLAS)
					if ok {
						rowHits++
					}
					img.SetRGBA(x, y, Shade(hit, ok))
				}
				hits.Add(int64(rowHits))
			}
		}()
	}
	wg.Wait()

	rays := int64(cam.Width * cam.Height)
	r.Profiler.Count(CounterRays, rays)
	r.Profiler.Count(CounterHits, hits.Load())
	r.logger.Debugf("rendered %dx%d with %d workers, %d/%d rays hit",
		cam.Width, cam.Height, r.Workers, hits.Load(), rays)
	return img
}

// Shade maps a hit to (u, v, 1-u-v) and a miss to black.
func Shade(hit bvh.Hit, ok bool) color.RGBA {
	if !ok {
		return color.RGBA{A: 255}
	}
	w := 1 - hit.U - hit.V
	return color.RGBA{
		R: channel(hit.U),
		G: channel(hit.V),
		B: channel(w),
		A: 255,
	}
}

func channel(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f * 255)
}
