package app

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfilerCounts(t *testing.T) {
	p := NewProfiler()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Count("rays", 10)
			p.AddTime("render", time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(80), p.Counter("rays"))
	assert.Equal(t, 8*time.Millisecond, p.Time("render"))

	p.Reset()
	assert.Zero(t, p.Counter("rays"))
	assert.Zero(t, p.Time("render"))
}

func TestProfilerTableKeepsOrder(t *testing.T) {
	p := NewProfiler()
	p.AddTime("tlas build", 2*time.Millisecond)
	p.Count("hits", 3)
	end := p.Begin("blas build")
	end()
	p.Count("tlas build", 1)

	out := p.Table()
	assert.Contains(t, out, "Scope")
	tlas := strings.Index(out, "tlas build")
	hits := strings.Index(out, "hits")
	blas := strings.Index(out, "blas build")
	assert.True(t, tlas < hits && hits < blas, out)
	assert.Equal(t, 1, strings.Count(out, "tlas build"))
	assert.Contains(t, out, "2ms")
}
