package app

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Profiler collects named timings and counters. It is safe for concurrent use.
type Profiler struct {
	mu       sync.Mutex
	order    []string
	timings  map[string]time.Duration
	counters map[string]int64
}

func NewProfiler() *Profiler {
	return &Profiler{
		timings:  make(map[string]time.Duration),
		counters: make(map[string]int64),
	}
}

// Begin starts a scope; calling the returned func adds the elapsed time to name.
func (p *Profiler) Begin(name string) func() {
	start := time.Now()
	return func() {
		p.AddTime(name, time.Since(start))
	}
}

func (p *Profiler) AddTime(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch(name)
	p.timings[name] += d
}

func (p *Profiler) Count(name string, n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch(name)
	p.counters[name] += n
}

func (p *Profiler) Time(name string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timings[name]
}

func (p *Profiler) Counter(name string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters[name]
}

func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = p.order[:0]
	p.timings = make(map[string]time.Duration)
	p.counters = make(map[string]int64)
}

func (p *Profiler) touch(name string) {
	if _, ok := p.timings[name]; ok {
		return
	}
	if _, ok := p.counters[name]; ok {
		return
	}
	p.order = append(p.order, name)
}

// Table renders the collected values in the order they were first recorded.
func (p *Profiler) Table() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Scope", "Time", "Count"})
	for _, name := range p.order {
		row := []string{name, "", ""}
		if d, ok := p.timings[name]; ok {
			row[1] = d.Round(time.Microsecond).String()
		}
		if n, ok := p.counters[name]; ok {
			row[2] = fmt.Sprintf("%d", n)
		}
		table.Append(row)
	}
	table.Render()
	return buf.String()
}
