package main

import (
	"bytes"
	"fmt"
	"runtime"
	"time"

	"github.com/gekko3d/raybvh"
	"github.com/gekko3d/raybvh/rt/app"
	"github.com/gekko3d/raybvh/rt/bvh"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/urfave/cli"
)

var logger = raybvh.NewDefaultLogger("raybvh", false)

func setupLogging(ctx *cli.Context) {
	logger.SetLevel(raybvh.LevelWarn)
	if ctx.GlobalBool("v") {
		logger.SetLevel(raybvh.LevelInfo)
	}
	if ctx.GlobalBool("vv") {
		logger.SetLevel(raybvh.LevelDebug)
	}
}

func configFromFlags(ctx *cli.Context) app.Config {
	cfg := app.DefaultConfig()
	cfg.Width = ctx.Int("width")
	cfg.Height = ctx.Int("height")
	cfg.Workers = ctx.Int("workers")
	cfg.FOV = float32(ctx.Float64("fov"))
	cfg.Seed = ctx.Int64("seed")
	cfg.GridSide = ctx.Int("side")
	cfg.TrisPerMesh = ctx.Int("tris")
	cfg.TriFiles = ctx.Args()
	if out := ctx.String("out"); out != "" {
		cfg.Output = out
	}
	cfg.Normalize()
	return cfg
}

func renderFrame(ctx *cli.Context) error {
	setupLogging(ctx)
	cfg := configFromFlags(ctx)

	r := app.NewRenderer(cfg.Workers, logger)
	s, err := app.BuildScene(cfg, logger, r.Profiler)
	if err != nil {
		return err
	}
	logger.Infof("scene ready: %d meshes, %d instances", s.MeshCount(), len(s.TLAS.Instances))

	img := r.Render(s, app.NewCamera(cfg))
	start := time.Now()
	if err := app.SaveImage(cfg.Output, img); err != nil {
		return err
	}
	logger.Infof("wrote frame to %s in %s", cfg.Output, time.Since(start))
	logger.Infof("profile\n%s", r.Profiler.Table())
	return nil
}

func bench(ctx *cli.Context) error {
	setupLogging(ctx)
	cfg := configFromFlags(ctx)

	r := app.NewRenderer(cfg.Workers, logger)
	s, err := app.BuildScene(cfg, logger, r.Profiler)
	if err != nil {
		return err
	}
	r.Render(s, app.NewCamera(cfg))

	fmt.Print(hostTable(cfg.Workers))
	fmt.Print(meshTable(app.MeshStats(s), len(s.TLAS.Instances), len(s.TLAS.Nodes)))
	fmt.Print(r.Profiler.Table())

	rays := r.Profiler.Counter(app.CounterRays)
	if d := r.Profiler.Time(app.ScopeRender); d > 0 {
		fmt.Printf("%.2f Mrays/s\n", float64(rays)/d.Seconds()/1e6)
	}
	return nil
}

func meshTable(stats []bvh.Stats, instances, tlasNodes int) string {
	var nodes, leaves, depth, leafTris int
	for _, st := range stats {
		nodes += st.Nodes
		leaves += st.Leaves
		if st.MaxDepth > depth {
			depth = st.MaxDepth
		}
		if st.MaxLeafTris > leafTris {
			leafTris = st.MaxLeafTris
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Structure", "Count", "Nodes", "Leaves", "Max depth", "Max leaf tris"})
	table.Append([]string{
		"BLAS",
		fmt.Sprintf("%d", len(stats)),
		fmt.Sprintf("%d", nodes),
		fmt.Sprintf("%d", leaves),
		fmt.Sprintf("%d", depth),
		fmt.Sprintf("%d", leafTris),
	})
	table.Append([]string{"TLAS", fmt.Sprintf("%d", instances), fmt.Sprintf("%d", tlasNodes), fmt.Sprintf("%d", instances), "", ""})
	table.Render()
	return buf.String()
}

func hostTable(workers int) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Host", "Value"})

	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		table.Append([]string{"CPU", info[0].ModelName})
		table.Append([]string{"Clock", fmt.Sprintf("%.2f GHz", info[0].Mhz/1000)})
	} else if err != nil {
		logger.Warnf("cpu info: %v", err)
	}
	table.Append([]string{"Logical CPUs", fmt.Sprintf("%d", runtime.NumCPU())})
	table.Append([]string{"Workers", fmt.Sprintf("%d", workers)})
	if vm, err := mem.VirtualMemory(); err == nil {
		table.Append([]string{"Memory", fmt.Sprintf("%.1f GiB", float64(vm.Total)/(1<<30))})
	} else {
		logger.Warnf("memory info: %v", err)
	}
	table.Render()
	return buf.String()
}
