// cmd/splash_bench/main.go
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"robonexus_go/internal/assets"
	"robonexus_go/internal/config"
	"robonexus_go/internal/host"
	"robonexus_go/internal/loading"
	"robonexus_go/internal/perf"
	"robonexus_go/internal/render"
	"robonexus_go/internal/ui"
)

// headlessCanvas 软件画布，替代窗口里的 ui.Canvas
type headlessCanvas struct {
	*ui.Layer
	*render.HeadlessSurface
}

func main() {
	frameMS := flag.Float64("frame-ms", 16.7, "模拟的每帧耗时（毫秒），>33 会触发降档")
	limit := flag.Duration("limit", 20*time.Second, "模拟时长上限")
	maxDur := flag.Duration("max-duration", 10*time.Second, "加载画面超时")
	skipAt := flag.Duration("skip-at", 0, "在该时刻点击跳过，0 表示不跳过")
	unloadAt := flag.Duration("unload-at", 0, "在该时刻模拟关闭窗口，0 表示不关闭")
	failCompile := flag.Bool("fail-compile", false, "模拟着色器编译失败")
	cpuProf := flag.String("cpuprofile", "", "写 CPU profile 的路径")
	verbose := flag.Bool("v", false, "输出 debug 日志")
	flag.Parse()

	if *frameMS <= 0 {
		log.Fatal("frame-ms must be positive")
	}
	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := config.NewLogger(os.Stderr, level)

	shaders, err := assets.LiquidShaders()
	if err != nil {
		log.Fatal(err)
	}

	clock := host.NewManualClock()
	loop := host.NewLoop(clock)
	life := host.NewLifecycle()

	surface := render.NewHeadlessSurface(render.TextureWidth, render.TextureHeight)
	surface.FailCompile = *failCompile
	canvas := &headlessCanvas{Layer: ui.NewLayer(0), HeadlessSurface: surface}
	screen := ui.NewLayer(1)
	content := ui.NewLayer(0)
	skip := ui.NewButton(image.Rect(0, 0, 120, 40), "SKIP")

	sel := loading.DefaultSelectors()
	doc := ui.NewDocument()
	doc.Register(sel.Canvas, canvas)
	doc.Register(sel.Screen, screen)
	doc.Register(sel.Content, content)
	doc.Register(sel.Skip, skip)

	opts := loading.DefaultOptions()
	opts.MaxDuration = *maxDur
	initialized := 0
	ctrl := loading.NewController(opts, loading.Deps{
		Document:        doc,
		Loop:            loop,
		Lifecycle:       life,
		Shaders:         shaders,
		Logger:          logger,
		NewFrameMetrics: perf.NewFrameMetrics,
		NewQuality:      perf.NewQualityController,
		Initializers: []loading.Initializer{
			{Name: "page", Run: func() { initialized++ }},
		},
		OnPhase: func(from, to loading.Phase) {
			fmt.Printf("%8.3fs  %-14s -> %s\n", clock.Now().Seconds(), from, to)
		},
	})

	fmt.Printf("Simulating loading screen at %.1f ms/frame...\n", *frameMS)
	wall := time.Now()
	ok := ctrl.Init()
	frame := time.Duration(*frameMS * float64(time.Millisecond))
	skipped, unloaded := false, false
	for clock.Now() < *limit {
		if (ctrl.Phase().Terminal() || life.Unloaded()) && loop.PendingFrames() == 0 && loop.ActiveTimers() == 0 {
			break
		}
		clock.Advance(frame)
		if *skipAt > 0 && !skipped && clock.Now() >= *skipAt {
			skipped = true
			skip.Activate()
		}
		if *unloadAt > 0 && !unloaded && clock.Now() >= *unloadAt {
			unloaded = true
			life.Unload()
		}
		loop.Tick()
	}

	snap := ctrl.Snapshot()
	st := snap.State
	dev := surface.Device()
	fmt.Println()
	fmt.Printf("init ok:        %v\n", ok)
	fmt.Printf("phase:          %s (exit %s)\n", st.Phase, st.Exit)
	fmt.Printf("simulated:      %v in %d ticks\n", clock.Now(), loop.Ticks())
	fmt.Printf("quality:        %s\n", snap.Quality)
	fmt.Printf("skipped:        %v  timed out: %v  released: %v\n", st.Skipped, st.TimedOut, st.Released)
	if st.ErrorMessage != "" {
		fmt.Printf("error:          %s\n", st.ErrorMessage)
	}
	fmt.Printf("content:        opacity %.2f, loading screen removed %v\n", content.Opacity(), screen.Removed())
	fmt.Printf("initializers:   %d\n", initialized)
	if dev != nil {
		fmt.Printf("gpu:            %d draws, %d live objects, lost %v\n", dev.Draws, dev.Live(), dev.IsLost())
	}
	fmt.Printf("wall time:      %v\n", time.Since(wall))
}
