// Command hello opens a 900x600 window and draws a circle at the center in
// logical coordinates, with a small overlay bar in the corner.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/andewx/diesel2d"
	"github.com/andewx/diesel2d/app"
	"github.com/andewx/diesel2d/overlay"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gg"
)

type hello struct {
	bar    *overlay.Plugin
	radius float64
}

func (h *hello) Update(args app.UpdateArgs) {
	if args.Input.IsKeyJustDown(glfw.KeyEscape) {
		args.Control.EnqueueTerminate()
	}
	if dy := args.Input.MouseWheelDelta().Y; dy != 0 {
		h.radius = max(5, h.radius+dy*5)
	}
	if pos, ok := args.Input.MouseJustClickedPosition(glfw.MouseButtonLeft); ok {
		h.bar.SetRects(overlay.Rect{X: int32(pos.X) - 10, Y: int32(pos.Y) - 10, Width: 20, Height: 20})
	}
}

func (h *hello) Draw(args app.DrawArgs) error {
	canvas := args.Canvas
	canvas.ClearWithColor(gg.RGBA{R: 0, G: 0, B: 0, A: 1})
	canvas.SetRGBA(0.2, 0.6, 1, 1)
	canvas.DrawCircle(450, 300, h.radius)
	return canvas.Fill()
}

func (h *hello) FatalError(err error) {
	diesel2d.Logger().Error("fatal", "err", err)
}

func main() {
	configPath := flag.String("config", "", "optional TOML renderer config")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	diesel2d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	bar := overlay.New([4]float32{1, 0.5, 0, 1}, overlay.Rect{X: 8, Y: 8, Width: 64, Height: 8})
	builder := app.NewBuilder().
		WindowTitle("hello diesel2d").
		InnerSize(900, 600).
		CoordinateSystem(diesel2d.LogicalCoordinates()).
		Plugin(bar)

	if *configPath != "" {
		cfg, err := diesel2d.LoadConfig(*configPath)
		if err != nil {
			diesel2d.Logger().Error("load config", "err", err)
			os.Exit(1)
		}
		opts, err := cfg.Options()
		if err != nil {
			diesel2d.Logger().Error("apply config", "err", err)
			os.Exit(1)
		}
		builder.RendererOptions(opts...)
	}

	if err := builder.Run(&hello{bar: bar, radius: 50}); err != nil {
		os.Exit(1)
	}
}
