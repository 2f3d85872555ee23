// Package app runs a diesel2d renderer inside a GLFW window with a fixed
// update then draw loop.
package app

import (
	"runtime"
	"time"

	"github.com/andewx/diesel2d"
	"github.com/andewx/diesel2d/glfwwindow"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gg"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// UpdateArgs is passed to Handler.Update once per frame.
type UpdateArgs struct {
	Control *Control
	Input   *InputState
	Time    *TimeState
}

// DrawArgs is passed to Handler.Draw once per presented frame. Canvas and
// Coordinates are only valid during the call.
type DrawArgs struct {
	Control     *Control
	Input       *InputState
	Time        *TimeState
	Canvas      *gg.Context
	Coordinates *diesel2d.CoordinateSystemHelper
}

// Handler receives the app's frame callbacks.
type Handler interface {
	Update(args UpdateArgs)
	Draw(args DrawArgs) error
	// FatalError is called once before Run returns an error.
	FatalError(err error)
}

// Builder configures the window and renderer of an app.
type Builder struct {
	title           string
	width, height   int
	rendererOptions []diesel2d.Option
}

func NewBuilder() *Builder {
	return &Builder{
		title:  "diesel2d",
		width:  900,
		height: 600,
	}
}

func (b *Builder) WindowTitle(title string) *Builder {
	b.title = title
	return b
}

// InnerSize sets the initial window size in screen coordinates.
func (b *Builder) InnerSize(width, height int) *Builder {
	b.width, b.height = width, height
	return b
}

func (b *Builder) CoordinateSystem(cs diesel2d.CoordinateSystem) *Builder {
	return b.RendererOptions(diesel2d.WithCoordinateSystem(cs))
}

func (b *Builder) AppName(name string) *Builder {
	return b.RendererOptions(diesel2d.WithAppName(name))
}

func (b *Builder) Validation(mode diesel2d.ValidationMode) *Builder {
	return b.RendererOptions(diesel2d.WithValidation(mode))
}

func (b *Builder) PreferDiscreteGPU() *Builder {
	return b.RendererOptions(diesel2d.WithDeviceTypePriority(
		vk.PhysicalDeviceTypeDiscreteGpu, vk.PhysicalDeviceTypeIntegratedGpu))
}

func (b *Builder) PreferIntegratedGPU() *Builder {
	return b.RendererOptions(diesel2d.WithDeviceTypePriority(
		vk.PhysicalDeviceTypeIntegratedGpu, vk.PhysicalDeviceTypeDiscreteGpu))
}

func (b *Builder) PreferFIFOPresentMode() *Builder {
	return b.RendererOptions(diesel2d.WithPresentModePriority(vk.PresentModeFifo))
}

func (b *Builder) PreferMailboxPresentMode() *Builder {
	return b.RendererOptions(diesel2d.WithPresentModePriority(vk.PresentModeMailbox, vk.PresentModeFifo))
}

func (b *Builder) Plugin(p diesel2d.Plugin) *Builder {
	return b.RendererOptions(diesel2d.WithPlugin(p))
}

// RendererOptions appends raw renderer options. Later options win.
func (b *Builder) RendererOptions(opts ...diesel2d.Option) *Builder {
	b.rendererOptions = append(b.rendererOptions, opts...)
	return b
}

// Run opens the window and loops until the handler or the window asks to
// terminate. It must be called from the main goroutine.
func (b *Builder) Run(handler Handler) (err error) {
	defer func() {
		if err != nil {
			handler.FatalError(err)
		}
	}()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "glfw init")
	}
	defer glfw.Terminate()
	if !glfw.VulkanSupported() {
		return errors.Wrap(diesel2d.ErrInit, "glfw")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(b.width, b.height, b.title, nil, nil)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	defer win.Destroy()
	window := glfwwindow.New(win)

	renderer, err := diesel2d.NewRenderer(window, b.rendererOptions...)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	control := &Control{}
	input := NewInputState(window.PhysicalSize(), window.ScaleFactor())
	attachCallbacks(win, window, input, control)
	times := NewTimeState()

	var fpsEvent PeriodicEvent
	for !control.ShouldTerminate() {
		glfw.PollEvents()
		times.Update()
		if fpsEvent.TryTakeEvent(times.CurrentInstant(), time.Second) {
			diesel2d.Logger().Debug("frame rate",
				"fps", times.UpdatesPerSecond(),
				"fps_smoothed", times.UpdatesPerSecondSmoothed(),
			)
		}

		handler.Update(UpdateArgs{Control: control, Input: input, Time: times})
		input.EndFrame()

		err := renderer.Draw(func(canvas *gg.Context, coords *diesel2d.CoordinateSystemHelper) error {
			return handler.Draw(DrawArgs{
				Control:     control,
				Input:       input,
				Time:        times,
				Canvas:      canvas,
				Coordinates: coords,
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// attachCallbacks routes GLFW events into the input state. Cursor positions
// arrive in screen coordinates and are scaled to framebuffer pixels.
func attachCallbacks(win *glfw.Window, window *glfwwindow.Window, input *InputState, control *Control) {
	win.SetCloseCallback(func(*glfw.Window) {
		control.EnqueueTerminate()
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		input.handleKey(key, action)
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		input.handleMouseButton(button, action)
	})
	win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		sx, sy := cursorScale(w)
		input.handleMouseMove(Position{X: x * sx, Y: y * sy})
	})
	win.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		input.handleScroll(dx, dy)
	})
	win.SetFramebufferSizeCallback(func(*glfw.Window, int, int) {
		input.handleResize(window.PhysicalSize())
	})
	win.SetContentScaleCallback(func(*glfw.Window, float32, float32) {
		input.handleScale(window.ScaleFactor())
	})
}

func cursorScale(w *glfw.Window) (float64, float64) {
	fw, fh := w.GetFramebufferSize()
	ww, wh := w.GetSize()
	if ww <= 0 || wh <= 0 {
		return 1, 1
	}
	return float64(fw) / float64(ww), float64(fh) / float64(wh)
}
