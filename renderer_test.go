package diesel2d

import (
	"errors"
	"runtime"
	"testing"
	"unsafe"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// handleID gives vk handles a comparable identity. assert.Equal would
// compare the pointees, which are all alike.
// handleID takes a Vulkan handle (a pointer to an incomplete C struct, which
// cannot itself be a type argument) and returns its pointer value.
func handleID[T any](h T) uintptr {
	return *(*uintptr)(unsafe.Pointer(&h))
}

func handleIDs[T any](hs []T) []uintptr {
	ids := make([]uintptr, len(hs))
	for i, h := range hs {
		ids[i] = handleID(h)
	}
	return ids
}

func dummyShaderCode() ([]uint32, error) {
	return []uint32{0x07230203, 0x00010000}, nil
}

func newTestRenderer(t *testing.T, d *fakeDriver, w *fakeWindow, opts ...Option) *Renderer {
	t.Helper()
	opts = append([]Option{WithDriver(d), withShaderCode(dummyShaderCode)}, opts...)
	r, err := NewRenderer(w, opts...)
	require.NoError(t, err)
	return r
}

// frameSubmits filters out setup and upload submissions.
func frameSubmits(d *fakeDriver) []fakeSubmit {
	var out []fakeSubmit
	for _, s := range d.submits {
		if len(s.signalSemaphores) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func lastFrameSubmit(t *testing.T, d *fakeDriver) fakeSubmit {
	t.Helper()
	submits := frameSubmits(d)
	require.NotEmpty(t, submits)
	return submits[len(submits)-1]
}

func assertCleanShutdown(t *testing.T, d *fakeDriver, r *Renderer) {
	t.Helper()
	r.Destroy()
	assert.Empty(t, d.liveKinds())
	assert.Empty(t, d.problems)
}

func TestRendererFreshStartup(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w, WithCoordinateSystem(LogicalCoordinates()))

	var drawn bool
	err := r.Draw(func(canvas *gg.Context, coords *CoordinateSystemHelper) error {
		drawn = true
		assert.Equal(t, gg.Identity(), canvas.GetTransform())
		assert.Equal(t, uint32(900), coords.SurfaceExtent().Width)
		canvas.ClearWithColor(gg.RGBA{A: 1})
		canvas.SetRGBA(1, 1, 1, 1)
		canvas.DrawCircle(450, 300, 50)
		return canvas.Fill()
	})
	require.NoError(t, err)
	assert.True(t, drawn)

	assert.Len(t, d.presents, 1)
	assert.Equal(t, 1, r.SyncFrameIndex())
	assert.True(t, d.fences[r.Swapchain().Sync(0).InFlight])
	assert.Equal(t, 3, d.copies, "vertex, index and one surface upload")
	assert.False(t, r.NeedsRebuild())

	assertCleanShutdown(t, d, r)
}

func TestRendererResizeRebuildsBeforeAcquire(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)
	require.NoError(t, r.Draw(nil))

	old := r.Swapchain().Handle()
	oldViewHandles := r.Surfaces().Views()
	oldSetHandles := r.Compositor().DescriptorSets()
	oldViews, oldSets := handleIDs(oldViewHandles), handleIDs(oldSetHandles)
	acquires := d.acquires

	d.imageCount = 4
	w.physical = PhysicalSize{Width: 1280, Height: 720}
	require.NoError(t, r.Draw(nil))

	require.Len(t, d.swapchainOld, 2)
	assert.Nil(t, d.swapchainOld[0])
	assert.Equal(t, handleID(old), handleID(d.swapchainOld[1]))
	assert.Equal(t, acquires+1, d.acquires)
	assert.NotContains(t, d.live, unsafe.Pointer(old))

	assert.Equal(t, uint32(1280), r.SwapchainExtent().Width)
	assert.Equal(t, uint32(720), r.SwapchainExtent().Height)
	assert.Equal(t, 4, r.ImageCount())
	assert.Equal(t, 4, r.Surfaces().Len())
	assert.Len(t, r.Compositor().Framebuffers(), 4)
	assert.Len(t, r.Compositor().CommandBuffers(), 4)
	assert.Len(t, r.Compositor().DescriptorSets(), 4)
	for _, id := range oldViews {
		assert.NotContains(t, handleIDs(r.Surfaces().Views()), id)
	}
	for _, id := range oldSets {
		assert.NotContains(t, handleIDs(r.Compositor().DescriptorSets()), id)
	}

	present := d.presents[len(d.presents)-1]
	assert.Equal(t, handleID(r.Swapchain().Handle()), handleID(present.swapchain))
	assert.Empty(t, d.problems)
	runtime.KeepAlive(oldViewHandles)
	runtime.KeepAlive(oldSetHandles)

	assertCleanShutdown(t, d, r)
}

func TestRendererSuboptimalPresentLatchesRebuild(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	d.presentResults = []vk.Result{vk.Suboptimal}
	require.NoError(t, r.Draw(nil))
	assert.True(t, r.NeedsRebuild())
	assert.Len(t, d.swapchainOld, 1)

	require.NoError(t, r.Draw(nil))
	assert.False(t, r.NeedsRebuild())
	assert.Len(t, d.swapchainOld, 2)

	assertCleanShutdown(t, d, r)
}

func TestRendererOutOfDatePresentLatchesRebuild(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	d.presentResults = []vk.Result{vk.ErrorOutOfDate}
	require.NoError(t, r.Draw(nil))
	assert.True(t, r.NeedsRebuild())

	assertCleanShutdown(t, d, r)
}

func TestRendererOutOfDateAcquireRebuildsWithoutSubmitting(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	d.acquireResults = []vk.Result{vk.ErrorOutOfDate}
	var called bool
	err := r.Draw(func(*gg.Context, *CoordinateSystemHelper) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Empty(t, frameSubmits(d))
	assert.Empty(t, d.presents)
	assert.Len(t, d.swapchainOld, 2)
	assert.Equal(t, 0, r.SyncFrameIndex())
	assert.True(t, d.fences[r.Swapchain().Sync(0).InFlight])

	require.NoError(t, r.Draw(nil))
	assert.Len(t, d.presents, 1)

	assertCleanShutdown(t, d, r)
}

func TestRendererSuboptimalAcquireStillPresents(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	d.acquireResults = []vk.Result{vk.Suboptimal}
	require.NoError(t, r.Draw(nil))
	assert.Len(t, d.presents, 1)
	assert.True(t, r.NeedsRebuild())

	assertCleanShutdown(t, d, r)
}

func TestRendererPresentErrorIsReturned(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	d.presentResults = []vk.Result{vk.ErrorDeviceLost}
	err := r.Draw(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceLost)

	assertCleanShutdown(t, d, r)
}

func TestRendererAcquireSurfaceLostIsReturned(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	d.acquireResults = []vk.Result{vk.ErrorSurfaceLost}
	err := r.Draw(nil)
	assert.ErrorIs(t, err, ErrSurfaceLost)
	assert.Empty(t, d.presents)

	assertCleanShutdown(t, d, r)
}

type recordingPlugin struct {
	d         *fakeDriver
	cmd       vk.CommandBuffer
	created   int
	destroyed int
	rendered  []uint32
}

func (p *recordingPlugin) SwapchainCreated(*Device, *Swapchain) error {
	p.created++
	p.cmd = vk.CommandBuffer(p.d.alloc("plugin command buffer"))
	return nil
}

func (p *recordingPlugin) SwapchainDestroyed() {
	p.destroyed++
	p.d.free("plugin command buffer", unsafe.Pointer(p.cmd))
	p.cmd = nil
}

func (p *recordingPlugin) Render(_ Window, _ *Device, imageIndex uint32) ([]vk.CommandBuffer, error) {
	p.rendered = append(p.rendered, imageIndex)
	return []vk.CommandBuffer{p.cmd}, nil
}

func TestRendererPluginOrdering(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	p1 := &recordingPlugin{d: d}
	p2 := &recordingPlugin{d: d}
	r := newTestRenderer(t, d, w, WithPlugin(p1), WithPlugin(p2))
	assert.Equal(t, 1, p1.created)
	assert.Equal(t, 1, p2.created)

	k := r.SyncFrameIndex()
	sync := r.Swapchain().Sync(k)
	require.NoError(t, r.Draw(nil))

	i := d.presents[0].imageIndex
	submit := lastFrameSubmit(t, d)
	assert.Equal(t, []uintptr{
		handleID(r.Compositor().CommandBuffer(int(i))),
		handleID(p1.cmd),
		handleID(p2.cmd),
	}, handleIDs(submit.commandBuffers))
	assert.Equal(t, []uintptr{handleID(sync.ImageAvailable)}, handleIDs(submit.waitSemaphores))
	assert.Equal(t, []uintptr{handleID(sync.RenderFinished)}, handleIDs(submit.signalSemaphores))
	assert.Equal(t, handleID(sync.InFlight), handleID(submit.fence))
	assert.Equal(t, []uint32{i}, p1.rendered)

	w.physical = PhysicalSize{Width: 640, Height: 480}
	require.NoError(t, r.Draw(nil))
	assert.Equal(t, 2, p1.created)
	assert.Equal(t, 1, p1.destroyed)

	r.Destroy()
	assert.Equal(t, 2, p1.destroyed)
	assert.Equal(t, 2, p2.destroyed)
	assert.Empty(t, d.liveKinds())
	assert.Empty(t, d.problems)
}

func TestRendererSyncSlotRotation(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	const frames = 7
	for f := 0; f < frames; f++ {
		assert.Equal(t, f%MaxFramesInFlight, r.SyncFrameIndex())
		require.NoError(t, r.Draw(nil))
		submit := lastFrameSubmit(t, d)
		assert.Equal(t, handleID(r.Swapchain().Sync(f%MaxFramesInFlight).InFlight), handleID(submit.fence))
	}
	assert.Len(t, frameSubmits(d), frames)
	assert.Empty(t, d.problems, "no wait on an unsignaled fence and no submit with a signaled one")

	assertCleanShutdown(t, d, r)
}

func TestRendererPerImageIsolation(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	for f := 0; f < 5; f++ {
		require.NoError(t, r.Draw(nil))
		i := int(d.presents[len(d.presents)-1].imageIndex)
		submit := lastFrameSubmit(t, d)
		require.Len(t, submit.commandBuffers, 1)
		cmd := submit.commandBuffers[0]
		assert.Equal(t, handleID(r.Compositor().CommandBuffer(i)), handleID(cmd))
		assert.Equal(t, []uintptr{handleID(r.Compositor().DescriptorSet(i))}, handleIDs(d.boundSets[cmd]))
	}

	assertCleanShutdown(t, d, r)
}

func TestRendererMinimizedWindowSkipsFrame(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	w.physical = PhysicalSize{Width: 0, Height: 600}
	require.NoError(t, r.Draw(nil))
	assert.Zero(t, d.acquires)
	assert.Len(t, d.swapchainOld, 1)

	assertCleanShutdown(t, d, r)
}

func TestRendererCallbackErrorAbandonsFrame(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	boom := errors.New("boom")
	err := r.Draw(func(*gg.Context, *CoordinateSystemHelper) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, d.presents)
	assert.True(t, r.NeedsRebuild())
	assert.Equal(t, 0, r.SyncFrameIndex())

	require.NoError(t, r.Draw(nil))
	assert.Len(t, d.presents, 1)
	assert.Empty(t, d.problems)

	assertCleanShutdown(t, d, r)
}

func TestRendererDegenerateCoordinatesKeepIdentity(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w,
		WithCoordinateSystem(VisibleRangeCoordinates(Rect{Left: 0, Top: 0, Right: 0, Bottom: 10}, ScaleToFitCenter)))

	err := r.Draw(func(canvas *gg.Context, _ *CoordinateSystemHelper) error {
		assert.Equal(t, gg.Identity(), canvas.GetTransform())
		return nil
	})
	require.NoError(t, err)

	assertCleanShutdown(t, d, r)
}

func TestRendererVisibleRangeAppliedToCanvas(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 1800, 1200)
	r := newTestRenderer(t, d, w,
		WithCoordinateSystem(VisibleRangeCoordinates(Rect{Left: 0, Top: 0, Right: 900, Bottom: -600}, ScaleToFitCenter)))

	err := r.Draw(func(canvas *gg.Context, _ *CoordinateSystemHelper) error {
		x, y := canvas.TransformPoint(450, -300)
		assert.InDelta(t, 900, x, 1e-9)
		assert.InDelta(t, 600, y, 1e-9)
		return nil
	})
	require.NoError(t, err)

	assertCleanShutdown(t, d, r)
}

func TestNewRendererMissingWindowExtension(t *testing.T) {
	d := newFakeDriver()
	d.instanceExtensions = []string{"VK_KHR_surface"}
	w := newFakeWindow(d, 900, 600)

	_, err := NewRenderer(w, WithDriver(d), withShaderCode(dummyShaderCode))
	assert.ErrorIs(t, err, ErrExtensionMissing)
	assert.Empty(t, d.liveKinds())
}

func TestNewRendererNoCompatibleDevice(t *testing.T) {
	d := newFakeDriver()
	d.gpus[0].present = []bool{false}
	w := newFakeWindow(d, 900, 600)

	_, err := NewRenderer(w, WithDriver(d), withShaderCode(dummyShaderCode))
	assert.ErrorIs(t, err, ErrNoCompatibleDevice)
	assert.Empty(t, d.liveKinds())
	assert.Empty(t, d.problems)
}

func TestNewRendererValidationLayerMissing(t *testing.T) {
	d := newFakeDriver()
	d.instanceLayers = nil
	w := newFakeWindow(d, 900, 600)

	_, err := NewRenderer(w, WithDriver(d), withShaderCode(dummyShaderCode), WithValidation(ValidationStandard))
	assert.ErrorIs(t, err, ErrLayerMissing)
}

func TestNewRendererValidationRegistersCallback(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w, WithValidation(ValidationStandard))
	assert.Equal(t, 1, d.created["debug callback"])

	assertCleanShutdown(t, d, r)
	assert.Equal(t, 1, d.destroyed["debug callback"])
}

func TestRendererFailedRebuildIsRetried(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	r := newTestRenderer(t, d, w)

	d.acquireResults = []vk.Result{vk.ErrorOutOfDate}
	d.surfaceCapsRet = vk.ErrorSurfaceLost
	err := r.Draw(nil)
	assert.ErrorIs(t, err, ErrSurfaceLost)
	assert.True(t, r.NeedsRebuild())
	assert.Nil(t, r.Compositor())

	assert.NotPanics(t, func() { err = r.Draw(nil) })
	assert.ErrorIs(t, err, ErrSurfaceLost)
	assert.Empty(t, d.presents)

	d.surfaceCapsRet = vk.Success
	require.NoError(t, r.Draw(nil))
	assert.Len(t, d.presents, 1)
	assert.False(t, r.NeedsRebuild())
	assert.NotNil(t, r.Compositor())

	assertCleanShutdown(t, d, r)
}

type failingPlugin struct {
	destroyed int
}

func (p *failingPlugin) SwapchainCreated(*Device, *Swapchain) error {
	return errors.New("overlay unavailable")
}

func (p *failingPlugin) SwapchainDestroyed() {
	p.destroyed++
}

func (p *failingPlugin) Render(Window, *Device, uint32) ([]vk.CommandBuffer, error) {
	return nil, nil
}

func TestNewRendererPluginFailureNotifiesCreatedPluginsOnly(t *testing.T) {
	d := newFakeDriver()
	w := newFakeWindow(d, 900, 600)
	p1 := &recordingPlugin{d: d}
	p2 := &failingPlugin{}
	p3 := &recordingPlugin{d: d}

	_, err := NewRenderer(w, WithDriver(d), withShaderCode(dummyShaderCode),
		WithPlugin(p1), WithPlugin(p2), WithPlugin(p3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlay unavailable")

	assert.Equal(t, 1, p1.created)
	assert.Equal(t, 1, p1.destroyed)
	assert.Zero(t, p2.destroyed)
	assert.Zero(t, p3.created)
	assert.Zero(t, p3.destroyed)
	assert.Empty(t, d.liveKinds())
	assert.Empty(t, d.problems)
}
