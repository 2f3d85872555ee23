package diesel2d

import vk "github.com/vulkan-go/vulkan"

// MaxFramesInFlight is the number of frames that may be outstanding on the
// GPU at once.
const MaxFramesInFlight = 2

// FrameSync holds the synchronization primitives of one in-flight slot.
type FrameSync struct {
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	// InFlight is created signaled so the first wait on a slot returns
	// immediately.
	InFlight vk.Fence
}

// frameSyncSet owns the per-slot primitives. Slots are indexed by the
// renderer's frame counter modulo MaxFramesInFlight, never by image index.
type frameSyncSet struct {
	driver Driver
	device vk.Device
	slots  [MaxFramesInFlight]FrameSync
}

func newFrameSyncSet(driver Driver, device vk.Device) (_ *frameSyncSet, err error) {
	s := &frameSyncSet{driver: driver, device: device}
	defer func() {
		if err != nil {
			s.destroy()
		}
	}()
	for i := range s.slots {
		slot := &s.slots[i]
		var ret vk.Result
		if slot.ImageAvailable, ret = driver.CreateSemaphore(device); isError(ret) {
			return nil, wrapResult(ret, "create image-available semaphore")
		}
		if slot.RenderFinished, ret = driver.CreateSemaphore(device); isError(ret) {
			return nil, wrapResult(ret, "create render-finished semaphore")
		}
		if slot.InFlight, ret = driver.CreateFence(device, true); isError(ret) {
			return nil, wrapResult(ret, "create in-flight fence")
		}
	}
	return s, nil
}

func (s *frameSyncSet) slot(k int) FrameSync {
	return s.slots[k%MaxFramesInFlight]
}

// wait blocks until the GPU has finished the frame last submitted on slot k.
func (s *frameSyncSet) wait(k int) error {
	fence := s.slot(k).InFlight
	return wrapResult(s.driver.WaitForFences(s.device, []vk.Fence{fence}, vk.MaxUint64), "wait for in-flight fence")
}

func (s *frameSyncSet) reset(k int) error {
	fence := s.slot(k).InFlight
	return wrapResult(s.driver.ResetFences(s.device, []vk.Fence{fence}), "reset in-flight fence")
}

// destroy releases semaphores first, then fences.
func (s *frameSyncSet) destroy() {
	for i := range s.slots {
		slot := &s.slots[i]
		if slot.ImageAvailable != vk.NullSemaphore {
			s.driver.DestroySemaphore(s.device, slot.ImageAvailable)
			slot.ImageAvailable = vk.NullSemaphore
		}
		if slot.RenderFinished != vk.NullSemaphore {
			s.driver.DestroySemaphore(s.device, slot.RenderFinished)
			slot.RenderFinished = vk.NullSemaphore
		}
	}
	for i := range s.slots {
		slot := &s.slots[i]
		if slot.InFlight != vk.NullFence {
			s.driver.DestroyFence(s.device, slot.InFlight)
			slot.InFlight = vk.NullFence
		}
	}
}
