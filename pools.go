package diesel2d

import vk "github.com/vulkan-go/vulkan"

// NewCommandPool creates a pool on the given family whose buffers can be
// reset individually.
func NewCommandPool(dev *Device, family uint32) (vk.CommandPool, error) {
	pool, ret := dev.Driver().CreateCommandPool(dev.Handle(), &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	})
	if err := wrapResult(ret, "create command pool"); err != nil {
		return nil, err
	}
	return pool, nil
}

// AllocatePrimary allocates count primary command buffers from pool.
func AllocatePrimary(dev *Device, pool vk.CommandPool, count int) ([]vk.CommandBuffer, error) {
	if count == 0 {
		return nil, nil
	}
	buffers, ret := dev.Driver().AllocateCommandBuffers(dev.Handle(), &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	})
	if err := wrapResult(ret, "allocate command buffers"); err != nil {
		return nil, err
	}
	return buffers, nil
}

// submitSingleUse records a one-time command buffer with record, submits it
// to queue and waits for the queue to go idle. Used for setup uploads only.
func submitSingleUse(dev *Device, queue vk.Queue, pool vk.CommandPool, record func(cmd vk.CommandBuffer)) error {
	driver := dev.Driver()
	buffers, err := AllocatePrimary(dev, pool, 1)
	if err != nil {
		return err
	}
	defer driver.FreeCommandBuffers(dev.Handle(), pool, buffers)
	cmd := buffers[0]

	ret := driver.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := wrapResult(ret, "begin single-use command buffer"); err != nil {
		return err
	}
	record(cmd)
	if err := wrapResult(driver.EndCommandBuffer(cmd), "end single-use command buffer"); err != nil {
		return err
	}
	ret = driver.QueueSubmit(queue, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}}, vk.NullFence)
	if err := wrapResult(ret, "submit single-use command buffer"); err != nil {
		return err
	}
	return wrapResult(driver.QueueWaitIdle(queue), "queue wait idle")
}
