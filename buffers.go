package diesel2d

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a VkBuffer together with the memory bound to it.
type Buffer struct {
	driver Driver
	device vk.Device

	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

func (b *Buffer) Destroy() {
	if b == nil || b.device == nil {
		return
	}
	b.driver.DestroyBuffer(b.device, b.Buffer)
	b.driver.FreeMemory(b.device, b.Memory)
	b.device = nil
}

// findMemoryType returns the first memory type allowed by typeBits whose
// flags include all of required.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < props.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		if props.MemoryTypes[i].PropertyFlags&required == required {
			return i, true
		}
	}
	return 0, false
}

// allocateBuffer creates a buffer of size bytes and binds memory with the
// requested properties to it.
func allocateBuffer(dev *Device, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags, size vk.DeviceSize) (*Buffer, error) {
	driver, device := dev.Driver(), dev.Handle()
	buffer, ret := driver.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Usage:       usage,
		Size:        size,
		SharingMode: vk.SharingModeExclusive,
	})
	if err := wrapResult(ret, "create buffer"); err != nil {
		return nil, err
	}

	reqs := driver.BufferMemoryRequirements(device, buffer)
	memType, ok := findMemoryType(dev.MemoryProperties(), reqs.MemoryTypeBits, properties)
	if !ok {
		driver.DestroyBuffer(device, buffer)
		return nil, errors.Wrapf(ErrOutOfDeviceMemory, "no memory type for properties %#x", uint32(properties))
	}
	memory, ret := driver.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	})
	if err := wrapResult(ret, "allocate buffer memory"); err != nil {
		driver.DestroyBuffer(device, buffer)
		return nil, err
	}
	if err := wrapResult(driver.BindBufferMemory(device, buffer, memory, 0), "bind buffer memory"); err != nil {
		driver.DestroyBuffer(device, buffer)
		driver.FreeMemory(device, memory)
		return nil, err
	}
	return &Buffer{
		driver: driver,
		device: device,
		Buffer: buffer,
		Memory: memory,
		Size:   size,
	}, nil
}

// writeHostVisible maps the buffer, copies data to its start and unmaps.
// The memory must be HOST_VISIBLE and HOST_COHERENT.
func writeHostVisible(b *Buffer, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if vk.DeviceSize(len(data)) > b.Size {
		return errors.Errorf("write of %d bytes exceeds buffer size %d", len(data), b.Size)
	}
	ptr, ret := b.driver.MapMemory(b.device, b.Memory, 0, vk.DeviceSize(len(data)))
	if err := wrapResult(ret, "map memory"); err != nil {
		return err
	}
	n := vk.Memcopy(ptr, data)
	b.driver.UnmapMemory(b.device, b.Memory)
	if n != len(data) {
		return errors.Errorf("copied %d of %d bytes", n, len(data))
	}
	return nil
}

// allocateDeviceLocalFromSlice uploads data into a new DEVICE_LOCAL buffer
// through a transient staging buffer, blocking until the copy finishes.
func allocateDeviceLocalFromSlice(dev *Device, pool vk.CommandPool, data []byte, usage vk.BufferUsageFlags) (*Buffer, error) {
	size := vk.DeviceSize(len(data))
	staging, err := allocateBuffer(dev,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		size)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()
	if err := writeHostVisible(staging, data); err != nil {
		return nil, err
	}

	dst, err := allocateBuffer(dev,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		size)
	if err != nil {
		return nil, err
	}
	err = submitSingleUse(dev, dev.GraphicsQueue(), pool, func(cmd vk.CommandBuffer) {
		dev.Driver().CmdCopyBuffer(cmd, staging.Buffer, dst.Buffer, []vk.BufferCopy{{Size: size}})
	})
	if err != nil {
		dst.Destroy()
		return nil, err
	}
	return dst, nil
}
