package diesel2d

import vk "github.com/vulkan-go/vulkan"

// QueueFamilies holds the queue family indices used by a Device.
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
}

// Separate is true when present and graphics work run on different families.
func (q QueueFamilies) Separate() bool {
	return q.Graphics != q.Present
}

// Unique returns each distinct family once, graphics first.
func (q QueueFamilies) Unique() []uint32 {
	if q.Separate() {
		return []uint32{q.Graphics, q.Present}
	}
	return []uint32{q.Graphics}
}

func hasGraphics(props vk.QueueFamilyProperties) bool {
	return props.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
}

// chooseQueueFamilies prefers one family that supports both graphics and
// present. Otherwise it takes the first graphics family and the first
// present family. presentSupport is indexed like props.
func chooseQueueFamilies(props []vk.QueueFamilyProperties, presentSupport []bool) (QueueFamilies, bool) {
	graphics, present := -1, -1
	for i := range props {
		g := hasGraphics(props[i]) && props[i].QueueCount > 0
		p := i < len(presentSupport) && presentSupport[i]
		if g && p {
			return QueueFamilies{Graphics: uint32(i), Present: uint32(i)}, true
		}
		if g && graphics < 0 {
			graphics = i
		}
		if p && present < 0 {
			present = i
		}
	}
	if graphics < 0 || present < 0 {
		return QueueFamilies{}, false
	}
	return QueueFamilies{Graphics: uint32(graphics), Present: uint32(present)}, true
}

func queueCreateInfos(families QueueFamilies) []vk.DeviceQueueCreateInfo {
	var infos []vk.DeviceQueueCreateInfo
	for _, family := range families.Unique() {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
