package gpu

import (
	"errors"

	vk "github.com/goki/vulkan"
)

type queueFamilyIndices struct {
	graphicsFamily *uint32
	presentFamily  *uint32
}

func findQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (*queueFamilyIndices, error) {
	indices := &queueFamilyIndices{}
	qFamilies := readQueueFamilies(pd)

	// First family supporting VK_QUEUE_GRAPHICS_BIT and first family able to
	// present to the surface, which may or may not be the same one.
	for i := range qFamilies {
		if indices.graphicsFamily == nil && isBitSet(qFamilies[i], vk.QueueGraphicsBit) {
			idx := uint32(i)
			indices.graphicsFamily = &idx
		}
		if indices.presentFamily == nil {
			var presentSupport vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surf, &presentSupport)
			if presentSupport > 0 {
				idx := uint32(i)
				indices.presentFamily = &idx
			}
		}
		if indices.allQueuesFound() {
			break
		}
	}
	if indices.graphicsFamily == nil {
		return nil, errors.New("unable to find graphics capable queue family")
	}
	if indices.presentFamily == nil {
		return nil, errors.New("unable to find present capable queue family for given surface")
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q *queueFamilyIndices) allQueuesFound() bool {
	return q.graphicsFamily != nil && q.presentFamily != nil
}

func (q *queueFamilyIndices) toQueueCreateInfos() []vk.DeviceQueueCreateInfo {
	var uniqIndices []uint32
	if !inList(*q.graphicsFamily, uniqIndices) {
		uniqIndices = append(uniqIndices, *q.graphicsFamily)
	}
	if !inList(*q.presentFamily, uniqIndices) {
		uniqIndices = append(uniqIndices, *q.presentFamily)
	}
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}

func inList(e uint32, l []uint32) bool {
	for i := range l {
		if l[i] == e {
			return true
		}
	}
	return false
}
