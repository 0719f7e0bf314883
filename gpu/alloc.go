package gpu

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
)

// Allocation helpers. They simplify creating buffers backed by device memory of
// the right type and moving bytes into host visible allocations.

// Buffer is a vk.Buffer together with its backing memory. Buffers handed out by
// Queue.UploadImmutable are device local and never written again; holders may
// share them freely.
type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags

	// payload size as requested, which may be smaller than the allocation
	size int

	dev *Device
}

// Size reports the buffer payload size in bytes.
func (b *Buffer) Size() int { return b.size }

// Free releases the buffer and its memory. The caller must ensure no submitted
// work still references it.
func (b *Buffer) Free() {
	vk.DestroyBuffer(b.dev.D, b.Handle, nil)
	vk.FreeMemory(b.dev.D, b.DeviceMem, nil)
}

func createBuffer(dc *Device, size int, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	// Vulkan forbids zero sized buffers, so an empty payload still allocates a
	// minimal one. Size() keeps reporting the payload size.
	allocSize := size
	if allocSize == 0 {
		allocSize = 4
	}
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  vk.DeviceSize(allocSize),
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}

	buf, err := vkCreateBuffer(dc.D, &bufferInfo)
	if err != nil {
		return nil, fmt.Errorf("creating buffer of %d bytes: %w", allocSize, err)
	}

	bufRequirements := readBufferMemoryRequirements(dc.D, buf)
	memType, err := findMemoryType(dc, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := vkAllocateMemory(dc.D, &allocInfo)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, fmt.Errorf("allocating %d bytes of buffer memory: %w", bufRequirements.Size, err)
	}

	if err := vkBindBufferMemory(dc.D, buf, deviceMem, 0); err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		vk.FreeMemory(dc.D, deviceMem, nil)
		return nil, fmt.Errorf("binding device memory to buffer handle: %w", err)
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		usage:     usage,
		props:     props,
		size:      size,
		dev:       dc,
	}, nil
}

// copyToHostVisible maps the buffer's memory, copies the payload over and
// unmaps again. The buffer must be host visible and coherent and exactly sized
// for the payload; only full buffer copies starting at offset 0 are supported.
func copyToHostVisible(dc *Device, deviceBuf *Buffer, payload []byte) error {
	isHostVisCoh := deviceBuf.props&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit) != 0
	if !isHostVisCoh {
		return fmt.Errorf("cannot copy to device buffer, memory is not host visible and coherent")
	}
	if deviceBuf.size != len(payload) {
		return fmt.Errorf("cannot copy to device buffer, buffer (%d) and payload (%d) not of equal size", deviceBuf.size, len(payload))
	}
	pData, err := vkMapMemory(dc.D, deviceBuf.DeviceMem, 0, vk.DeviceSize(len(payload)), 0)
	if err != nil {
		return fmt.Errorf("mapping device memory: %w", err)
	}
	n := vk.Memcopy(pData, payload)
	logger.Debug("copied bytes from cpu to device", zap.Int("bytes", n))
	vk.UnmapMemory(dc.D, deviceBuf.DeviceMem)
	return nil
}

func findMemoryType(dc *Device, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < dc.PdMemoryProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := dc.PdMemoryProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no suitable memory type for filter %b with properties %b", typeFilter, propFlags)
}
