package gpu

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
	"github.com/FrozenDroid/frozengame/model"
)

// Queue wraps the device's graphics queue together with a command pool for
// transfer work. It implements model.Queue: geometry bytes go into a host
// visible staging buffer, a device local buffer of the requested usage is
// created and a single time command buffer copies staging over.
type Queue struct {
	dev     *Device
	handle  vk.Queue
	cmdPool vk.CommandPool
}

// NewQueue creates a transfer command pool on the device's graphics family.
func NewQueue(dev *Device) (*Queue, error) {
	pool, err := vkCreateCommandPool(
		dev.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
		dev.GraphicsFamily(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transfer command pool: %w", err)
	}
	return &Queue{dev: dev, handle: dev.GraphicsQ, cmdPool: pool}, nil
}

// Destroy releases the transfer command pool.
func (q *Queue) Destroy() {
	vk.DestroyCommandPool(q.dev.D, q.cmdPool, nil)
}

func usageBits(usage model.Usage) (vk.BufferUsageFlagBits, error) {
	switch usage {
	case model.UsageVertex:
		return vk.BufferUsageVertexBufferBit, nil
	case model.UsageIndex:
		return vk.BufferUsageIndexBufferBit, nil
	}
	return 0, fmt.Errorf("unknown buffer usage %v", usage)
}

// UploadImmutable moves data into a new device local buffer bound for the given
// usage and waits for the transfer to finish. The returned buffer is never
// written again.
func (q *Queue) UploadImmutable(data []byte, usage model.Usage) (model.Buffer, error) {
	bits, err := usageBits(usage)
	if err != nil {
		return nil, err
	}

	stgBuf, err := createBuffer(
		q.dev,
		len(data),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, fmt.Errorf("creating staging buffer: %w", err)
	}
	defer stgBuf.Free()

	if len(data) > 0 {
		if err := copyToHostVisible(q.dev, stgBuf, data); err != nil {
			return nil, err
		}
	}

	devBuf, err := createBuffer(
		q.dev,
		len(data),
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|vk.BufferUsageFlags(bits),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s buffer: %w", usage, err)
	}

	if err := q.copyBuffer(stgBuf, devBuf); err != nil {
		devBuf.Free()
		return nil, err
	}
	logger.Debug("uploaded immutable buffer",
		zap.Stringer("usage", usage),
		zap.Int("bytes", len(data)),
	)
	return devBuf, nil
}

// copyBuffer records a full size buffer copy into a single time command buffer
// and submits it, waiting for the queue to drain before returning.
func (q *Queue) copyBuffer(src *Buffer, dst *Buffer) error {
	cmdBuf, err := q.beginSingleTimeCommands()
	if err != nil {
		return err
	}
	copyRegions := []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      vk.DeviceSize(max(src.size, 1)),
		},
	}
	vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	return q.endSingleTimeCommands(cmdBuf)
}

func (q *Queue) beginSingleTimeCommands() (vk.CommandBuffer, error) {
	buffers, err := vkAllocateCommandBuffersPrimary(q.dev.D, q.cmdPool, 1)
	if err != nil {
		return nil, fmt.Errorf("allocating single time command buffer: %w", err)
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		PInheritanceInfo: nil,
	}
	if res := vk.BeginCommandBuffer(buffers[0], &beginInfo); res != vk.Success {
		return nil, fmt.Errorf("beginning single time command buffer: %w", vk.Error(res))
	}
	return buffers[0], nil
}

func (q *Queue) endSingleTimeCommands(cmdBuf vk.CommandBuffer) error {
	if res := vk.EndCommandBuffer(cmdBuf); res != vk.Success {
		return fmt.Errorf("ending single time command buffer: %w", vk.Error(res))
	}
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmdBuf},
	}
	if res := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{submitInfo}, nil); res != vk.Success {
		return fmt.Errorf("submitting single time command buffer: %w", vk.Error(res))
	}
	vk.QueueWaitIdle(q.handle)
	vk.FreeCommandBuffers(q.dev.D, q.cmdPool, 1, []vk.CommandBuffer{cmdBuf})
	return nil
}
