package gpu

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/FrozenDroid/frozengame/model"
)

// DescriptorSet is the backend's shader resource binding. Values of this type
// are what may be passed as model.ResourceSet to a draw.
type DescriptorSet struct {
	Handle vk.DescriptorSet
}

// Recorder appends draw commands to the command buffer of the frame currently
// being recorded. It implements model.Recorder; handles that did not come out
// of this backend are rejected with an error instead of being bound.
type Recorder struct {
	cmd vk.CommandBuffer
}

// DrawIndexed binds the pipeline, the dynamic state, the vertex and index
// buffers and the descriptor sets, then appends one indexed draw covering the
// whole index buffer. A draw with zero indices is recorded as nothing.
func (r *Recorder) DrawIndexed(pipeline model.Pipeline, state model.DynamicState, vertexBuffers []model.Buffer, indexBuffer model.IndexBuffer, sets []model.ResourceSet, pushConstants []byte) error {
	p, ok := pipeline.(*Pipeline)
	if !ok {
		return fmt.Errorf("pipeline %T was not created by this backend", pipeline)
	}
	if indexBuffer.IndexCount() == 0 {
		return nil
	}
	ib, ok := indexBuffer.Unwrap().(*Buffer)
	if !ok {
		return fmt.Errorf("index buffer %T was not created by this backend", indexBuffer.Unwrap())
	}
	vbs := make([]vk.Buffer, len(vertexBuffers))
	offsets := make([]vk.DeviceSize, len(vertexBuffers))
	for i := range vertexBuffers {
		vb, ok := vertexBuffers[i].(*Buffer)
		if !ok {
			return fmt.Errorf("vertex buffer %T was not created by this backend", vertexBuffers[i])
		}
		vbs[i] = vb.Handle
	}

	vk.CmdBindPipeline(r.cmd, vk.PipelineBindPointGraphics, p.Handle)

	viewport := []vk.Viewport{
		{
			X:        state.Viewport.X,
			Y:        state.Viewport.Y,
			Width:    state.Viewport.Width,
			Height:   state.Viewport.Height,
			MinDepth: state.Viewport.MinDepth,
			MaxDepth: state.Viewport.MaxDepth,
		},
	}
	vk.CmdSetViewport(r.cmd, 0, 1, viewport)

	scissor := []vk.Rect2D{
		{
			Offset: vk.Offset2D{X: state.Scissor.X, Y: state.Scissor.Y},
			Extent: vk.Extent2D{Width: state.Scissor.Width, Height: state.Scissor.Height},
		},
	}
	vk.CmdSetScissor(r.cmd, 0, 1, scissor)

	if len(sets) > 0 {
		handles := make([]vk.DescriptorSet, len(sets))
		for i := range sets {
			ds, ok := sets[i].(DescriptorSet)
			if !ok {
				return fmt.Errorf("resource set %T was not created by this backend", sets[i])
			}
			handles[i] = ds.Handle
		}
		vk.CmdBindDescriptorSets(r.cmd, vk.PipelineBindPointGraphics, p.Layout, 0, uint32(len(handles)), handles, 0, nil)
	}

	vk.CmdBindVertexBuffers(r.cmd, 0, uint32(len(vbs)), vbs, offsets)

	indexType := vk.IndexTypeUint32
	if indexBuffer.IndexWidth() == model.IndexWidthUint16 {
		indexType = vk.IndexTypeUint16
	}
	vk.CmdBindIndexBuffer(r.cmd, ib.Handle, 0, indexType)

	if len(pushConstants) > 0 {
		vk.CmdPushConstants(r.cmd, p.Layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, uint32(len(pushConstants)), unsafe.Pointer(&pushConstants[0]))
	}

	vk.CmdDrawIndexed(r.cmd, uint32(indexBuffer.IndexCount()), 1, 0, 0, 0)
	return nil
}
