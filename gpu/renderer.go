package gpu

import (
	"fmt"
	"math"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
	"github.com/FrozenDroid/frozengame/model"
)

// Renderer owns the swapchain, the render pass, the per frame command buffers
// and sync objects, and runs the acquire/record/submit/present cycle. Draw
// commands are recorded through the Recorder handed to the frame callback.
type Renderer struct {
	dev *Device
	win *Window

	sc         *Swapchain
	renderPass vk.RenderPass

	framesInFlight int
	cmdPool        vk.CommandPool
	cmdBuffers     []vk.CommandBuffer

	currentFrame       int
	imageAvailableSems []vk.Semaphore
	renderFinishedSems []vk.Semaphore
	inFlightFens       []vk.Fence
}

// NewRenderer builds the swapchain, a color only render pass against its
// format, framebuffers, command buffers and sync objects for the requested
// number of frames in flight.
func NewRenderer(dev *Device, win *Window, framesInFlight int) (*Renderer, error) {
	if framesInFlight < 1 {
		framesInFlight = 1
	}
	r := &Renderer{dev: dev, win: win, framesInFlight: framesInFlight}

	var err error
	r.sc, err = NewSwapchain(dev, win)
	if err != nil {
		return nil, err
	}
	r.renderPass, err = NewRenderPass(dev, r.sc.Format.Format)
	if err != nil {
		return nil, err
	}
	if err := r.sc.CreateFrameBuffers(dev, r.renderPass); err != nil {
		return nil, err
	}

	r.cmdPool, err = vkCreateCommandPool(
		dev.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		dev.GraphicsFamily(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command pool: %w", err)
	}
	r.cmdBuffers, err = vkAllocateCommandBuffersPrimary(dev.D, r.cmdPool, uint32(framesInFlight))
	if err != nil {
		return nil, fmt.Errorf("allocating command buffers: %w", err)
	}
	if err := r.createSyncObjects(); err != nil {
		return nil, err
	}
	return r, nil
}

// RenderPass exposes the pass pipelines must be compiled against.
func (r *Renderer) RenderPass() vk.RenderPass { return r.renderPass }

// Aspect reports the current swapchain aspect ratio.
func (r *Renderer) Aspect() float32 { return r.sc.Aspect }

// FullView is the dynamic state covering the whole swapchain image.
func (r *Renderer) FullView() model.DynamicState {
	return model.DynamicState{
		Viewport: model.Viewport{
			X:        0,
			Y:        0,
			Width:    float32(r.sc.Extent.Width),
			Height:   float32(r.sc.Extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		},
		Scissor: model.Rect{
			X:      0,
			Y:      0,
			Width:  r.sc.Extent.Width,
			Height: r.sc.Extent.Height,
		},
	}
}

func (r *Renderer) createSyncObjects() error {
	n := r.framesInFlight
	ias := make([]vk.Semaphore, n)
	rfs := make([]vk.Semaphore, n)
	iff := make([]vk.Fence, n)
	semCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
		PNext: nil,
		Flags: 0,
	}
	fenCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		PNext: nil,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	for i := 0; i < n; i++ {
		if vk.CreateSemaphore(r.dev.D, &semCreateInfo, nil, &ias[i]) != vk.Success ||
			vk.CreateSemaphore(r.dev.D, &semCreateInfo, nil, &rfs[i]) != vk.Success ||
			vk.CreateFence(r.dev.D, &fenCreateInfo, nil, &iff[i]) != vk.Success {
			return fmt.Errorf("creating sync objects for frame %d", i)
		}
	}
	r.imageAvailableSems = ias
	r.renderFinishedSems = rfs
	r.inFlightFens = iff
	return nil
}

// DrawFrame runs one acquire/record/submit/present cycle. The record callback
// is handed a Recorder bound to the frame's command buffer, inside an already
// begun render pass covering the whole swapchain image.
func (r *Renderer) DrawFrame(record func(*Recorder) error) error {
	fi := r.currentFrame
	vk.WaitForFences(r.dev.D, 1, []vk.Fence{r.inFlightFens[fi]}, vk.True, math.MaxUint64)

	var imgIdx uint32
	result := vk.AcquireNextImage(r.dev.D, r.sc.Handle, math.MaxUint64, r.imageAvailableSems[fi], nil, &imgIdx)
	if result == vk.ErrorOutOfDate {
		return r.recreateSwapchain()
	} else if result != vk.Success && result != vk.Suboptimal {
		return fmt.Errorf("acquiring swapchain image: %w", vk.Error(result))
	}

	// Reset the fence only when we will actually submit work that signals it.
	vk.ResetFences(r.dev.D, 1, []vk.Fence{r.inFlightFens[fi]})

	vk.ResetCommandBuffer(r.cmdBuffers[fi], 0)
	if err := r.recordFrame(r.cmdBuffers[fi], imgIdx, record); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.imageAvailableSems[fi]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{r.cmdBuffers[fi]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{r.renderFinishedSems[fi]},
	}
	if res := vk.QueueSubmit(r.dev.GraphicsQ, 1, []vk.SubmitInfo{submitInfo}, r.inFlightFens[fi]); res != vk.Success {
		return fmt.Errorf("submitting command buffer: %w", vk.Error(res))
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.renderFinishedSems[fi]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.sc.Handle},
		PImageIndices:      []uint32{imgIdx},
		PResults:           nil,
	}
	result = vk.QueuePresent(r.dev.PresentQ, &presentInfo)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal || r.win.Resized {
		r.win.Resized = false
		if err := r.recreateSwapchain(); err != nil {
			return err
		}
	} else if result != vk.Success {
		return fmt.Errorf("presenting image: %w", vk.Error(result))
	}

	r.currentFrame = (r.currentFrame + 1) % r.framesInFlight
	return nil
}

func (r *Renderer) recordFrame(buffer vk.CommandBuffer, imageIdx uint32, record func(*Recorder) error) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            0,
		PInheritanceInfo: nil,
	}
	if res := vk.BeginCommandBuffer(buffer, &beginInfo); res != vk.Success {
		return fmt.Errorf("beginning command buffer: %w", vk.Error(res))
	}

	renderArea := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: r.sc.Extent,
	}
	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0.01, 0.01, 0.01, 1}),
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		PNext:           nil,
		RenderPass:      r.renderPass,
		Framebuffer:     r.sc.FrameBuffers[imageIdx],
		RenderArea:      renderArea,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)

	err := record(&Recorder{cmd: buffer})

	vk.CmdEndRenderPass(buffer)
	if res := vk.EndCommandBuffer(buffer); res != vk.Success && err == nil {
		err = fmt.Errorf("ending command buffer: %w", vk.Error(res))
	}
	return err
}

func (r *Renderer) recreateSwapchain() error {
	r.dev.WaitIdle()
	r.sc.Destroy(r.dev)
	sc, err := NewSwapchain(r.dev, r.win)
	if err != nil {
		return err
	}
	r.sc = sc
	return r.sc.CreateFrameBuffers(r.dev, r.renderPass)
}

// Loop is the event loop for user interaction, running the draw callback once
// per frame. It provides the basic behavior a well behaved app should have:
// no rendering while minimized, close on window close and on ESC.
func (r *Renderer) Loop(draw func(elapsed time.Duration, rec *Recorder) error) error {
	t0 := time.Now()
	frames := 0
	r.win.Close = false
	for !r.win.Close {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				r.win.Close = true
			case *sdl.WindowEvent:
				if ev.Event == sdl.WINDOWEVENT_RESIZED {
					r.win.Resized = true
				} else if ev.Event == sdl.WINDOWEVENT_MINIMIZED {
					r.win.Minimized = true
				} else if ev.Event == sdl.WINDOWEVENT_RESTORED {
					r.win.Minimized = false
				}
			case *sdl.KeyboardEvent:
				if ev.Keysym.Sym == sdl.K_ESCAPE {
					r.win.Close = true
				}
			}
		}
		if r.win.Minimized {
			// Sleep until new events flip the minimized state.
			sdl.WaitEvent()
			continue
		}
		err := r.DrawFrame(func(rec *Recorder) error {
			return draw(time.Since(t0), rec)
		})
		if err != nil {
			return err
		}
		frames++
	}
	dt := time.Since(t0)
	logger.Info("render loop finished",
		zap.Duration("elapsed", dt),
		zap.Float64("avg_fps", float64(frames)/dt.Seconds()),
	)
	return nil
}

// Destroy waits for the device to go idle and tears down everything the
// renderer created.
func (r *Renderer) Destroy() {
	r.dev.WaitIdle()
	for i := 0; i < r.framesInFlight; i++ {
		vk.DestroySemaphore(r.dev.D, r.imageAvailableSems[i], nil)
		vk.DestroySemaphore(r.dev.D, r.renderFinishedSems[i], nil)
		vk.DestroyFence(r.dev.D, r.inFlightFens[i], nil)
	}
	vk.DestroyCommandPool(r.dev.D, r.cmdPool, nil)
	vk.DestroyRenderPass(r.dev.D, r.renderPass, nil)
	r.sc.Destroy(r.dev)
}
