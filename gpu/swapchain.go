package gpu

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
)

type surfaceSupport struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func (s *surfaceSupport) selectSurfaceFormat(desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) vk.SurfaceFormat {
	for _, af := range s.formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af
		}
	}
	fallbackFormat := s.formats[0]
	logger.Debug("preferred surface format unavailable, selecting first available")
	return fallbackFormat
}

func (s *surfaceSupport) selectPresentMode(desiredMode vk.PresentMode) vk.PresentMode {
	for _, pm := range s.presentModes {
		if pm == desiredMode {
			return pm
		}
	}
	logger.Debug("preferred present mode unavailable, selecting FIFO")
	return vk.PresentModeFifo
}

func (s *surfaceSupport) selectExtent() vk.Extent2D {
	s.capabilities.CurrentExtent.Deref()
	return s.capabilities.CurrentExtent
}

// Swapchain owns the presentation images of a window surface together with
// their views and framebuffers.
type Swapchain struct {
	support surfaceSupport
	Handle  vk.Swapchain

	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D

	Images   []vk.Image
	ImgViews []vk.ImageView
	Aspect   float32

	FrameBuffers []vk.Framebuffer
}

// NewSwapchain builds a swapchain for the window surface, preferring sRGB
// B8G8R8A8 and mailbox presentation, falling back to whatever the surface
// supports.
func NewSwapchain(dc *Device, w *Window) (*Swapchain, error) {
	sc := &Swapchain{}
	sc.support = readSurfaceSupport(dc.PhysicalDevice, w.Surf)
	if len(sc.support.formats) == 0 || len(sc.support.presentModes) == 0 {
		return nil, fmt.Errorf("surface offers no formats or present modes")
	}
	sc.Format = sc.support.selectSurfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	sc.PresentMode = sc.support.selectPresentMode(vk.PresentModeMailbox)
	sc.Extent = sc.support.selectExtent()

	if err := sc.createHandle(dc, w); err != nil {
		return nil, err
	}
	sc.Images = readSwapchainImages(dc.D, sc.Handle)
	if err := sc.createImageViews(dc); err != nil {
		return nil, err
	}
	sc.Aspect = float32(sc.Extent.Width) / float32(sc.Extent.Height)
	logger.Debug("created swapchain",
		zap.Uint32("width", sc.Extent.Width),
		zap.Uint32("height", sc.Extent.Height),
		zap.Int("images", len(sc.Images)),
	)
	return sc, nil
}

// CreateFrameBuffers creates one framebuffer per swapchain image view against
// the given render pass.
func (sc *Swapchain) CreateFrameBuffers(dc *Device, renderPass vk.RenderPass) error {
	sc.FrameBuffers = make([]vk.Framebuffer, len(sc.ImgViews))
	for i := range sc.ImgViews {
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{sc.ImgViews[i]},
			Width:           sc.Extent.Width,
			Height:          sc.Extent.Height,
			Layers:          1,
		}
		fb, err := vkCreateFramebuffer(dc.D, &framebufferInfo)
		if err != nil {
			return fmt.Errorf("creating framebuffer %d: %w", i, err)
		}
		sc.FrameBuffers[i] = fb
	}
	return nil
}

func (sc *Swapchain) createHandle(dc *Device, w *Window) error {
	imgCount := sc.support.capabilities.MinImageCount + 1
	imgMaxCount := sc.support.capabilities.MaxImageCount
	if imgMaxCount > 0 && imgCount > imgMaxCount {
		imgCount = imgMaxCount
	}

	// Depending on whether graphics and presentation live on the same queue
	// family the swapchain needs a different sharing mode.
	indices := dc.qFamilies
	var sharingMode vk.SharingMode
	var indexCount uint32
	qFamIndices := []uint32{*indices.graphicsFamily, *indices.presentFamily}
	if *indices.graphicsFamily != *indices.presentFamily {
		sharingMode = vk.SharingModeConcurrent
		indexCount = 2
	} else {
		sharingMode = vk.SharingModeExclusive
		indexCount = 0
		qFamIndices = nil
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               w.Surf,
		MinImageCount:         imgCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: indexCount,
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          sc.support.capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          nil,
	}

	var err error
	sc.Handle, err = vkCreateSwapchain(dc.D, createInfo)
	if err != nil {
		return fmt.Errorf("creating swapchain: %w", err)
	}
	return nil
}

func (sc *Swapchain) createImageViews(dc *Device) error {
	sc.ImgViews = make([]vk.ImageView, len(sc.Images))
	for i := range sc.Images {
		createInfo := &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			PNext:    nil,
			Flags:    0,
			Image:    sc.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   sc.Format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		iv, err := vkCreateImageView(dc.D, createInfo)
		if err != nil {
			return fmt.Errorf("creating image view %d: %w", i, err)
		}
		sc.ImgViews[i] = iv
	}
	return nil
}

// Destroy releases framebuffers, image views and the swapchain handle.
func (sc *Swapchain) Destroy(dc *Device) {
	for i := range sc.FrameBuffers {
		vk.DestroyFramebuffer(dc.D, sc.FrameBuffers[i], nil)
	}
	for i := range sc.ImgViews {
		vk.DestroyImageView(dc.D, sc.ImgViews[i], nil)
	}
	vk.DestroySwapchain(dc.D, sc.Handle, nil)
}
