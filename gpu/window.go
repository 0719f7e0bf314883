package gpu

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
)

const engineName = "frozengame"
const engineMajor, engineMinor, enginePatch = 1, 0, 0

// Vulkan spec go bindings = v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const vkSpecMajor, vkSpecMinor, vkSpecPatch = 1, 3, 239

// Window encapsulates all window handling components and vulkan access objects
// needed to actually draw on screen. It uses SDL for window management and user
// input, simplifying the process of getting a vk.Surface to draw on and
// interact with.
type Window struct {
	Win       *sdl.Window
	Resized   bool
	Minimized bool
	Close     bool

	Inst vk.Instance
	Surf vk.Surface
}

// NewWindow creates the SDL window, loads the Vulkan entry points, creates the
// instance and the window surface. On tear down the surface, instance and SDL
// window must be destroyed again, which Destroy does.
func NewWindow(title string, w int32, h int32, validationLayers []string) (*Window, error) {
	window := &Window{}
	if err := window.initSDLWindow(title, w, h); err != nil {
		return nil, err
	}
	if err := window.initVulkan(); err != nil {
		return nil, err
	}
	if err := window.createVulkanInstance(title, validationLayers); err != nil {
		return nil, err
	}
	if err := window.createSurface(); err != nil {
		return nil, err
	}
	logger.Info("created SDL/Vulkan window",
		zap.String("sdl", fmt.Sprintf("v%d.%d.%d", sdl.MAJOR_VERSION, sdl.MINOR_VERSION, sdl.PATCHLEVEL)),
		zap.String("vulkan_spec", fmt.Sprintf("v%d.%d.%d", vkSpecMajor, vkSpecMinor, vkSpecPatch)),
	)
	return window, nil
}

// Destroy tears down the surface, instance and SDL window created by NewWindow.
func (w *Window) Destroy() {
	vk.DestroySurface(w.Inst, w.Surf, nil)
	vk.DestroyInstance(w.Inst, nil)
	if err := w.Win.Destroy(); err != nil {
		logger.Error("destroying sdl window", zap.Error(err))
	}
}

// Extent reports the current drawable size of the window.
func (w *Window) Extent() (int32, int32) {
	return w.Win.VulkanGetDrawableSize()
}

func (w *Window) initSDLWindow(title string, width int32, height int32) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_VULKAN,
	)
	if err != nil {
		return fmt.Errorf("creating SDL window for use with Vulkan: %w", err)
	}
	logger.Debug("created SDL window",
		zap.String("title", title),
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	w.Win = win
	return nil
}

func (w *Window) initVulkan() error {
	// Load Vulkan function addresses to be able to call driver level functions.
	vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("initializing Vulkan API: %w", err)
	}
	return nil
}

func (w *Window) createVulkanInstance(appName string, validationLayers []string) error {
	requiredExtensions := w.Win.VulkanGetInstanceExtensions()
	if err := checkInstanceExtensionSupport(requiredExtensions); err != nil {
		return err
	}
	if len(validationLayers) > 0 {
		if err := checkValidationLayerSupport(validationLayers); err != nil {
			return err
		}
	}
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   terminatedStr(appName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        terminatedStr(engineName),
		EngineVersion:      vk.MakeVersion(engineMajor, engineMinor, enginePatch),
		ApiVersion:         vk.MakeVersion(vkSpecMajor, vkSpecMinor, vkSpecPatch),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       uint32(len(validationLayers)),
		PpEnabledLayerNames:     terminatedStrs(validationLayers),
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: terminatedStrs(requiredExtensions),
	}
	ins, err := vkCreateInstance(createInfo)
	if err != nil {
		return fmt.Errorf("creating vk instance: %w", err)
	}
	w.Inst = ins
	return nil
}

func checkInstanceExtensionSupport(requiredInstanceExt []string) error {
	supportedExtNames, err := readInstanceExtensionNames()
	if err != nil {
		return err
	}
	logger.Debug("instance extensions",
		zap.Strings("required", requiredInstanceExt),
		zap.Int("available", len(supportedExtNames)),
	)
	if !allOfAinB(requiredInstanceExt, supportedExtNames) {
		return fmt.Errorf("at least one required instance extension is not supported (need %v)", requiredInstanceExt)
	}
	return nil
}

func checkValidationLayerSupport(requiredLayers []string) error {
	supportedLayerNames, err := readInstanceLayerNames()
	if err != nil {
		return err
	}
	logger.Debug("validation layers",
		zap.Strings("desired", requiredLayers),
		zap.Strings("supported", supportedLayerNames),
	)
	if !allOfAinB(requiredLayers, supportedLayerNames) {
		return fmt.Errorf("at least one desired validation layer is not supported (need %v)", requiredLayers)
	}
	return nil
}

func (w *Window) createSurface() error {
	surf, err := sdlCreateVkSurface(w.Win, w.Inst)
	if err != nil {
		return fmt.Errorf("creating SDL window's Vulkan surface: %w", err)
	}
	w.Surf = surf
	return nil
}
