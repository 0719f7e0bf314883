package gpu

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
)

// ValidationLayers are the instance layers enabled when validation is on.
var ValidationLayers = []string{
	"VK_LAYER_KHRONOS_validation",
}

var deviceExtensions = []string{
	"VK_KHR_swapchain",
}

// Device ties the selected physical device, its logical device and the queues
// the rest of the backend draws and presents with. Its main purpose is to make
// initialization and teardown of a given application neater.
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	PdProps        vk.PhysicalDeviceProperties
	PdMemoryProps  vk.PhysicalDeviceMemoryProperties
	qFamilies      queueFamilyIndices

	D         vk.Device
	GraphicsQ vk.Queue
	PresentQ  vk.Queue
}

// NewDevice selects a suitable physical device for the window's surface and
// creates the logical device and queues on it.
func NewDevice(w *Window, enableValidation bool) (*Device, error) {
	dc := &Device{}
	if err := dc.selectPhysicalDevice(w.Inst, w.Surf); err != nil {
		return nil, err
	}
	if err := dc.createLogicalDevice(enableValidation); err != nil {
		return nil, err
	}
	return dc, nil
}

// Destroy tears down the logical device. It does not touch the window objects
// provided for instantiation.
func (dc *Device) Destroy() {
	vk.DestroyDevice(dc.D, nil)
}

// WaitIdle blocks until the device finished all outstanding work.
func (dc *Device) WaitIdle() {
	vk.DeviceWaitIdle(dc.D)
}

// GraphicsFamily reports the queue family the graphics queue lives on.
func (dc *Device) GraphicsFamily() uint32 { return *dc.qFamilies.graphicsFamily }

func (dc *Device) selectPhysicalDevice(in vk.Instance, su vk.Surface) error {
	availableDevices, err := readPhysicalDevices(in)
	if err != nil {
		return err
	}
	// Prefer a discrete GPU but settle for any device that can draw and present.
	var pd, integrated vk.PhysicalDevice
	for i := range availableDevices {
		if !isDeviceSuitable(availableDevices[i], su) {
			continue
		}
		props := readPhysicalDeviceProperties(availableDevices[i])
		if props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			pd = availableDevices[i]
			break
		}
		if integrated == nil {
			integrated = availableDevices[i]
		}
	}
	if pd == nil {
		pd = integrated
	}
	if pd == nil {
		return errors.New("no suitable physical device (GPU) found")
	}
	dc.PhysicalDevice = pd
	dc.PdProps = readPhysicalDeviceProperties(pd)
	dc.PdProps.Limits.Deref()
	dc.PdMemoryProps = readDeviceMemoryProperties(pd)
	logger.Info("selected physical device",
		zap.String("name", vk.ToString(dc.PdProps.DeviceName[:])),
		zap.Uint32("api_version", uint32(dc.PdProps.ApiVersion)),
	)

	qf, err := findQueueFamilies(pd, su)
	if err != nil {
		return fmt.Errorf("reading queue families from selected device: %w", err)
	}
	dc.qFamilies = *qf
	return nil
}

func isDeviceSuitable(pd vk.PhysicalDevice, su vk.Surface) bool {
	indices, err := findQueueFamilies(pd, su)
	if err != nil {
		logger.Debug("skipping device without required queue families", zap.Error(err))
		return false
	}

	queuesSupported := indices.allQueuesFound()
	extensionsSupported := checkDeviceExtensionSupport(pd, deviceExtensions)

	isSwapchainAdequate := false
	if extensionsSupported {
		isSwapchainAdequate = checkSwapchainAdequacy(pd, su)
	}

	return queuesSupported && extensionsSupported && isSwapchainAdequate
}

func (dc *Device) createLogicalDevice(enableValidation bool) error {
	queueInfos := dc.qFamilies.toQueueCreateInfos()
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: terminatedStrs(deviceExtensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}
	if enableValidation {
		deviceCreateInfo.EnabledLayerCount = uint32(len(ValidationLayers))
		deviceCreateInfo.PpEnabledLayerNames = terminatedStrs(ValidationLayers)
	}

	var err error
	dc.D, err = vkCreateDevice(dc.PhysicalDevice, deviceCreateInfo)
	if err != nil {
		return fmt.Errorf("creating logical device: %w", err)
	}
	dc.GraphicsQ = vkGetDeviceQueue(dc.D, *dc.qFamilies.graphicsFamily, 0)
	dc.PresentQ = vkGetDeviceQueue(dc.D, *dc.qFamilies.presentFamily, 0)
	return nil
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) bool {
	supportedExtNames, err := readDeviceExtensionNames(pd)
	if err != nil {
		logger.Debug("reading device extensions", zap.Error(err))
		return false
	}
	return allOfAinB(requiredDeviceExt, supportedExtNames)
}

func checkSwapchainAdequacy(pd vk.PhysicalDevice, surface vk.Surface) bool {
	details := readSurfaceSupport(pd, surface)
	return len(details.formats) > 0 && len(details.presentModes) > 0
}
