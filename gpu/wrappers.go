package gpu

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
)

// Thin wrappers around the raw go bindings giving them a more go-lang style
// signature. They do not hide or alter behavior, only tidy the calling code.

func vkCreateInstance(pCreateInfo *vk.InstanceCreateInfo) (vk.Instance, error) {
	var in vk.Instance
	err := vk.Error(vk.CreateInstance(pCreateInfo, nil, &in))
	if err != nil {
		return nil, err
	}
	err = vk.InitInstance(in)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func sdlCreateVkSurface(win *sdl.Window, instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := win.VulkanCreateSurface(instance)
	if err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(uintptr(surfPtr)), nil
}

func vkCreateDevice(physicalDevice vk.PhysicalDevice, pCreateInfo *vk.DeviceCreateInfo) (vk.Device, error) {
	var d vk.Device
	err := vk.Error(vk.CreateDevice(physicalDevice, pCreateInfo, nil, &d))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func vkGetDeviceQueue(device vk.Device, queueFamilyIndex uint32, queueIndex uint32) vk.Queue {
	var q vk.Queue
	vk.GetDeviceQueue(device, queueFamilyIndex, queueIndex, &q)
	return q
}

func vkCreateSwapchain(device vk.Device, pCreateInfo *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var sc vk.Swapchain
	err := vk.Error(vk.CreateSwapchain(device, pCreateInfo, nil, &sc))
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func vkCreateImageView(device vk.Device, pCreateInfo *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var iv vk.ImageView
	err := vk.Error(vk.CreateImageView(device, pCreateInfo, nil, &iv))
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func vkCreateRenderPass(device vk.Device, pCreateInfo *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var rp vk.RenderPass
	err := vk.Error(vk.CreateRenderPass(device, pCreateInfo, nil, &rp))
	if err != nil {
		return nil, err
	}
	return rp, nil
}

func vkCreateFramebuffer(device vk.Device, pCreateInfo *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var fb vk.Framebuffer
	err := vk.Error(vk.CreateFramebuffer(device, pCreateInfo, nil, &fb))
	if err != nil {
		return nil, err
	}
	return fb, nil
}

func vkCreatePipelineLayout(device vk.Device, pCreateInfo *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var pl vk.PipelineLayout
	err := vk.Error(vk.CreatePipelineLayout(device, pCreateInfo, nil, &pl))
	if err != nil {
		return nil, err
	}
	return pl, nil
}

func vkCreateGraphicsPipelines(device vk.Device, pCreateInfos []vk.GraphicsPipelineCreateInfo) ([]vk.Pipeline, error) {
	var gp = make([]vk.Pipeline, len(pCreateInfos))
	err := vk.Error(vk.CreateGraphicsPipelines(device, nil, uint32(len(pCreateInfos)), pCreateInfos, nil, gp))
	if err != nil {
		return nil, err
	}
	return gp, nil
}

func vkCreateShaderModule(device vk.Device, pCreateInfo *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	var mod vk.ShaderModule
	err := vk.Error(vk.CreateShaderModule(device, pCreateInfo, nil, &mod))
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func vkCreateCommandPool(device vk.Device, flags vk.CommandPoolCreateFlags, queueFamilyIndex uint32) (vk.CommandPool, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		PNext:            nil,
		Flags:            flags,
		QueueFamilyIndex: queueFamilyIndex,
	}
	var cp vk.CommandPool
	err := vk.Error(vk.CreateCommandPool(device, &poolInfo, nil, &cp))
	if err != nil {
		return nil, err
	}
	return cp, nil
}

func vkAllocateCommandBuffersPrimary(device vk.Device, cmdPool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	cbAllocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		PNext:              nil,
		CommandPool:        cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	var buffers = make([]vk.CommandBuffer, count)
	err := vk.Error(vk.AllocateCommandBuffers(device, &cbAllocateInfo, buffers))
	if err != nil {
		return nil, err
	}
	return buffers, nil
}

func vkCreateBuffer(device vk.Device, pCreateInfo *vk.BufferCreateInfo) (vk.Buffer, error) {
	var buf vk.Buffer
	err := vk.Error(vk.CreateBuffer(device, pCreateInfo, nil, &buf))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func vkAllocateMemory(device vk.Device, pAllocateInfo *vk.MemoryAllocateInfo) (vk.DeviceMemory, error) {
	var dm vk.DeviceMemory
	err := vk.Error(vk.AllocateMemory(device, pAllocateInfo, nil, &dm))
	if err != nil {
		return nil, err
	}
	return dm, nil
}

func vkBindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, memoryOffset vk.DeviceSize) error {
	return vk.Error(vk.BindBufferMemory(device, buffer, memory, memoryOffset))
}

func vkMapMemory(device vk.Device, memory vk.DeviceMemory, offset vk.DeviceSize, size vk.DeviceSize, flags vk.MemoryMapFlags) (unsafe.Pointer, error) {
	var pData unsafe.Pointer
	err := vk.Error(vk.MapMemory(device, memory, offset, size, flags, &pData))
	if err != nil {
		return nil, err
	}
	return pData, nil
}
