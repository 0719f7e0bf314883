package gpu

import (
	"fmt"
	"os"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
)

// loadShaderStage reads a '.spv' file and turns it into a shader module plus
// the vk.PipelineShaderStageCreateInfo binding it to the given stage. The
// module only exists to move the code onto the device; it can be destroyed
// right after pipeline creation.
func loadShaderStage(d vk.Device, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	mod, err := readShaderCode(d, path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	stageInfo := vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               "main\x00", // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}
	return mod, stageInfo, nil
}

func deleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func readShaderCode(d vk.Device, shaderFile string) (vk.ShaderModule, error) {
	shaderCodeB, err := os.ReadFile(shaderFile)
	if err != nil {
		return nil, fmt.Errorf("reading shader file %q: %w", shaderFile, err)
	}
	if len(shaderCodeB) == 0 || len(shaderCodeB)%4 != 0 {
		return nil, fmt.Errorf("shader file %q is not valid SPIR-V (%d bytes)", shaderFile, len(shaderCodeB))
	}
	logger.Debug("read shader file", zap.String("path", shaderFile), zap.Int("bytes", len(shaderCodeB)))

	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint64(len(shaderCodeB)),
		PCode:    asUint32Slice(shaderCodeB),
	}
	module, err := vkCreateShaderModule(d, createInfo)
	if err != nil {
		return nil, fmt.Errorf("creating shader module from %q: %w", shaderFile, err)
	}
	return module, nil
}
