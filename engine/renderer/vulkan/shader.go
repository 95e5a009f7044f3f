package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"

	vk "github.com/goki/vulkan"
)

// First word of every valid SPIR-V binary.
const spirvMagic = 0x07230203

// ShaderModuleCreateFromFile reads a compiled SPIR-V binary from disk and
// wraps it in a shader module.
func ShaderModuleCreateFromFile(context *VulkanContext, path string) (vk.ShaderModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vk.NullShaderModule, fmt.Errorf("load shader module %s: %w", path, err)
	}
	module, err := ShaderModuleCreate(context, data)
	if err != nil {
		return vk.NullShaderModule, fmt.Errorf("shader %s: %w", path, err)
	}
	return module, nil
}

// ShaderModuleCreate builds a shader module from raw SPIR-V bytes.
func ShaderModuleCreate(context *VulkanContext, code []byte) (vk.ShaderModule, error) {
	words, err := bytecodeFromBytes(code)
	if err != nil {
		return vk.NullShaderModule, err
	}

	shaderCreateInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}
	shaderCreateInfo.Deref()

	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &shaderCreateInfo, context.Allocator, &module); res != vk.Success {
		return vk.NullShaderModule, vkError("vkCreateShaderModule", res)
	}
	return module, nil
}

func ShaderModuleDestroy(context *VulkanContext, module vk.ShaderModule) {
	if module != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, module, context.Allocator)
	}
}

// ShaderStage fills the pipeline stage description for a module. Every
// shader the engine builds uses "main" as its entry point.
func ShaderStage(module vk.ShaderModule, stage vk.ShaderStageFlagBits) vk.PipelineShaderStageCreateInfo {
	stageCreateInfo := vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: module,
		PName:  VulkanSafeString("main"),
	}
	stageCreateInfo.Deref()
	return stageCreateInfo
}

// bytecodeFromBytes reinterprets a byte slice as little-endian SPIR-V
// words, validating the length and magic number first.
func bytecodeFromBytes(data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V binary length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("SPIR-V magic mismatch: got 0x%08X", words[0])
	}
	return words, nil
}
