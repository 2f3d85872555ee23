package diesel2d

import (
	_ "embed"
	"sync"

	"github.com/gogpu/naga"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Entry points of the composite shader module.
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

//go:embed shaders/composite.wgsl
var compositeShaderWGSL string

var (
	compositeSPIRVOnce sync.Once
	compositeSPIRV     []uint32
	compositeSPIRVErr  error
)

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, errors.Wrap(err, "compile shader")
	}
	if len(spirvBytes)%4 != 0 {
		return nil, errors.Errorf("SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// compositeShaderCode compiles the composite shader once per process. The
// texture and its sampler end up on one binding so the pipeline reads them
// from a single combined image sampler.
func compositeShaderCode() ([]uint32, error) {
	compositeSPIRVOnce.Do(func() {
		code, err := compileWGSL(compositeShaderWGSL)
		if err != nil {
			compositeSPIRVErr = err
			return
		}
		compositeSPIRV, compositeSPIRVErr = rebindSamplers(code, compositeBinding)
	})
	return compositeSPIRV, compositeSPIRVErr
}

// SPIR-V words and opcodes read by rebindSamplers.
const (
	spirvMagic        = 0x07230203
	spirvHeaderWords  = 5
	opTypeSampler     = 26
	opTypePointer     = 32
	opVariable        = 59
	opDecorate        = 71
	decorationBinding = 33
)

// rebindSamplers returns a copy of code with the Binding decoration of
// every sampler variable set to binding. Vulkan lets a separate image and
// sampler that share a binding read one COMBINED_IMAGE_SAMPLER descriptor,
// which WGSL cannot declare directly.
func rebindSamplers(code []uint32, binding uint32) ([]uint32, error) {
	if len(code) < spirvHeaderWords || code[0] != spirvMagic {
		return nil, errors.New("not a SPIR-V module")
	}
	out := append([]uint32(nil), code...)

	type bindingDecoration struct {
		target  uint32
		literal int
	}
	var decorations []bindingDecoration
	samplerTypes := make(map[uint32]bool)
	samplerPointers := make(map[uint32]bool)
	samplerVars := make(map[uint32]bool)
	for i := spirvHeaderWords; i < len(out); {
		count, op := int(out[i]>>16), out[i]&0xffff
		if count == 0 || i+count > len(out) {
			return nil, errors.Errorf("malformed SPIR-V instruction at word %d", i)
		}
		switch {
		case op == opTypeSampler && count >= 2:
			samplerTypes[out[i+1]] = true
		case op == opTypePointer && count >= 4 && samplerTypes[out[i+3]]:
			samplerPointers[out[i+1]] = true
		case op == opVariable && count >= 4 && samplerPointers[out[i+1]]:
			samplerVars[out[i+2]] = true
		case op == opDecorate && count >= 4 && out[i+2] == decorationBinding:
			decorations = append(decorations, bindingDecoration{target: out[i+1], literal: i + 3})
		}
		i += count
	}

	rebound := 0
	for _, d := range decorations {
		if samplerVars[d.target] {
			out[d.literal] = binding
			rebound++
		}
	}
	if rebound == 0 {
		return nil, errors.New("SPIR-V module has no bound sampler")
	}
	return out, nil
}

func loadShaderModule(driver Driver, device vk.Device, code []uint32) (vk.ShaderModule, error) {
	module, ret := driver.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	})
	if err := wrapResult(ret, "create shader module"); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}
