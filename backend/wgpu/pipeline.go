//go:build !nogpu

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/bloom"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/bloom.wgsl
var bloomShaderWGSL string

// uniformSize is the size of the Uniforms struct in bloom.wgsl.
const uniformSize = 48

// Fragment entry points in bloom.wgsl.
const (
	entryPrefilter  = "fs_prefilter"
	entryDownsample = "fs_downsample"
	entryUpsample   = "fs_upsample"
	entryCopy       = "fs_copy"
	entryComposite  = "fs_composite"
)

// entryPoint maps a material pass to its fragment shader.
func entryPoint(pass bloom.PassIndex) (string, bool) {
	switch pass {
	case bloom.PassPrefilter:
		return entryPrefilter, true
	case bloom.PassDownsample:
		return entryDownsample, true
	case bloom.PassUpsample:
		return entryUpsample, true
	case bloom.PassCopy:
		return entryCopy, true
	default:
		return "", false
	}
}

// compileShader compiles WGSL to SPIR-V words.
func compileShader(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile bloom shader: %w", err)
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

type pipelineKey struct {
	entry  string
	format gputypes.TextureFormat
}

// pipelines holds the shader module, layouts and sampler shared by every
// bloom pass, plus render pipelines created on first use per target format.
type pipelines struct {
	device     hal.Device
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler
	cache      map[pipelineKey]hal.RenderPipeline
}

func newPipelines(device hal.Device) (*pipelines, error) {
	code, err := compileShader(bloomShaderWGSL)
	if err != nil {
		return nil, err
	}

	p := &pipelines{device: device, cache: make(map[pipelineKey]hal.RenderPipeline)}
	if err := p.init(code); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *pipelines) init(code []uint32) error {
	module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "bloom_shader",
		Source: hal.ShaderSource{WGSL: bloomShaderWGSL, SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}
	p.module = module

	texture := &gputypes.TextureBindingLayout{
		SampleType:    gputypes.TextureSampleTypeFloat,
		ViewDimension: gputypes.TextureViewDimension2D,
	}
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "bloom_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{Binding: 2, Visibility: gputypes.ShaderStageFragment, Texture: texture},
			{Binding: 3, Visibility: gputypes.ShaderStageFragment, Texture: texture},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "bloom_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "bloom_linear_clamp",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create sampler: %w", err)
	}
	p.sampler = sampler
	return nil
}

// get returns the pipeline for entry rendering into format.
func (p *pipelines) get(entry string, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	key := pipelineKey{entry: entry, format: format}
	if pl, ok := p.cache[key]; ok {
		return pl, nil
	}

	target := gputypes.ColorTargetState{
		Format:    format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if entry == entryComposite {
		// frame.rgb += bloom, frame.a unchanged.
		target.Blend = &gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorZero,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	}

	pl, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "bloom_" + entry,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: entry,
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s pipeline for %v: %w", entry, format, err)
	}
	p.cache[key] = pl
	return pl, nil
}

func (p *pipelines) destroy() {
	for key, pl := range p.cache {
		p.device.DestroyRenderPipeline(pl)
		delete(p.cache, key)
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.module != nil {
		p.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}
