package gpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MandelbrotExplorer/mandelbrot"
	"github.com/BrugadaSyndrome/bslogger"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

type Config struct {
	KernelSource     string
	VendorPreference string
}

func (c *Config) Verify() error {
	if c.KernelSource == "" {
		c.KernelSource = DefaultKernel
	}
	if c.VendorPreference == "" {
		c.VendorPreference = "NVIDIA"
	}
	return nil
}

// Backend computes whole frames on a GPU with one compute dispatch per frame. The device and pipeline are acquired
// once, output buffers follow the frame resolution.
type Backend struct {
	adapter         *wgpu.Adapter
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	device          *wgpu.Device
	instance        *wgpu.Instance
	logger          bslogger.Logger
	mutex           sync.Mutex
	output          *wgpu.Buffer
	outputSize      uint64
	pipeline        *wgpu.ComputePipeline
	pipelineLayout  *wgpu.PipelineLayout
	shader          *wgpu.ShaderModule
	staging         *wgpu.Buffer
	uniform         *wgpu.Buffer
}

func NewBackend(config Config) (*Backend, error) {
	config.Verify()
	if err := ValidateKernel(config.KernelSource); err != nil {
		return nil, err
	}

	b := &Backend{
		logger: bslogger.NewLogger("GPU", bslogger.Normal, nil),
	}
	if err := b.acquire(config); err != nil {
		b.Close()
		return nil, err
	}
	b.logger.Infof("Using adapter %s", b.AdapterName())
	return b, nil
}

func (b *Backend) acquire(config Config) error {
	var err error
	b.instance, err = wgpu.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("unable to create instance - %w", err)
	}
	b.adapter, err = b.selectAdapter(config.VendorPreference)
	if err != nil {
		return err
	}
	if err = requireFloat64(b.adapter.Features()); err != nil {
		return err
	}
	b.device, err = b.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "escape-device",
		RequiredFeatures: wgpu.Features(gputypes.FeatureShaderFloat64),
	})
	if err != nil {
		return fmt.Errorf("unable to create device - %w", err)
	}

	b.shader, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "escape-kernel",
		WGSL:  config.KernelSource,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKernel, err)
	}
	b.bindGroupLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "escape-bgl",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("unable to create bind group layout - %w", err)
	}
	b.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "escape-pl",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("unable to create pipeline layout - %w", err)
	}
	b.pipeline, err = b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      "escape-pipeline",
		Layout:     b.pipelineLayout,
		Module:     b.shader,
		EntryPoint: "main",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKernel, err)
	}
	b.uniform, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "escape-frame",
		Size:  frameRecordSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("unable to create frame buffer - %w", err)
	}
	return nil
}

// selectAdapter asks for adapters under each power preference and keeps the one matching the vendor preference.
func (b *Backend) selectAdapter(preference string) (*wgpu.Adapter, error) {
	var adapters []*wgpu.Adapter
	var infos []gputypes.AdapterInfo
	for _, power := range []wgpu.PowerPreference{wgpu.PowerPreferenceHighPerformance, wgpu.PowerPreferenceLowPower} {
		adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{PowerPreference: power})
		if err != nil || adapter == nil {
			continue
		}
		info := adapter.Info()
		duplicate, shared := false, false
		for i, seen := range infos {
			if sameAdapter(seen, info) {
				duplicate = true
				shared = shared || adapters[i] == adapter
			}
		}
		if duplicate {
			// A handle shared with a kept adapter must stay alive
			if !shared {
				adapter.Release()
			}
			continue
		}
		adapters = append(adapters, adapter)
		infos = append(infos, info)
	}

	chosen := preferredAdapter(infos, preference)
	if chosen < 0 {
		return nil, ErrNoAdapter
	}
	for i, adapter := range adapters {
		if i != chosen {
			adapter.Release()
		}
	}
	return adapters[chosen], nil
}

func (b *Backend) AdapterName() string {
	if b.adapter == nil {
		return ""
	}
	info := b.adapter.Info()
	return fmt.Sprintf("%s (%s)", info.Name, info.Vendor)
}

// Dispatch computes frame into dst, blocking until the counts have been read back.
func (b *Backend) Dispatch(ctx context.Context, frame mandelbrot.Frame, dst []uint32) error {
	if err := frame.Verify(); err != nil {
		return err
	}
	count := frame.Width * frame.Height
	if len(dst) < count {
		return fmt.Errorf("destination holds %d pixels, frame needs %d", len(dst), count)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.device == nil {
		return ErrNoAdapter
	}
	startTime := time.Now()
	size := uint64(4 * count)
	if err := b.ensureOutput(size); err != nil {
		return err
	}
	if err := b.device.Queue().WriteBuffer(b.uniform, 0, packFrame(frame)); err != nil {
		return fmt.Errorf("unable to write frame record - %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("unable to create encoder - %w", err)
	}
	pass, err := encoder.BeginComputePass(nil)
	if err != nil {
		return fmt.Errorf("unable to begin compute pass - %w", err)
	}
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, b.bindGroup, nil)
	pass.Dispatch(workgroups(frame.Width), workgroups(frame.Height), 1)
	if err = pass.End(); err != nil {
		return fmt.Errorf("unable to end compute pass - %w", err)
	}
	encoder.CopyBufferToBuffer(b.output, 0, b.staging, 0, size)
	commands, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("unable to finish encoder - %w", err)
	}
	if _, err = b.device.Queue().Submit(commands); err != nil {
		return fmt.Errorf("unable to submit - %w", err)
	}

	if err = b.staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("unable to map read back buffer - %w", err)
	}
	mapped, err := b.staging.MappedRange(0, size)
	if err != nil {
		_ = b.staging.Unmap()
		return fmt.Errorf("unable to read mapped range - %w", err)
	}
	err = unpackCounts(mapped.Bytes(), dst[:count])
	if unmapErr := b.staging.Unmap(); err == nil && unmapErr != nil {
		err = fmt.Errorf("unable to unmap read back buffer - %w", unmapErr)
	}
	b.logger.Debugf("Dispatched %s in %s", frame.String(), time.Since(startTime))
	return err
}

// ensureOutput sizes the output and staging buffers, and the bind group that refers to them, for size bytes.
func (b *Backend) ensureOutput(size uint64) error {
	if b.output != nil && b.outputSize == size {
		return nil
	}
	b.releaseOutput()

	var err error
	b.output, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "escape-counts",
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("unable to create output buffer - %w", err)
	}
	b.staging, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "escape-read-back",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return fmt.Errorf("unable to create read back buffer - %w", err)
	}
	b.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "escape-bg",
		Layout: b.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.uniform, Size: frameRecordSize},
			{Binding: 1, Buffer: b.output, Size: size},
		},
	})
	if err != nil {
		return fmt.Errorf("unable to create bind group - %w", err)
	}
	b.outputSize = size
	return nil
}

func (b *Backend) releaseOutput() {
	if b.bindGroup != nil {
		b.bindGroup.Release()
		b.bindGroup = nil
	}
	if b.staging != nil {
		b.staging.Release()
		b.staging = nil
	}
	if b.output != nil {
		b.output.Release()
		b.output = nil
	}
	b.outputSize = 0
}

// Close releases every device object in reverse order of creation.
func (b *Backend) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.releaseOutput()
	if b.uniform != nil {
		b.uniform.Release()
		b.uniform = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.pipelineLayout != nil {
		b.pipelineLayout.Release()
		b.pipelineLayout = nil
	}
	if b.bindGroupLayout != nil {
		b.bindGroupLayout.Release()
		b.bindGroupLayout = nil
	}
	if b.shader != nil {
		b.shader.Release()
		b.shader = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	return nil
}
