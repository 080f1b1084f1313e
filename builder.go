package nimbus

import (
	"fmt"
	"runtime"
)

// RendererBuilder assembles a Renderer from its parts and validates the
// configuration before the first frame can render. Exactly one field source
// (atlas or custom function in the options) must be attached.
type RendererBuilder struct {
	logger  Logger
	atlas   *FieldAtlas
	palette *Palette
	opts    RenderOptions
	optsSet bool
	workers int
}

func NewRendererBuilder() *RendererBuilder {
	return &RendererBuilder{}
}

func (b *RendererBuilder) UseLogger(l Logger) *RendererBuilder {
	b.logger = l
	return b
}

func (b *RendererBuilder) UseAtlas(a *FieldAtlas) *RendererBuilder {
	b.atlas = a
	return b
}

func (b *RendererBuilder) UsePalette(p *Palette) *RendererBuilder {
	b.palette = p
	return b
}

func (b *RendererBuilder) UseOptions(opts RenderOptions) *RendererBuilder {
	b.opts = opts
	b.optsSet = true
	return b
}

// UseWorkers overrides the pixel worker count, default NumCPU.
func (b *RendererBuilder) UseWorkers(n int) *RendererBuilder {
	b.workers = n
	return b
}

// Build compiles the first permutation and returns a ready renderer. Any
// configuration error is fatal here; no partially constructed renderer is
// ever returned.
func (b *RendererBuilder) Build() (*Renderer, error) {
	opts := b.opts
	if !b.optsSet {
		opts = DefaultRenderOptions()
	}
	logger := b.logger
	if logger == nil {
		logger = NewNopLogger()
	}
	workers := b.workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	perm, err := buildPermutation(opts, b.atlas, b.palette)
	if err != nil {
		return nil, fmt.Errorf("renderer build: %w", err)
	}

	r := &Renderer{
		log:      logger,
		profiler: NewFrameProfiler(),
		atlas:    b.atlas,
		palette:  b.palette,
		opts:     opts,
		perm:     perm,
		workers:  workers,
		State:    DefaultFrameState(),
	}
	if b.atlas != nil {
		r.State.VolumeOrigin = b.atlas.Origin
		r.State.VolumeSize = b.atlas.Size()
	}

	logger.Infof("built renderer: permutation %s, %d state bindings, %d workers",
		perm.ID, len(perm.RequiredState()), workers)
	return r, nil
}
