package nimbus

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// StateKey names one piece of per-frame state a permutation binds.
type StateKey string

const (
	StateValueRemap      StateKey = "valueRemap"
	StateCutoffRange     StateKey = "cutoffRange"
	StateCutoffFade      StateKey = "cutoffFade"
	StatePalette         StateKey = "palette"
	StatePaletteRange    StateKey = "paletteRange"
	StateAlphaMultiplier StateKey = "alphaMultiplier"
	StateExtinction      StateKey = "extinction"
	StatePointLights     StateKey = "pointLights"
	StateDirLights       StateKey = "directionalLights"
	StateNormalEpsilon   StateKey = "normalEpsilon"
	StateDepthBuffer     StateKey = "depthBuffer"
	StateCameraNearFar   StateKey = "cameraNearFar"
	StateRandomSeed      StateKey = "randomSeed"
	StateAtlasGrid       StateKey = "atlasGrid"
	StateTime            StateKey = "time"
	StateClipPlanes      StateKey = "clipPlanes"
	StateVolumePlacement StateKey = "volumePlacement"
)

// bindingRules is the declarative flag -> required-state table. A key is
// required iff some enabled flag's dependency lists it. This replaces the
// conditional compilation a shader permutation system would use.
var bindingRules = []struct {
	key    StateKey
	needed func(o RenderOptions, atlas bool) bool
}{
	{StateValueRemap, func(o RenderOptions, _ bool) bool { return true }},
	{StateCutoffRange, func(o RenderOptions, _ bool) bool { return true }},
	{StateClipPlanes, func(o RenderOptions, _ bool) bool { return true }},
	{StateVolumePlacement, func(o RenderOptions, _ bool) bool { return true }},
	{StateCutoffFade, func(o RenderOptions, _ bool) bool { return !o.RenderNormals && !o.RenderMeanValue }},
	{StatePalette, func(o RenderOptions, _ bool) bool { return !o.RenderNormals }},
	{StatePaletteRange, func(o RenderOptions, _ bool) bool { return !o.RenderNormals }},
	{StateAlphaMultiplier, func(o RenderOptions, _ bool) bool { return !o.RenderNormals }},
	{StateExtinction, func(o RenderOptions, _ bool) bool {
		if o.RenderNormals || o.RenderMeanValue {
			return false
		}
		return o.UseExtinctionCoefficient || o.UseValueAsExtinctionCoefficient
	}},
	{StatePointLights, func(o RenderOptions, _ bool) bool { return o.lightingEnabled() && o.UsePointLights }},
	{StateDirLights, func(o RenderOptions, _ bool) bool { return o.lightingEnabled() && o.UseDirectionalLights }},
	{StateNormalEpsilon, func(o RenderOptions, _ bool) bool { return o.RenderNormals || o.lightingEnabled() }},
	{StateDepthBuffer, func(o RenderOptions, _ bool) bool { return o.UseVolumetricDepthTest }},
	{StateCameraNearFar, func(o RenderOptions, _ bool) bool { return o.UseVolumetricDepthTest }},
	{StateRandomSeed, func(o RenderOptions, _ bool) bool { return o.UseRandomStart }},
	{StateAtlasGrid, func(_ RenderOptions, atlas bool) bool { return atlas }},
	{StateTime, func(o RenderOptions, _ bool) bool { return true }},
}

// Permutation is one built variant of the renderer: a validated option set,
// the derived required-state keys, and the sampler strategy bound at build
// time. Rebuilding through the renderer releases the prior permutation.
type Permutation struct {
	ID       uuid.UUID
	Options  RenderOptions
	Sampler  FieldSampler
	required map[StateKey]bool

	released bool
}

// buildPermutation validates the configuration and derives the state set.
// All fatal configuration classes surface here, before any frame renders.
func buildPermutation(opts RenderOptions, atlas *FieldAtlas, palette *Palette) (*Permutation, error) {
	if opts.RaySteps < 1 {
		return nil, fmt.Errorf("permutation: raySteps must be >= 1, got %d", opts.RaySteps)
	}
	if opts.CustomFunction != nil && atlas != nil {
		return nil, fmt.Errorf("permutation: conflicting sampler strategies, both custom function and atlas attached")
	}
	if opts.CustomFunction == nil && atlas == nil {
		return nil, fmt.Errorf("permutation: no field source, attach an atlas or a custom function")
	}

	var sampler FieldSampler
	if opts.CustomFunction != nil {
		sampler = &ProceduralSampler{Func: opts.CustomFunction}
	} else {
		if atlas.TimeCount > atlas.Capacity() {
			return nil, fmt.Errorf("permutation: atlas capacity %d smaller than time count %d",
				atlas.Capacity(), atlas.TimeCount)
		}
		sampler = &AtlasSampler{Atlas: atlas}
	}

	p := &Permutation{
		ID:       uuid.New(),
		Options:  opts,
		Sampler:  sampler,
		required: make(map[StateKey]bool),
	}
	for _, rule := range bindingRules {
		if rule.needed(opts, atlas != nil) {
			p.required[rule.key] = true
		}
	}

	if p.Requires(StatePalette) && palette == nil {
		return nil, fmt.Errorf("permutation: palette required by active configuration but none attached")
	}

	return p, nil
}

// Requires reports whether the permutation binds the given state key.
func (p *Permutation) Requires(key StateKey) bool {
	return p.required[key]
}

// RequiredState lists the bound keys in stable order.
func (p *Permutation) RequiredState() []StateKey {
	keys := make([]StateKey, 0, len(p.required))
	for k := range p.required {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Release drops the permutation's bound resources. The renderer calls it on
// the outgoing permutation before compiling a replacement so rebuilds never
// accumulate stale bindings.
func (p *Permutation) Release() {
	p.Sampler = nil
	p.required = nil
	p.released = true
}

// Released reports whether Release has run.
func (p *Permutation) Released() bool { return p.released }
