package nimbus

import (
	"fmt"
	"math"
	"sync"
)

// Renderer marches one volume per frame. Flags live in the built permutation;
// State holds everything the host may change between frames without a
// rebuild. Pixels are independent, so a frame is split into row jobs across
// a worker pool.
type Renderer struct {
	log      Logger
	profiler *FrameProfiler

	atlas   *FieldAtlas
	palette *Palette
	opts    RenderOptions
	perm    *Permutation
	workers int

	State FrameState
}

func (r *Renderer) Options() RenderOptions    { return r.opts }
func (r *Renderer) Permutation() *Permutation { return r.perm }
func (r *Renderer) Atlas() *FieldAtlas        { return r.atlas }
func (r *Renderer) Profiler() *FrameProfiler  { return r.profiler }
func (r *Renderer) Logger() Logger            { return r.log }

// SetOptions swaps the feature flags and rebuilds the permutation. The prior
// permutation is released before the replacement is compiled so rebuilds
// never leak bound state. On a build error the renderer is left without a
// permutation and RenderFrame fails until a valid option set is applied.
func (r *Renderer) SetOptions(opts RenderOptions) error {
	if r.perm != nil {
		r.perm.Release()
		r.perm = nil
	}
	perm, err := buildPermutation(opts, r.atlas, r.palette)
	if err != nil {
		return fmt.Errorf("renderer: rebuild failed: %w", err)
	}
	r.opts = opts
	r.perm = perm
	r.log.Debugf("rebuilt permutation %s, %d state bindings", perm.ID, len(perm.RequiredState()))
	return nil
}

// RenderFrame integrates every pixel of frame for the given camera feed.
// depth is the host's depth buffer (len Width*Height, [0,1] values); it is
// required iff the depth test flag was built in, and ignored otherwise.
func (r *Renderer) RenderFrame(frame *Frame, cam *FrameCamera, depth []float32) error {
	if frame == nil || frame.Width < 1 || frame.Height < 1 {
		return fmt.Errorf("renderer: missing or empty frame target")
	}
	if cam == nil {
		return fmt.Errorf("renderer: missing camera feed")
	}
	if r.perm == nil {
		return fmt.Errorf("renderer: no built permutation, fix options via SetOptions")
	}
	depthTest := r.perm.Requires(StateDepthBuffer)
	if depthTest {
		if len(depth) != frame.Width*frame.Height {
			return fmt.Errorf("renderer: depth buffer size %d does not match %dx%d frame",
				len(depth), frame.Width, frame.Height)
		}
		if cam.Near <= 0 || cam.Far <= cam.Near {
			return fmt.Errorf("renderer: depth test needs 0 < near < far, got near=%v far=%v", cam.Near, cam.Far)
		}
	}

	r.profiler.Reset()
	r.profiler.BeginScope("clear")
	frame.Clear()
	r.profiler.EndScope("clear")

	sampler := r.perm.Sampler
	state := r.State // copied: workers read a stable snapshot for this frame
	inf := float32(math.Inf(1))

	r.profiler.BeginScope("march")
	rows := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				r.renderRow(frame, cam, depth, sampler, &state, y, depthTest, inf)
			}
		}()
	}
	for y := 0; y < frame.Height; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()
	r.profiler.EndScope("march")
	r.profiler.SetCount("pixels", frame.Width*frame.Height)
	r.profiler.SetCount("raySteps", r.opts.RaySteps)

	return nil
}

func (r *Renderer) renderRow(frame *Frame, cam *FrameCamera, depth []float32,
	sampler FieldSampler, state *FrameState, y int, depthTest bool, inf float32) {

	w, h := frame.Width, frame.Height
	for x := 0; x < w; x++ {
		// Row 0 is the top of the image; v runs bottom-up like the corners.
		u := (float64(x) + 0.5) / float64(w)
		v := 1 - (float64(y)+0.5)/float64(h)

		origin, dir := cam.rayThrough(u, v)

		localO := transformPoint(state.VolumeInverseMatrix, origin)
		localD := transformVector(state.VolumeInverseMatrix, dir)
		if l := localD.Len(); l > 1e-12 {
			localD = localD.Mul(1 / l)
		} else {
			continue
		}
		// World distance per unit of local ray parameter, for depth compares.
		distScale := transformVector(state.VolumeMatrix, localD).Len()

		var jitter float32
		if r.opts.UseRandomStart {
			jitter = hashRay(dir, state.Random)
		}

		sceneDepth := inf
		if depthTest {
			sceneDepth = cam.linearizeDepth(depth[y*w+x])
		}

		out := integrateRay(&marchInput{
			sampler:    sampler,
			opts:       r.opts,
			state:      state,
			palette:    r.palette,
			origin:     localO,
			dir:        localD,
			jitter:     jitter,
			sceneDepth: sceneDepth,
			distScale:  distScale,
		})
		if out.W() != 0 || out.X() != 0 || out.Y() != 0 || out.Z() != 0 {
			frame.set(x, y, out)
		}
	}
}
