package vulkan

import (
	"errors"
	"strings"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/mnrn/ReVK/engine/core"
)

// frameScript fixes the outcome of every GPU-boundary call for one or more
// DrawFrame walks.
type frameScript struct {
	acquireIndex  uint32
	acquireStatus SurfaceStatus
	acquireErr    error
	recordErr     error
	submitErr     error
	presentStatus SurfaceStatus
	presentErr    error
	idleErr       error
	rebuildErr    error
}

// fakeFrameOps counts calls and records the synchronizer state each call
// observed, so tests can check both the order of operations and the state
// walk without a device.
type fakeFrameOps struct {
	fs     *FrameSynchronizer
	script frameScript

	acquireCalls int
	recordCalls  int
	submitCalls  int
	presentCalls int
	idleCalls    int
	rebuildCalls int

	statesAt       map[string]FrameState
	submittedImage uint32
	recordedImage  uint32
	recordedDelta  float64
}

func (f *fakeFrameOps) acquireNextImage(imageAvailable vk.Semaphore) (uint32, SurfaceStatus, error) {
	f.acquireCalls++
	f.statesAt["acquire"] = f.fs.State()
	return f.script.acquireIndex, f.script.acquireStatus, f.script.acquireErr
}

func (f *fakeFrameOps) recordFrame(imageIndex uint32, deltaTime float64) error {
	f.recordCalls++
	f.statesAt["record"] = f.fs.State()
	f.recordedImage = imageIndex
	f.recordedDelta = deltaTime
	return f.script.recordErr
}

func (f *fakeFrameOps) submitFrame(imageIndex uint32, imageAvailable, renderComplete vk.Semaphore, fence *VulkanFence) error {
	f.submitCalls++
	f.statesAt["submit"] = f.fs.State()
	f.submittedImage = imageIndex
	return f.script.submitErr
}

func (f *fakeFrameOps) presentFrame(imageIndex uint32, renderComplete vk.Semaphore) (SurfaceStatus, error) {
	f.presentCalls++
	f.statesAt["present"] = f.fs.State()
	return f.script.presentStatus, f.script.presentErr
}

func (f *fakeFrameOps) waitQueueIdle() error {
	f.idleCalls++
	f.statesAt["idle"] = f.fs.State()
	return f.script.idleErr
}

func (f *fakeFrameOps) rebuildResources() error {
	f.rebuildCalls++
	f.statesAt["rebuild"] = f.fs.State()
	return f.script.rebuildErr
}

func newFrameHarness(script frameScript, imageCount int) (*FrameSynchronizer, *fakeFrameOps) {
	fs := &FrameSynchronizer{
		state:    FrameStateIdle,
		InFlight: make([]*VulkanFence, imageCount),
	}
	ops := &fakeFrameOps{
		fs:       fs,
		script:   script,
		statesAt: make(map[string]FrameState),
	}
	return fs, ops
}

func TestDrawFrameHappyPath(t *testing.T) {
	fs, ops := newFrameHarness(frameScript{acquireIndex: 1}, 3)

	if err := fs.DrawFrame(ops, 0.016); err != nil {
		t.Fatalf("DrawFrame() = %v, want nil", err)
	}

	if ops.acquireCalls != 1 || ops.recordCalls != 1 || ops.submitCalls != 1 || ops.presentCalls != 1 {
		t.Errorf("calls = acquire %d, record %d, submit %d, present %d, want 1 each",
			ops.acquireCalls, ops.recordCalls, ops.submitCalls, ops.presentCalls)
	}
	if ops.idleCalls != 1 {
		t.Errorf("waitQueueIdle calls = %d, want 1", ops.idleCalls)
	}
	if ops.rebuildCalls != 0 {
		t.Errorf("rebuildResources calls = %d, want 0", ops.rebuildCalls)
	}
	if fs.CurrentImage != 1 {
		t.Errorf("CurrentImage = %d, want 1", fs.CurrentImage)
	}
	if ops.recordedImage != 1 || ops.submittedImage != 1 {
		t.Errorf("record/submit image = %d/%d, want 1/1", ops.recordedImage, ops.submittedImage)
	}
	if ops.recordedDelta != 0.016 {
		t.Errorf("recorded delta = %v, want 0.016", ops.recordedDelta)
	}
	if fs.State() != FrameStateIdle {
		t.Errorf("final state = %v, want %v", fs.State(), FrameStateIdle)
	}

	// Each boundary call must observe the state that phase runs under.
	wantStates := map[string]FrameState{
		"acquire": FrameStateAcquiring,
		"record":  FrameStateRecording,
		"submit":  FrameStateSubmitted,
		"present": FrameStatePresenting,
		"idle":    FrameStatePresenting,
	}
	for op, want := range wantStates {
		if got := ops.statesAt[op]; got != want {
			t.Errorf("state at %s = %v, want %v", op, got, want)
		}
	}
}

func TestDrawFrameStaleSurface(t *testing.T) {
	tests := []struct {
		name         string
		script       frameScript
		wantErr      error
		wantSubmits  int
		wantRebuilds int
		wantIdles    int
	}{
		{
			name:         "out of date at acquire drops the frame",
			script:       frameScript{acquireStatus: SurfaceOutOfDate},
			wantErr:      core.ErrFrameSkipped,
			wantSubmits:  0,
			wantRebuilds: 1,
			wantIdles:    0,
		},
		{
			name:         "suboptimal at acquire drops the frame",
			script:       frameScript{acquireStatus: SurfaceSuboptimal},
			wantErr:      core.ErrFrameSkipped,
			wantSubmits:  0,
			wantRebuilds: 1,
			wantIdles:    0,
		},
		{
			name:         "out of date at present keeps the submitted frame",
			script:       frameScript{presentStatus: SurfaceOutOfDate},
			wantErr:      nil,
			wantSubmits:  1,
			wantRebuilds: 1,
			wantIdles:    0,
		},
		{
			name:         "suboptimal at present keeps the submitted frame",
			script:       frameScript{presentStatus: SurfaceSuboptimal},
			wantErr:      nil,
			wantSubmits:  1,
			wantRebuilds: 1,
			wantIdles:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, ops := newFrameHarness(tt.script, 3)

			err := fs.DrawFrame(ops, 0.016)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DrawFrame() = %v, want %v", err, tt.wantErr)
			}
			if ops.submitCalls != tt.wantSubmits {
				t.Errorf("submit calls = %d, want %d", ops.submitCalls, tt.wantSubmits)
			}
			if ops.rebuildCalls != tt.wantRebuilds {
				t.Errorf("rebuild calls = %d, want %d", ops.rebuildCalls, tt.wantRebuilds)
			}
			if ops.idleCalls != tt.wantIdles {
				t.Errorf("idle calls = %d, want %d", ops.idleCalls, tt.wantIdles)
			}
			if got := ops.statesAt["rebuild"]; got != FrameStateRebuilding {
				t.Errorf("state at rebuild = %v, want %v", got, FrameStateRebuilding)
			}
			if fs.State() != FrameStateIdle {
				t.Errorf("final state = %v, want %v", fs.State(), FrameStateIdle)
			}
		})
	}
}

func TestDrawFrameResizeRebuildsAfterPresent(t *testing.T) {
	fs, ops := newFrameHarness(frameScript{}, 2)

	fs.NotifyResize()
	if err := fs.DrawFrame(ops, 0.016); err != nil {
		t.Fatalf("DrawFrame() with pending resize = %v, want nil", err)
	}
	if ops.submitCalls != 1 || ops.rebuildCalls != 1 {
		t.Fatalf("submit/rebuild calls = %d/%d, want 1/1", ops.submitCalls, ops.rebuildCalls)
	}

	// The flag is consumed by the rebuild; the next frame runs clean.
	if err := fs.DrawFrame(ops, 0.016); err != nil {
		t.Fatalf("DrawFrame() after rebuild = %v, want nil", err)
	}
	if ops.rebuildCalls != 1 {
		t.Errorf("rebuild calls after second frame = %d, want 1", ops.rebuildCalls)
	}
}

func TestDrawFrameResizeConsumedBySurfaceRebuild(t *testing.T) {
	fs, ops := newFrameHarness(frameScript{acquireStatus: SurfaceOutOfDate}, 2)

	// A stale surface and a resize arriving together must still rebuild
	// exactly once.
	fs.NotifyResize()
	if err := fs.DrawFrame(ops, 0.016); !errors.Is(err, core.ErrFrameSkipped) {
		t.Fatalf("DrawFrame() = %v, want %v", err, core.ErrFrameSkipped)
	}
	if ops.rebuildCalls != 1 {
		t.Fatalf("rebuild calls = %d, want 1", ops.rebuildCalls)
	}

	ops.script = frameScript{}
	if err := fs.DrawFrame(ops, 0.016); err != nil {
		t.Fatalf("DrawFrame() after rebuild = %v, want nil", err)
	}
	if ops.rebuildCalls != 1 {
		t.Errorf("rebuild calls after clean frame = %d, want 1", ops.rebuildCalls)
	}
}

func TestDrawFrameErrors(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name         string
		script       frameScript
		wantContains string
		wantRecords  int
		wantSubmits  int
		wantPresents int
		wantRebuilds int
	}{
		{
			name:         "acquire failure",
			script:       frameScript{acquireErr: errBoom},
			wantContains: "acquire next image",
			wantRecords:  0,
			wantSubmits:  0,
			wantPresents: 0,
			wantRebuilds: 0,
		},
		{
			name:         "record failure",
			script:       frameScript{recordErr: errBoom},
			wantRecords:  1,
			wantSubmits:  0,
			wantPresents: 0,
			wantRebuilds: 0,
		},
		{
			name:         "submit failure",
			script:       frameScript{submitErr: errBoom},
			wantRecords:  1,
			wantSubmits:  1,
			wantPresents: 0,
			wantRebuilds: 0,
		},
		{
			name:         "present failure",
			script:       frameScript{presentErr: errBoom},
			wantRecords:  1,
			wantSubmits:  1,
			wantPresents: 1,
			wantRebuilds: 0,
		},
		{
			name:         "queue idle failure",
			script:       frameScript{idleErr: errBoom},
			wantRecords:  1,
			wantSubmits:  1,
			wantPresents: 1,
			wantRebuilds: 0,
		},
		{
			name:         "rebuild failure after stale acquire",
			script:       frameScript{acquireStatus: SurfaceOutOfDate, rebuildErr: errBoom},
			wantContains: "rebuild presentation resources",
			wantRecords:  0,
			wantSubmits:  0,
			wantPresents: 0,
			wantRebuilds: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, ops := newFrameHarness(tt.script, 2)

			err := fs.DrawFrame(ops, 0.016)
			if !errors.Is(err, errBoom) {
				t.Fatalf("DrawFrame() = %v, want wrapped %v", err, errBoom)
			}
			if tt.wantContains != "" && !strings.Contains(err.Error(), tt.wantContains) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantContains)
			}
			if ops.recordCalls != tt.wantRecords {
				t.Errorf("record calls = %d, want %d", ops.recordCalls, tt.wantRecords)
			}
			if ops.submitCalls != tt.wantSubmits {
				t.Errorf("submit calls = %d, want %d", ops.submitCalls, tt.wantSubmits)
			}
			if ops.presentCalls != tt.wantPresents {
				t.Errorf("present calls = %d, want %d", ops.presentCalls, tt.wantPresents)
			}
			if ops.rebuildCalls != tt.wantRebuilds {
				t.Errorf("rebuild calls = %d, want %d", ops.rebuildCalls, tt.wantRebuilds)
			}
			if fs.State() != FrameStateIdle {
				t.Errorf("final state = %v, want %v", fs.State(), FrameStateIdle)
			}
		})
	}
}
