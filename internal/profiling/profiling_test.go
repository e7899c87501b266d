package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginEndFrameReturnsProfile(t *testing.T) {
	p := New(nil)
	p.Enable()

	p.BeginFrame(42)
	result := p.EndFrame()

	require.NotNil(t, result)
	assert.Equal(t, 42, result.Frame)
	assert.GreaterOrEqual(t, result.DurationMS, 0.0)
}

func TestFrameNotRecordedWhenDisabled(t *testing.T) {
	p := New(nil)
	p.BeginFrame(1)
	assert.Nil(t, p.EndFrame())
}

func TestMultipleFramesRecordedInOrder(t *testing.T) {
	p := New(nil)
	p.Enable()

	for i := 0; i < 5; i++ {
		p.BeginFrame(i)
		p.EndFrame()
	}

	buf := p.FrameBuffer()
	require.Len(t, buf, 5)
	for i, f := range buf {
		assert.Equal(t, i, f.Frame)
	}
}

func TestFrameBufferCapsAtSixty(t *testing.T) {
	p := New(nil)
	p.Enable()

	for i := 0; i < 100; i++ {
		p.BeginFrame(i)
		p.EndFrame()
	}

	buf := p.FrameBuffer()
	require.Len(t, buf, DefaultFrameBufferSize)
	assert.Equal(t, 40, buf[0].Frame, "oldest retained frame should be frame 40 once 100 frames have passed through a 60-frame buffer")
	assert.Equal(t, 99, buf[len(buf)-1].Frame)
}

func TestBeginRecordsCall(t *testing.T) {
	p := New(nil)
	p.Enable()

	p.BeginFrame(1)
	end := p.Begin("test_module", "Test Function", "", false)
	time.Sleep(time.Millisecond)
	end()
	frame := p.EndFrame()

	require.Len(t, frame.Calls, 1)
	assert.Equal(t, "Test Function", frame.Calls[0].Label)
	assert.Equal(t, "test_module", frame.Calls[0].Module)
	assert.Greater(t, frame.Calls[0].DurationMS, 0.0)
}

func TestNestedCallsHaveParentIDs(t *testing.T) {
	p := New(nil)
	p.Enable()

	p.BeginFrame(1)
	endOuter := p.Begin("outer", "Outer", "", false)
	endInner := p.Begin("inner", "Inner", "", false)
	endInner()
	endOuter()
	frame := p.EndFrame()

	require.Len(t, frame.Calls, 2)
	var outerCall, innerCall CallNode
	for _, c := range frame.Calls {
		if c.Label == "Outer" {
			outerCall = c
		}
		if c.Label == "Inner" {
			innerCall = c
		}
	}
	assert.Equal(t, 0, outerCall.ParentID)
	assert.Equal(t, outerCall.ID, innerCall.ParentID)
}

func TestDeeplyNestedCalls(t *testing.T) {
	p := New(nil)
	p.Enable()

	p.BeginFrame(1)
	end1 := p.Begin("level1", "Level 1", "", false)
	end2 := p.Begin("level2", "Level 2", "", false)
	end3 := p.Begin("level3", "Level 3", "", false)
	end3()
	end2()
	end1()
	frame := p.EndFrame()

	require.Len(t, frame.Calls, 3)
	byLabel := map[string]CallNode{}
	for _, c := range frame.Calls {
		byLabel[c.Label] = c
	}
	assert.Equal(t, 0, byLabel["Level 1"].ParentID)
	assert.Equal(t, byLabel["Level 1"].ID, byLabel["Level 2"].ParentID)
	assert.Equal(t, byLabel["Level 2"].ID, byLabel["Level 3"].ParentID)
}

func TestNoRecordingOutsideFrame(t *testing.T) {
	p := New(nil)
	p.Enable()

	end := p.Begin("test", "Outside", "", false)
	end()

	assert.Nil(t, p.current)
}

func TestBeginIsNoopWhenDisabled(t *testing.T) {
	p := New(nil)
	p.BeginFrame(1)
	end := p.Begin("test", "Disabled", "", false)
	end()
	assert.Nil(t, p.EndFrame())
}

func TestRecordRollbackAttachesToCurrentFrame(t *testing.T) {
	p := New(nil)
	p.Enable()

	p.BeginFrame(7)
	target := time.Now().Add(-200 * time.Millisecond)
	p.RecordRollback(12, target, 55.5)
	frame := p.EndFrame()

	require.NotNil(t, frame.Rollback)
	assert.True(t, frame.Rollback.TargetTimestamp.Equal(target))
	assert.Equal(t, 12, frame.Rollback.FramesResimulated)
	assert.Equal(t, 55.5, frame.Rollback.SnapshotAgeMS)
}

func TestRecordRollbackNoopWithoutOpenFrame(t *testing.T) {
	p := New(nil)
	p.Enable()
	p.RecordRollback(1, time.Now(), 1.0)
	// no panic, nothing to assert on: there is no current frame to attach to
}

func TestClearFrameBufferEmptiesHistory(t *testing.T) {
	p := New(nil)
	p.Enable()
	p.BeginFrame(1)
	p.EndFrame()

	p.ClearFrameBuffer()
	assert.Empty(t, p.FrameBuffer())
}

type recordingSink struct {
	frames []FrameProfile
}

func (r *recordingSink) EmitFrame(f FrameProfile) { r.frames = append(r.frames, f) }
func (r *recordingSink) Close() error             { return nil }

func TestEndFrameEmitsToSink(t *testing.T) {
	sink := &recordingSink{}
	p := New(sink)
	p.Enable()

	p.BeginFrame(3)
	p.EndFrame()

	require.Len(t, sink.frames, 1)
	assert.Equal(t, 3, sink.frames[0].Frame)
}
