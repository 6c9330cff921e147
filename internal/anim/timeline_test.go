package anim

import (
	"math"
	"testing"
	"time"

	"robonexus_go/internal/host"
)

const ms = time.Millisecond

func TestEasingEndpoints(t *testing.T) {
	eases := map[string]Ease{
		"linear":    Linear,
		"in":        Power2In,
		"out":       Power2Out,
		"inout":     Power2InOut,
		"sineinout": SineInOut,
	}
	for name, e := range eases {
		if got := e(0); math.Abs(got) > 1e-9 {
			t.Errorf("%s(0) = %v", name, got)
		}
		if got := e(1); math.Abs(got-1) > 1e-9 {
			t.Errorf("%s(1) = %v", name, got)
		}
	}
	if got := Power2InOut(0.5); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Power2InOut(0.5) = %v", got)
	}
}

func TestTweenFinalUpdateOnLargeJump(t *testing.T) {
	var last float64
	calls := 0
	ends := 0
	tl := NewTimeline()
	tl.Add(Step{
		Kind: StepTween, Name: "x", At: 100 * ms, Duration: 200 * ms, Ease: Power2Out,
		Update: func(p float64) { last = p; calls++ },
		OnEnd:  func() { ends++ },
	})

	tl.Advance(50 * ms)
	if calls != 0 {
		t.Fatalf("updated before start")
	}
	tl.Advance(time.Second)
	tl.Advance(time.Second)
	if last != 1 || calls != 1 || ends != 1 {
		t.Fatalf("last=%v calls=%d ends=%d", last, calls, ends)
	}
}

func TestOnCompleteOnce(t *testing.T) {
	n := 0
	tl := NewTimeline().
		Tween("a", 0, 100*ms, Linear, func(float64) {}).
		OnComplete(func() { n++ })

	for i := 0; i < 20; i++ {
		tl.Advance(16 * ms)
	}
	if n != 1 || !tl.Completed() {
		t.Fatalf("n=%d completed=%v", n, tl.Completed())
	}
}

func TestStepsApplyInTimeOrder(t *testing.T) {
	var got []string
	tl := NewTimeline()
	tl.Call("late", 300*ms, func() { got = append(got, "late") })
	tl.Call("early", 100*ms, func() { got = append(got, "early") })
	tl.Call("mid", 200*ms, func() { got = append(got, "mid") })

	tl.Advance(time.Second)
	if len(got) != 3 || got[0] != "early" || got[1] != "mid" || got[2] != "late" {
		t.Fatalf("order: %v", got)
	}
}

func TestNestOffsetsChild(t *testing.T) {
	child := NewTimeline()
	var at []time.Duration
	elapsed := time.Duration(0)
	child.Call("c0", 0, func() { at = append(at, elapsed) })
	child.Call("c1", 100*ms, func() { at = append(at, elapsed) })
	childDone := false
	child.OnComplete(func() { childDone = true })

	tl := NewTimeline().Nest(500*ms, child)
	if tl.Duration() != 600*ms {
		t.Fatalf("duration = %v", tl.Duration())
	}

	for elapsed = 0; elapsed <= 700*ms; elapsed += 50 * ms {
		if elapsed == 0 {
			tl.Advance(0)
			continue
		}
		tl.Advance(50 * ms)
	}
	if len(at) != 2 || at[0] != 500*ms || at[1] != 600*ms {
		t.Fatalf("child calls at %v", at)
	}
	if !childDone {
		t.Fatalf("nested OnComplete not fired")
	}
}

func TestKillStopsUpdatesAndCompletion(t *testing.T) {
	clk := host.NewManualClock()
	loop := host.NewLoop(clk)

	updates := 0
	done := false
	tl := NewTimeline().
		Tween("a", 0, time.Second, Linear, func(float64) { updates++ }).
		OnComplete(func() { done = true })
	tl.Play(loop)

	clk.Advance(100 * ms)
	loop.Tick()
	before := updates
	tl.Kill()

	for i := 0; i < 20; i++ {
		clk.Advance(100 * ms)
		loop.Tick()
	}
	if updates != before {
		t.Fatalf("updates after kill: %d -> %d", before, updates)
	}
	if done {
		t.Fatalf("OnComplete fired after kill")
	}
	if loop.PendingFrames() != 0 {
		t.Fatalf("kill left %d frames pending", loop.PendingFrames())
	}
}

func TestPauseFreezesElapsed(t *testing.T) {
	clk := host.NewManualClock()
	loop := host.NewLoop(clk)

	tl := NewTimeline().Tween("a", 0, time.Second, Linear, func(float64) {})
	tl.Play(loop)

	clk.Advance(200 * ms)
	loop.Tick()
	tl.Pause()

	clk.Advance(5 * time.Second)
	loop.Tick()
	if tl.Elapsed() != 200*ms {
		t.Fatalf("elapsed moved while paused: %v", tl.Elapsed())
	}

	tl.Resume()
	clk.Advance(100 * ms)
	loop.Tick()
	if tl.Elapsed() != 300*ms {
		t.Fatalf("elapsed after resume = %v", tl.Elapsed())
	}
}

func TestSeekRestoresStartValues(t *testing.T) {
	x := 0.0
	tl := NewTimeline()
	tl.Tween("up", 0, 100*ms, Linear, func(p float64) { x = Lerp(0, 1, p) })
	tl.Tween("down", 200*ms, 100*ms, Linear, func(p float64) { x = Lerp(1, 0.5, p) })

	tl.Seek(250 * ms)
	if math.Abs(x-0.75) > 1e-9 {
		t.Fatalf("x at 250ms = %v", x)
	}
	tl.Seek(50 * ms)
	if math.Abs(x-0.5) > 1e-9 {
		t.Fatalf("x at 50ms = %v", x)
	}
	if got := tl.Active(); len(got) != 1 || got[0] != "up" {
		t.Fatalf("active = %v", got)
	}
}
