package vkusage

import (
	"testing"
	"time"
)

func TestBackoffStartsActive(t *testing.T) {
	var b backoff
	if b.mode() != modeActive {
		t.Errorf("mode = %v; want active", b.mode())
	}
}

func TestBackoffSuspendAndCooldown(t *testing.T) {
	var b backoff
	now := time.Unix(1000, 0)

	b.suspend(now)
	if b.mode() != modeSuspended {
		t.Fatalf("mode = %v; want suspended", b.mode())
	}
	if b.cooldownOver(now) {
		t.Error("cooldown over immediately after suspend")
	}
	if !b.cooldownOver(now.Add(suspendCooldown)) {
		t.Error("cooldown not over after the full cooldown period")
	}
}

func TestBackoffResume(t *testing.T) {
	var b backoff
	b.suspend(time.Unix(1000, 0))
	b.resume()
	if b.mode() != modeActive {
		t.Errorf("mode = %v; want active after resume", b.mode())
	}
}

func TestBackoffDisableIsSticky(t *testing.T) {
	var b backoff
	b.disable()
	if b.mode() != modeDisabled {
		t.Fatalf("mode = %v; want disabled", b.mode())
	}

	b.suspend(time.Unix(1000, 0))
	if b.mode() != modeDisabled {
		t.Error("suspend overrode disabled")
	}
	b.resume()
	if b.mode() != modeDisabled {
		t.Error("resume overrode disabled")
	}
}

func TestBackoffNotReadyStreak(t *testing.T) {
	var b backoff
	for i := 0; i < notReadyLimit; i++ {
		if b.noteNotReady() {
			t.Fatalf("streak tripped at %d; limit is %d", i+1, notReadyLimit)
		}
	}
	if !b.noteNotReady() {
		t.Error("streak did not trip past the limit")
	}

	b.resetNotReady()
	if b.noteNotReady() {
		t.Error("streak survived a reset")
	}
}

func TestBackoffProbeRateLimit(t *testing.T) {
	var b backoff
	now := time.Unix(1000, 0)

	if b.probeDue(now) {
		t.Fatal("probe due while active")
	}

	b.suspend(now)
	if !b.probeDue(now) {
		t.Fatal("first probe after suspend not due")
	}
	if b.probeDue(now.Add(probeInterval / 2)) {
		t.Error("probe due again before the probe interval elapsed")
	}
	if !b.probeDue(now.Add(probeInterval)) {
		t.Error("probe not due after the probe interval")
	}
}
