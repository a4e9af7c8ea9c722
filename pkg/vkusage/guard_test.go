package vkusage

import (
	"testing"
	"time"
)

func TestGuardEnterExit(t *testing.T) {
	g := newLifetimeGuard()
	if !g.enter() {
		t.Fatal("enter refused on a live guard")
	}
	g.exit()
	if !g.enter() {
		t.Fatal("enter refused after a clean exit")
	}
	g.exit()
}

func TestGuardShutdownWithNoCallers(t *testing.T) {
	g := newLifetimeGuard()
	done := make(chan struct{})
	go func() {
		g.shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown blocked with no in-flight calls")
	}
}

func TestGuardShutdownWaitsForDrain(t *testing.T) {
	g := newLifetimeGuard()
	if !g.enter() {
		t.Fatal("enter refused")
	}

	done := make(chan struct{})
	go func() {
		g.shutdown()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("shutdown returned while a call was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	g.exit()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not return after the last exit")
	}
}

func TestGuardRejectsEntryDuringShutdown(t *testing.T) {
	g := newLifetimeGuard()
	g.shutdown()
	if g.enter() {
		t.Fatal("enter succeeded after shutdown")
	}
}

func TestGuardShutdownIdempotent(t *testing.T) {
	g := newLifetimeGuard()
	g.shutdown()
	g.shutdown() // must not panic or block
}
