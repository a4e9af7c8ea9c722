package vkusage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// SamplingEnv is the opt-in switch for the whole sampler. Sampling is off by
// default; the process must set it to "1", "true" or "on".
const SamplingEnv = "VKP_SAMPLING"

// samplingEnabled resolves the opt-in exactly once per process and logs the
// decision.
var samplingEnabled = sync.OnceValue(func() bool {
	v := os.Getenv(SamplingEnv)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on":
		log.Printf("vkusage: GPU sampling enabled (%s=%s)", SamplingEnv, v)
		return true
	}
	log.Printf("vkusage: GPU sampling disabled (set %s=1 to enable)", SamplingEnv)
	return false
})

// capability is the resolved instrumentation contract: the tick-to-nanosecond
// factor and the wraparound mask for raw timestamps.
type capability struct {
	periodNs  float64
	tickMask  uint64
	validBits uint32
}

// resolveCapability decides whether instrumentation is possible at all.
// Any missing piece yields an error and a permanently inert Context.
func resolveCapability(caps DeviceCaps, d *Dispatch) (capability, error) {
	if !samplingEnabled() {
		return capability{}, errors.New("sampling not opted in")
	}
	if !d.complete() {
		return capability{}, errors.New("dispatch table is missing required entry points")
	}
	if caps.TimestampPeriodNs <= 0 {
		return capability{}, fmt.Errorf("invalid timestamp period %v", caps.TimestampPeriodNs)
	}
	if caps.TimestampValidBits == 0 {
		return capability{}, errors.New("queue family reports no valid timestamp bits")
	}

	mask := ^uint64(0)
	if caps.TimestampValidBits < 64 {
		mask = (uint64(1) << caps.TimestampValidBits) - 1
	}
	return capability{
		periodNs:  caps.TimestampPeriodNs,
		tickMask:  mask,
		validBits: caps.TimestampValidBits,
	}, nil
}
