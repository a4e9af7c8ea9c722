package collecting

import (
	"os"
	"path/filepath"
	"testing"

	"GpuVkUsage/pkg/metrics"
)

const sampleFdinfo = `pos:	0
flags:	02100002
mnt_id:	24
	ino:	397
drm-driver:	i915
drm-client-id:	42
drm-pdev:	0000:03:00.0
drm-engine-render:	123456789 ns
drm-engine-video:	5000 ns
`

func TestParseFdinfo(t *testing.T) {
	c := parseFdinfo(sampleFdinfo)

	if c.driver != "i915" {
		t.Errorf("driver = %q; want %q", c.driver, "i915")
	}
	if c.pdev != "0000:03:00.0" {
		t.Errorf("pdev = %q; want %q", c.pdev, "0000:03:00.0")
	}
	if c.clientID != "42" {
		t.Errorf("clientID = %q; want %q", c.clientID, "42")
	}
	if got := c.engines["drm-engine-render"]; got != 123456789 {
		t.Errorf("engines[drm-engine-render] = %d; want 123456789", got)
	}
	if got := c.engines["drm-engine-video"]; got != 5000 {
		t.Errorf("engines[drm-engine-video] = %d; want 5000", got)
	}
	if _, ok := c.engines["ino"]; ok {
		t.Error("continuation line was parsed as an engine entry")
	}
}

func TestClientBusyNs(t *testing.T) {
	tests := []struct {
		driver  string
		engines map[string]uint64
		want    uint64
	}{
		{"i915", map[string]uint64{"drm-engine-render": 100, "drm-engine-video": 900}, 100},
		{"amdgpu", map[string]uint64{"drm-engine-gfx": 250}, 250},
		{"msm", map[string]uint64{"drm-engine-gpu": 77}, 77},
		{"panfrost", map[string]uint64{"drm-engine-fragment": 40, "drm-engine-vertex-tiler": 60}, 100},
		{"somegpu", map[string]uint64{"drm-engine-a": 10, "drm-engine-b": 30}, 30},
		{"i915", map[string]uint64{}, 0},
	}

	for _, tt := range tests {
		c := fdinfoClient{driver: tt.driver, engines: tt.engines}
		if got := clientBusyNs(c); got != tt.want {
			t.Errorf("clientBusyNs(%s) = %d; want %d", tt.driver, got, tt.want)
		}
	}
}

func writeFdinfo(t *testing.T, procDir, pid, fd, content string) {
	t.Helper()
	dir := filepath.Join(procDir, pid, "fdinfo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, fd), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanFdinfoBusyDedupesClients(t *testing.T) {
	procDir := t.TempDir()

	// Two fds in one process referencing the same DRM client must count once.
	writeFdinfo(t, procDir, "100", "4", sampleFdinfo)
	writeFdinfo(t, procDir, "100", "5", sampleFdinfo)

	other := `drm-driver:	i915
drm-client-id:	43
drm-pdev:	0000:03:00.0
drm-engine-render:	1000000 ns
`
	writeFdinfo(t, procDir, "200", "4", other)

	// Non-numeric entries like /proc/self never hold per-process fdinfo.
	writeFdinfo(t, procDir, "self", "4", sampleFdinfo)

	totals := scanFdinfoBusy(procDir)
	want := uint64(123456789 + 1000000)
	if got := totals["0000:03:00.0"]; got != want {
		t.Errorf("totals[0000:03:00.0] = %d; want %d", got, want)
	}
}

func TestFdinfoLoad(t *testing.T) {
	tests := []struct {
		name string
		prev uint64
		cur  uint64
		dtNs int64
		want float64
	}{
		{"half busy", 0, 500_000_000, 1_000_000_000, 50},
		{"idle", 100, 100, 1_000_000_000, 0},
		{"clamped", 0, 5_000_000_000, 1_000_000_000, 100},
		{"zero interval", 0, 100, 0, 0},
		{"counter reset", 900, 100, 1_000_000_000, 0},
	}

	for _, tt := range tests {
		if got := fdinfoLoad(tt.prev, tt.cur, tt.dtNs); got != tt.want {
			t.Errorf("fdinfoLoad(%s) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestGPUCollectDynamicFdinfoSkipsFirstSample(t *testing.T) {
	procDir := t.TempDir()
	writeFdinfo(t, procDir, "100", "4", sampleFdinfo)

	c := &GPU{
		nodes:   []drmNode{{index: 0, driver: "i915", pdev: "0000:03:00.0"}},
		procDir: procDir,
		prev:    make(map[string]fdinfoState),
	}

	var first metrics.Sample
	c.CollectDynamic(&first)
	if len(first.GPUs) != 0 {
		t.Errorf("first sample produced %d GPU entries; want 0", len(first.GPUs))
	}

	var second metrics.Sample
	c.CollectDynamic(&second)
	if len(second.GPUs) != 1 {
		t.Fatalf("second sample produced %d GPU entries; want 1", len(second.GPUs))
	}
	busy := second.GPUs[0].BusyPercent
	if busy < 0 || busy > 100 {
		t.Errorf("BusyPercent = %v; want within [0, 100]", busy)
	}
}
