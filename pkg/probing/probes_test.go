package probing

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileMissingReturnsZero(t *testing.T) {
	v, ts := File("/nonexistent/path/for/test")
	if v != "" {
		t.Errorf("File = %q; want empty", v)
	}
	if ts == 0 {
		t.Error("timestamp missing")
	}
}

func TestFileInt(t *testing.T) {
	path := writeTemp(t, "  42\n")
	v, _ := FileInt(path)
	if v != 42 {
		t.Errorf("FileInt = %d; want 42", v)
	}

	bad := writeTemp(t, "notanumber")
	if v, _ := FileInt(bad); v != 0 {
		t.Errorf("FileInt on garbage = %d; want 0", v)
	}
}

func TestFileFloat(t *testing.T) {
	path := writeTemp(t, "3.25\n")
	v, _ := FileFloat(path)
	if v != 3.25 {
		t.Errorf("FileFloat = %v; want 3.25", v)
	}
}

func TestFileKV(t *testing.T) {
	path := writeTemp(t, "MemTotal:       16384 kB\nMemFree:        8192 kB\nmalformed line\n")
	kv, _ := FileKV(path, ":")
	if kv["MemTotal"] != "16384 kB" {
		t.Errorf("MemTotal = %q", kv["MemTotal"])
	}
	if kv["MemFree"] != "8192 kB" {
		t.Errorf("MemFree = %q", kv["MemFree"])
	}
	if _, ok := kv["malformed line"]; ok {
		t.Error("line without separator produced a key")
	}
}

func TestParseHelpers(t *testing.T) {
	if v := ParseInt64(" 7 "); v != 7 {
		t.Errorf("ParseInt64 = %d; want 7", v)
	}
	if v := ParseInt64("x"); v != 0 {
		t.Errorf("ParseInt64 on garbage = %d; want 0", v)
	}
	if v := ParseFloat64("1.5\n"); v != 1.5 {
		t.Errorf("ParseFloat64 = %v; want 1.5", v)
	}
}

func TestExists(t *testing.T) {
	path := writeTemp(t, "x")
	if !Exists(path) {
		t.Error("Exists false for existing file")
	}
	if Exists(path + ".missing") {
		t.Error("Exists true for missing file")
	}
	if !IsDir(filepath.Dir(path)) {
		t.Error("IsDir false for directory")
	}
	if IsDir(path) {
		t.Error("IsDir true for regular file")
	}
}
