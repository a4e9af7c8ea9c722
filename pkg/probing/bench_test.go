package probing

import (
	"testing"
)

func BenchmarkFile(b *testing.B) {
	if !Exists("/proc/stat") {
		b.Skip("/proc/stat not available")
	}
	for i := 0; i < b.N; i++ {
		File("/proc/stat")
	}
}

func BenchmarkFileLines(b *testing.B) {
	if !Exists("/proc/stat") {
		b.Skip("/proc/stat not available")
	}
	for i := 0; i < b.N; i++ {
		FileLines("/proc/stat")
	}
}

func BenchmarkFileKV(b *testing.B) {
	if !Exists("/proc/meminfo") {
		b.Skip("/proc/meminfo not available")
	}
	for i := 0; i < b.N; i++ {
		FileKV("/proc/meminfo", ":")
	}
}

func BenchmarkGetTimestamp(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GetTimestamp()
	}
}

func BenchmarkParseInt64(b *testing.B) {
	s := "123456789"
	for i := 0; i < b.N; i++ {
		ParseInt64(s)
	}
}
