package exporting

import (
	"path/filepath"
	"testing"

	"GpuVkUsage/pkg/utils"
)

func TestRegistryKnowsAllFormats(t *testing.T) {
	for _, name := range []string{"csv", "tsv", "jsonl", "parquet"} {
		if _, ok := Get(name); !ok {
			t.Errorf("Get(%q) not found", name)
		}
	}
	if _, ok := Get("xml"); ok {
		t.Error("Get(xml) should not be registered")
	}
}

func TestGetByPath(t *testing.T) {
	cases := map[string]string{
		"out/session.csv":  "csv",
		"session.TSV":      "tsv",
		"session.jsonl":    "jsonl",
		"a/b/c.parquet":    "parquet",
		"session.unknown0": "",
	}
	for path, want := range cases {
		f, ok := GetByPath(path)
		if want == "" {
			if ok {
				t.Errorf("GetByPath(%q) = %v; want miss", path, f.Name())
			}
			continue
		}
		if !ok || f.Name() != want {
			t.Errorf("GetByPath(%q) = %v, %v; want %q", path, f, ok, want)
		}
	}
}

func TestGetExtension(t *testing.T) {
	if got := GetExtension("parquet"); got != ".parquet" {
		t.Errorf("GetExtension(parquet) = %q; want .parquet", got)
	}
	if got := GetExtension("nope"); got != ".csv" {
		t.Errorf("GetExtension(nope) = %q; want .csv fallback", got)
	}
}

func testRecords() []Record {
	return []Record{
		{"timestamp": int64(100), "frameGpuBusyMs": 8.5, "hostname": "box", "batteryCharging": true},
		{"timestamp": int64(101), "frameGpuBusyMs": 7.25, "hostname": "box", "batteryCharging": false},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".csv", ".tsv", ".jsonl", ".parquet"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session"+ext)
			want := testRecords()

			if err := SaveRecords(path, want); err != nil {
				t.Fatalf("SaveRecords() error = %v", err)
			}
			got, err := LoadRecords(path)
			if err != nil {
				t.Fatalf("LoadRecords() error = %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("len(records) = %d; want %d", len(got), len(want))
			}

			for i := range want {
				for key, wv := range want[i] {
					gv, ok := got[i][key]
					if !ok {
						t.Errorf("record %d missing %q", i, key)
						continue
					}
					if wf, isNum := utils.ToFloat64Ok(wv); isNum {
						if gf := utils.ToFloat64(gv); gf != wf {
							t.Errorf("record %d %q = %v; want %v", i, key, gv, wv)
						}
						continue
					}
					if utils.FormatValue(gv) != utils.FormatValue(wv) {
						t.Errorf("record %d %q = %v; want %v", i, key, gv, wv)
					}
				}
			}
		})
	}
}

func TestToRecord(t *testing.T) {
	r := ToRecord(struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}{Name: "x", Value: 1.5})

	if r["name"] != "x" {
		t.Errorf("name = %v; want x", r["name"])
	}
	if r["value"] != 1.5 {
		t.Errorf("value = %v; want 1.5", r["value"])
	}
}
