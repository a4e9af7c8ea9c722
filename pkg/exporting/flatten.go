package exporting

import (
	"fmt"
	"unicode"
)

// FlattenRecord turns a nested sample record into scalar columns so the
// delimited and parquet writers can handle it. Section maps are prefixed
// with the section name (battery.percent becomes batteryPercent), the
// gpus array is indexed (gpu0BusyPercent) and network interfaces are
// keyed by interface name (netEth0RxBps).
func FlattenRecord(record Record) Record {
	flat := make(Record, len(record)*4)
	for key, val := range record {
		switch v := val.(type) {
		case map[string]interface{}:
			if key == "network" {
				flattenNetwork(flat, v)
				continue
			}
			for k, sv := range v {
				flat[key+capitalizeFirst(k)] = sv
			}
		case []interface{}:
			if key == "gpus" {
				flattenGPUs(flat, v)
			}
		default:
			flat[key] = val
		}
	}
	return flat
}

func flattenGPUs(flat Record, gpus []interface{}) {
	for i, g := range gpus {
		m, ok := g.(map[string]interface{})
		if !ok {
			continue
		}
		prefix := fmt.Sprintf("gpu%d", i)
		for k, v := range m {
			if k == "index" {
				continue
			}
			flat[prefix+capitalizeFirst(k)] = v
		}
	}
}

func flattenNetwork(flat Record, network map[string]interface{}) {
	ifaces, ok := network["interfaces"].([]interface{})
	if !ok {
		return
	}
	for _, raw := range ifaces {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		if name == "" {
			continue
		}
		prefix := "net" + capitalizeFirst(name)
		for k, v := range m {
			if k == "name" {
				continue
			}
			flat[prefix+capitalizeFirst(k)] = v
		}
	}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
