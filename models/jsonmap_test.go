package models

import "testing"

func TestJSONMapValueScanRoundTrip(t *testing.T) {
	m := JSONMap{"time": "14:30", "timezone": "UTC"}
	raw, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out JSONMap
	if err := out.Scan(raw); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if out["time"] != "14:30" || out["timezone"] != "UTC" {
		t.Fatalf("round-trip mismatch: %#v", out)
	}
}

func TestJSONMapScanNil(t *testing.T) {
	var m JSONMap
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if m == nil {
		t.Fatal("expected non-nil empty map after Scan(nil)")
	}
}

func TestJSONMapGetters(t *testing.T) {
	m := JSONMap{"name": "f1", "size": float64(42)}
	if s, ok := m.GetString("name"); !ok || s != "f1" {
		t.Fatalf("GetString: %v %v", s, ok)
	}
	if f, ok := m.GetFloat("size"); !ok || f != 42 {
		t.Fatalf("GetFloat: %v %v", f, ok)
	}
	if _, ok := m.GetString("missing"); ok {
		t.Fatal("expected missing key to report not-ok")
	}
}
