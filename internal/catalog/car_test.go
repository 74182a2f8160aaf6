package catalog

import "testing"

func TestStringListValueAndScan(t *testing.T) {
	l := StringList{"Autopilot", "Glass Roof"}
	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got StringList
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 || got[0] != "Autopilot" || got[1] != "Glass Roof" {
		t.Fatalf("round trip mismatch: %#v", got)
	}

	// 空值列不应报错
	var empty StringList
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if err := empty.Scan(""); err != nil {
		t.Fatalf("Scan empty string: %v", err)
	}
}

func TestStringMapValueAndScan(t *testing.T) {
	m := StringMap{"engine": "4.0L V8 Biturbo", "seating": "2 passengers"}
	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got StringMap
	if err := got.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got["engine"] != "4.0L V8 Biturbo" {
		t.Fatalf("round trip mismatch: %#v", got)
	}

	var nilMap StringMap
	v, err = nilMap.Value()
	if err != nil {
		t.Fatalf("Value nil map: %v", err)
	}
	if v.(string) != "{}" {
		t.Fatalf("expected {} for nil map, got %s", v)
	}
}
