package controllers

import (
	"strings"
	"testing"
)

func TestGeometryRoundTrip(t *testing.T) {
	geojson := `{"type":"LineString","coordinates":[[-4.0267,5.3364],[-4.01,5.35]]}`

	wkbBytes, err := geometryToWKB(geojson)
	if err != nil {
		t.Fatalf("geometryToWKB: %v", err)
	}
	if len(wkbBytes) == 0 {
		t.Fatal("expected WKB bytes for a valid LineString")
	}

	back, err := wkbToGeoJSON(wkbBytes)
	if err != nil {
		t.Fatalf("wkbToGeoJSON: %v", err)
	}
	if !strings.Contains(back, `"LineString"`) {
		t.Errorf("round-tripped geometry = %q, want a LineString", back)
	}
	if !strings.Contains(back, "-4.0267") {
		t.Errorf("round-tripped geometry lost coordinates: %q", back)
	}
}

func TestGeometryEmpty(t *testing.T) {
	wkbBytes, err := geometryToWKB("")
	if err != nil || wkbBytes != nil {
		t.Errorf("empty geometry: got (%v, %v), want (nil, nil)", wkbBytes, err)
	}
	s, err := wkbToGeoJSON(nil)
	if err != nil || s != "" {
		t.Errorf("empty WKB: got (%q, %v), want empty", s, err)
	}
}

func TestGeometryInvalid(t *testing.T) {
	if _, err := geometryToWKB("{not geojson"); err == nil {
		t.Error("expected error for malformed geometry")
	}
}
