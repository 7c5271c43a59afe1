package geo

import (
	"math"
	"testing"
)

func TestResolveKnownRegions(t *testing.T) {
	r := NewResolver()

	cases := []struct {
		postal  string
		wantLat float64
		wantLon float64
	}{
		{"1010", 48.2082, 16.3738}, // Wien
		{"4320", 48.3069, 14.2858}, // OÖ
		{"8010", 47.0707, 15.4395}, // Graz
		{"9020", 46.6247, 14.3053}, // Klagenfurt
	}
	for _, c := range cases {
		got, err := r.Resolve(c.postal)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", c.postal, err)
		}
		if got.Lat != c.wantLat || got.Lon != c.wantLon {
			t.Errorf("Resolve(%q) = %+v, want (%v, %v)", c.postal, got, c.wantLat, c.wantLon)
		}
	}
}

func TestResolveFallbackForUnknownDigit(t *testing.T) {
	r := NewResolver()
	got, err := r.Resolve("0999")
	if err != nil {
		t.Fatalf("Resolve(0999): %v", err)
	}
	if got != defaultCenter {
		t.Errorf("unknown leading digit should fall back to default center, got %+v", got)
	}

	custom := Coordinate{Lat: 47.0, Lon: 13.0}
	r2 := NewResolverWithFallback(custom)
	got, err = r2.Resolve("0999")
	if err != nil {
		t.Fatalf("Resolve(0999) with custom fallback: %v", err)
	}
	if got != custom {
		t.Errorf("custom fallback not used, got %+v", got)
	}
}

func TestResolveUnresolvable(t *testing.T) {
	r := NewResolver()
	for _, code := range []string{"", "   ", "A-4320", "wien"} {
		if _, err := r.Resolve(code); err != ErrUnresolvable {
			t.Errorf("Resolve(%q): expected ErrUnresolvable, got %v", code, err)
		}
	}
}

func TestDistanceZeroForSamePoint(t *testing.T) {
	p := Coordinate{Lat: 48.3069, Lon: 14.2858}
	if d := Distance(p, p); d != 0 {
		t.Errorf("Distance(p, p) = %v, want 0", d)
	}
}

func TestDistanceKnownCityPairs(t *testing.T) {
	wien := Coordinate{Lat: 48.2082, Lon: 16.3738}
	linz := Coordinate{Lat: 48.3069, Lon: 14.2858}
	innsbruck := Coordinate{Lat: 47.2692, Lon: 11.4041}

	// Straight-line Wien–Linz is roughly 155 km.
	if d := Distance(wien, linz); d < 150 || d > 160 {
		t.Errorf("Distance(Wien, Linz) = %.1f km, want ~155", d)
	}
	// Wien–Innsbruck roughly 385 km.
	if d := Distance(wien, innsbruck); d < 378 || d > 395 {
		t.Errorf("Distance(Wien, Innsbruck) = %.1f km, want ~385", d)
	}
	// Symmetry.
	if d1, d2 := Distance(wien, linz), Distance(linz, wien); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

// Same postal code resolves to the same centroid, so the distance is zero and
// any positive service radius covers it.
func TestSamePostalCodeWithinRadius(t *testing.T) {
	r := NewResolver()
	home, err := r.Resolve("4320")
	if err != nil {
		t.Fatalf("Resolve home: %v", err)
	}
	site, err := r.Resolve("4320")
	if err != nil {
		t.Fatalf("Resolve site: %v", err)
	}
	if d := Distance(home, site); d > 0 {
		t.Errorf("same postal code should yield zero distance, got %v", d)
	}
}
