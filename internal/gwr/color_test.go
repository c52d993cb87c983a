package gwr

import "testing"

func TestParseHexColor(t *testing.T) {
	r, g, b, err := parseHexColor("ff8000")
	if err != nil {
		t.Fatal(err)
	}
	if r != 255 || g != 128 || b != 0 {
		t.Errorf("got %d,%d,%d; want 255,128,0", r, g, b)
	}

	for _, bad := range []string{"", "fff", "ff80001", "zzzzzz"} {
		if _, _, _, err := parseHexColor(bad); err == nil {
			t.Errorf("parseHexColor(%q) should fail", bad)
		}
	}
}

func TestRGBToHue(t *testing.T) {
	tests := []struct {
		r, g, b int
		want    float64
	}{
		{255, 0, 0, 0},     // red
		{0, 255, 0, 120},   // green
		{0, 0, 255, 240},   // blue
		{128, 128, 128, 0}, // gray, no chroma
		{255, 255, 0, 60},  // yellow
	}
	for _, tt := range tests {
		if got := rgbToHue(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("rgbToHue(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestColorToHueCompatSwap(t *testing.T) {
	// Pure blue: the compat swap copies B into G, turning blue into cyan.
	compat, err := colorToHue("0000ff", true)
	if err != nil {
		t.Fatal(err)
	}
	if compat != 180*hueScale {
		t.Errorf("compat hue = %d, want %d", compat, 180*hueScale)
	}

	accurate, err := colorToHue("0000ff", false)
	if err != nil {
		t.Fatal(err)
	}
	if accurate != 240*hueScale {
		t.Errorf("accurate hue = %d, want %d", accurate, 240*hueScale)
	}
}
