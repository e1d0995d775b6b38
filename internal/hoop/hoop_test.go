package hoop

import "testing"

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"100x100", false},
		{"70x70", false},
		{"130x180", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && p.Name != tt.name {
				t.Errorf("ByName(%q).Name = %q", tt.name, p.Name)
			}
		})
	}
}

func TestProfilePixels(t *testing.T) {
	w, h := Square100().CanvasPx()
	if w != 1000 || h != 1000 {
		t.Errorf("CanvasPx() = %dx%d, want 1000x1000", w, h)
	}

	sw, sh := Square100().SafePx()
	if sw != 900 || sh != 900 {
		t.Errorf("SafePx() = %dx%d, want 900x900", sw, sh)
	}

	sw, sh = Square70().SafePx()
	if sw != 620 || sh != 620 {
		t.Errorf("70x70 SafePx() = %dx%d, want 620x620", sw, sh)
	}
}

func TestProfiles(t *testing.T) {
	all := Profiles()
	if len(all) < 2 {
		t.Fatalf("Profiles() returned %d entries", len(all))
	}
	for _, p := range all {
		if p.SafeWidthMM > p.WidthMM || p.SafeHeightMM > p.HeightMM {
			t.Errorf("%s: safe area exceeds hoop", p.Name)
		}
	}
}
