package aspect

import "testing"

func TestMaxDimensions(t *testing.T) {
	tests := []struct {
		name                 string
		aw, ah               float64
		totalPixels          int
		multiple             int
		wantW, wantH         int
	}{
		{name: "square", aw: 1, ah: 1, totalPixels: 1024 * 1024, multiple: 64, wantW: 1024, wantH: 1024},
		{name: "16:9 at 1024", aw: 16, ah: 9, totalPixels: 1024 * 1024, multiple: 64, wantW: 1344, wantH: 768},
		{name: "portrait 2:3", aw: 2, ah: 3, totalPixels: 1024 * 1024, multiple: 64, wantW: 832, wantH: 1216},
		{name: "square at 512/16", aw: 1, ah: 1, totalPixels: 512 * 512, multiple: 16, wantW: 512, wantH: 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := MaxDimensions(tt.aw, tt.ah, tt.totalPixels, tt.multiple)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("MaxDimensions(%v:%v, %d, %d) = %dx%d, want %dx%d",
					tt.aw, tt.ah, tt.totalPixels, tt.multiple, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestMaxDimensionsRespectsBudget(t *testing.T) {
	ratios := [][2]float64{{1, 1}, {16, 9}, {21, 9}, {4, 3}, {3, 2}, {9, 16}, {5, 1}}
	const budget = 1024 * 1024
	const multiple = 64

	for _, r := range ratios {
		w, h := MaxDimensions(r[0], r[1], budget, multiple)
		if w*h > budget {
			t.Errorf("%v:%v over budget: %dx%d = %d px", r[0], r[1], w, h, w*h)
		}
		if w%multiple != 0 || h%multiple != 0 {
			t.Errorf("%v:%v not /%d: %dx%d", r[0], r[1], multiple, w, h)
		}
	}
}

func TestPixels(t *testing.T) {
	tests := []struct {
		name         string
		ratio        string
		side         int
		rounding     int
		wantW, wantH int
		wantErr      bool
	}{
		{name: "explicit WxH", ratio: "1920x1080", side: 1024, rounding: 64, wantW: 1920, wantH: 1080},
		{name: "ratio", ratio: "16:9", side: 1024, rounding: 64, wantW: 1344, wantH: 768},
		{name: "bare value is square", ratio: "square", side: 1024, rounding: 64, wantW: 1024, wantH: 1024},
		{name: "bad ratio", ratio: "a:b", side: 1024, rounding: 64, wantErr: true},
		{name: "bad pixels", ratio: "axb", side: 1024, rounding: 64, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Pixels(tt.ratio, tt.side, tt.rounding)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Pixels(%q) expected error, got %dx%d", tt.ratio, w, h)
				}
				return
			}
			if err != nil {
				t.Fatalf("Pixels(%q) error: %v", tt.ratio, err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Pixels(%q) = %dx%d, want %dx%d", tt.ratio, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseSidelength(t *testing.T) {
	tests := []struct {
		arg          string
		wantSide     int
		wantRounding int
		wantErr      bool
	}{
		{arg: "1024/64", wantSide: 1024, wantRounding: 64},
		{arg: "512/16", wantSide: 512, wantRounding: 16},
		{arg: "1472", wantSide: 1472, wantRounding: 64},
		{arg: "x/64", wantErr: true},
		{arg: "1024/y", wantErr: true},
	}

	for _, tt := range tests {
		side, rounding, err := ParseSidelength(tt.arg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSidelength(%q) expected error", tt.arg)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSidelength(%q) error: %v", tt.arg, err)
			continue
		}
		if side != tt.wantSide || rounding != tt.wantRounding {
			t.Errorf("ParseSidelength(%q) = %d/%d, want %d/%d",
				tt.arg, side, rounding, tt.wantSide, tt.wantRounding)
		}
	}
}

func TestFixResolution(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
		wantCrop     Crop
	}{
		{
			name: "already aligned",
			w:    1024, h: 1024,
			wantW: 1024, wantH: 1024,
			wantCrop: Crop{},
		},
		{
			name: "width needs rounding",
			w:    1000, h: 1024,
			wantW: 1024, wantH: 1024,
			wantCrop: Crop{X0: 12, Y0: 0, X1: 1012, Y1: 1024},
		},
		{
			name: "both need rounding",
			w:    1000, h: 700,
			wantW: 1024, wantH: 704,
			wantCrop: Crop{X0: 12, Y0: 2, X1: 1012, Y1: 702},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, crop := FixResolution(tt.w, tt.h)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FixResolution(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
			if crop != tt.wantCrop {
				t.Errorf("crop = %+v, want %+v", crop, tt.wantCrop)
			}
		})
	}
}

func TestCropScaled(t *testing.T) {
	c := Crop{X0: 12, Y0: 2, X1: 1012, Y1: 702}
	got := c.Scaled(2.0)
	want := Crop{X0: 24, Y0: 4, X1: 2024, Y1: 1404}
	if got != want {
		t.Errorf("Scaled(2.0) = %+v, want %+v", got, want)
	}
	if !(Crop{}).IsZero() {
		t.Error("zero crop IsZero() = false")
	}
	if c.IsZero() {
		t.Error("non-zero crop IsZero() = true")
	}
}
