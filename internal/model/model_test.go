package model

import (
	"strings"
	"testing"
	"time"
)

func TestMarketByCode(t *testing.T) {
	tests := []struct {
		code     MarketCode
		wantOK   bool
		wantName string
		wantLang string
	}{
		{MarketChina, true, "China", "zh-CN,en;q=0.9"},
		{MarketUnitedStates, true, "UnitedStates", "en-US,en;q=0.9"},
		{MarketJapan, true, "Japan", "ja-JP,en;q=0.9"},
		{MarketCode("xx-XX"), false, "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			m, ok := MarketByCode(tt.code)
			if ok != tt.wantOK {
				t.Fatalf("MarketByCode(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", m.Name, tt.wantName)
			}
			if m.AcceptLanguage() != tt.wantLang {
				t.Errorf("AcceptLanguage = %q, want %q", m.AcceptLanguage(), tt.wantLang)
			}
		})
	}
}

func TestMarketByName(t *testing.T) {
	m, ok := MarketByName("SouthKorea")
	if !ok || m.Code != MarketSouthKorea {
		t.Errorf("MarketByName(SouthKorea) = %v, %v", m, ok)
	}
	if _, ok := MarketByName("Atlantis"); ok {
		t.Error("expected lookup miss for unknown name")
	}
}

func TestAllMarketsStableOrder(t *testing.T) {
	a := AllMarkets()
	b := AllMarkets()
	if len(a) != 14 {
		t.Fatalf("got %d markets, want 14", len(a))
	}
	for i := range a {
		if a[i].Code != b[i].Code {
			t.Fatalf("ordering not stable at index %d", i)
		}
	}
	for i := 1; i < len(a); i++ {
		if a[i-1].Code >= a[i].Code {
			t.Errorf("markets not sorted: %q before %q", a[i-1].Code, a[i].Code)
		}
	}
}

func TestExpandImageResolutions(t *testing.T) {
	got := ExpandImageResolutions("/th?id=OHR.Test")
	if len(got) != len(ImageVariants) {
		t.Fatalf("got %d variants, want %d", len(got), len(ImageVariants))
	}
	if got[0].Resolution != "UHD" {
		t.Errorf("first variant = %q, want UHD", got[0].Resolution)
	}
	want := "https://www.bing.com/th?id=OHR.Test_UHD.jpg"
	if got[0].URL != want {
		t.Errorf("URL = %q, want %q", got[0].URL, want)
	}
	for _, r := range got {
		if !strings.HasPrefix(r.URL, BingBaseURL) {
			t.Errorf("URL %q missing base", r.URL)
		}
	}
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name      string
		copyright string
		want      string
	}{
		{"with attribution", "Mount Fuji at dawn (© Example/Getty)", "Mount Fuji at dawn"},
		{"no attribution", "Just a caption", "Just a caption"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDescription(tt.copyright); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWallpaperValidate(t *testing.T) {
	valid := Wallpaper{
		Title:           "Test",
		OriginalURLBase: "/th?id=OHR.Test",
		TimeInfo:        TimeInfo{StartDate: "20250102"},
	}

	tests := []struct {
		name    string
		mutate  func(*Wallpaper)
		wantErr bool
	}{
		{"valid", func(w *Wallpaper) {}, false},
		{"missing title", func(w *Wallpaper) { w.Title = "  " }, true},
		{"missing urlbase", func(w *Wallpaper) { w.OriginalURLBase = "" }, true},
		{"bad start date", func(w *Wallpaper) { w.TimeInfo.StartDate = "2025-01-02" }, true},
		{"empty start date", func(w *Wallpaper) { w.TimeInfo.StartDate = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mutate(&w)
			err := w.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWallpaperImageURL(t *testing.T) {
	w := Wallpaper{ImageResolutions: ExpandImageResolutions("/th?id=OHR.X")}
	if got := w.ImageURL("Full HD"); !strings.HasSuffix(got, "_1920x1080.jpg") {
		t.Errorf("Full HD URL = %q", got)
	}
	if got := w.ImageURL("8K"); got != "" {
		t.Errorf("unknown tag returned %q, want empty", got)
	}
}

func TestDownloadStatus(t *testing.T) {
	if !StatusPending.IsActive() || !StatusInProgress.IsActive() {
		t.Error("pending/in-progress should be active")
	}
	for _, s := range []DownloadStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if s.IsActive() {
			t.Errorf("%s should not be active", s)
		}
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestDownloadTaskPercent(t *testing.T) {
	task := DownloadTask{BytesDownloaded: 25, TotalBytes: 100}
	if got := task.Percent(); got != 25 {
		t.Errorf("Percent = %v, want 25", got)
	}
	unknown := DownloadTask{BytesDownloaded: 25}
	if got := unknown.Percent(); got != 0 {
		t.Errorf("Percent with unknown total = %v, want 0", got)
	}
}

func TestDownloadTaskLabels(t *testing.T) {
	task := DownloadTask{Speed: 2.5 * (1 << 20), ETA: 95 * time.Second}
	if got := task.SpeedLabel(); got != "2.5 MB/s" {
		t.Errorf("SpeedLabel = %q", got)
	}
	if got := task.ETALabel(); got != "01:35" {
		t.Errorf("ETALabel = %q", got)
	}
	long := DownloadTask{ETA: 2*time.Hour + 3*time.Minute + 4*time.Second}
	if got := long.ETALabel(); got != "02:03:04" {
		t.Errorf("long ETALabel = %q", got)
	}
	idle := DownloadTask{}
	if idle.SpeedLabel() != "—" || idle.ETALabel() != "—" {
		t.Error("idle task should render dashes")
	}
}
