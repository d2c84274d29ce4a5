package media

import (
	"errors"
	"runtime"
	"testing"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/topstories"
)

type recordedRun struct {
	name string
	args []string
}

func testLauncher(t *testing.T, opener string) (*Launcher, *[]recordedRun) {
	t.Helper()
	cfg := config.TestConfig()
	cfg.Media.DefaultOpener = opener
	cfg.Media.ImageViewers = nil

	var runs []recordedRun
	l := NewLauncher(cfg).WithRunner(func(name string, args ...string) error {
		runs = append(runs, recordedRun{name: name, args: args})
		return nil
	})
	return l, &runs
}

func TestDetectType(t *testing.T) {
	d, err := NewTypeDetector()
	if err != nil {
		t.Fatalf("NewTypeDetector failed: %v", err)
	}

	tests := []struct {
		name     string
		url      string
		expected Type
	}{
		{name: "JPEG image", url: "https://static01.nyt.com/images/2024/01/02/photo-superJumbo.jpg", expected: TypeImage},
		{name: "JPEG with query", url: "https://example.org/photo.jpeg?quality=75&auto=webp", expected: TypeImage},
		{name: "Mixed case PNG", url: "https://example.org/Chart.PnG", expected: TypeImage},
		{name: "NYT image path without extension", url: "https://static01.nyt.com/images/2024/01/02/crop", expected: TypeImage},
		{name: "MP4 video", url: "https://example.org/clip.mp4", expected: TypeVideo},
		{name: "HLS stream", url: "https://example.org/master.m3u8", expected: TypeVideo},
		{name: "NYT video page", url: "https://www.nytimes.com/video/world/100000009.html", expected: TypeVideo},
		{name: "Article page", url: "https://www.nytimes.com/2024/01/02/world/story.html", expected: TypeUnknown},
		{name: "Dot in host only", url: "https://nyti.ms/3abc", expected: TypeUnknown},
		{name: "Empty", url: "", expected: TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DetectType(tt.url); got != tt.expected {
				t.Errorf("DetectType(%s) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestDetectMediaPrefersUpstreamType(t *testing.T) {
	d, err := NewTypeDetector()
	if err != nil {
		t.Fatal(err)
	}

	if got := d.DetectMedia(topstories.Media{URL: "https://example.org/x", Type: "image"}); got != TypeImage {
		t.Errorf("expected image, got %v", got)
	}
	if got := d.DetectMedia(topstories.Media{URL: "https://example.org/x.jpg", Type: "video"}); got != TypeVideo {
		t.Errorf("expected video, got %v", got)
	}
	if got := d.DetectMedia(topstories.Media{URL: "https://example.org/x.jpg"}); got != TypeImage {
		t.Errorf("expected image from extension, got %v", got)
	}
}

func TestGetDefaultOpener(t *testing.T) {
	d, err := NewTypeDetector()
	if err != nil {
		t.Fatal(err)
	}

	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}
	want, ok := expected[runtime.GOOS]
	if !ok {
		want = "xdg-open"
	}
	if got := d.GetDefaultOpener(); got != want {
		t.Errorf("GetDefaultOpener() = %q, want %q", got, want)
	}
}

func TestOpenArticle(t *testing.T) {
	l, runs := testLauncher(t, "xdg-open")

	if err := l.OpenArticle("https://www.nytimes.com/2024/01/02/world/story.html"); err != nil {
		t.Fatalf("OpenArticle failed: %v", err)
	}
	if len(*runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(*runs))
	}
	run := (*runs)[0]
	if run.name != "xdg-open" || len(run.args) != 1 || run.args[0] != "https://www.nytimes.com/2024/01/02/world/story.html" {
		t.Errorf("unexpected command: %+v", run)
	}
}

func TestOpenArticleRejectsUnsafeURLs(t *testing.T) {
	l, runs := testLauncher(t, "xdg-open")

	for _, u := range []string{"", "javascript:alert(1)", "file:///etc/passwd", "/relative/path", "http://localhost/x"} {
		if err := l.OpenArticle(u); err == nil {
			t.Errorf("OpenArticle(%q) should fail", u)
		}
	}
	if len(*runs) != 0 {
		t.Errorf("nothing should have been started, got %+v", *runs)
	}
}

func TestOpenArticleWindowsStart(t *testing.T) {
	l, runs := testLauncher(t, "start")

	if err := l.OpenArticle("https://www.nytimes.com/a.html"); err != nil {
		t.Fatal(err)
	}
	run := (*runs)[0]
	if run.name != "cmd" || len(run.args) != 4 || run.args[2] != "" || run.args[3] != "https://www.nytimes.com/a.html" {
		t.Errorf("unexpected command: %+v", run)
	}
}

func TestOpenMediaUsesImageViewer(t *testing.T) {
	l, runs := testLauncher(t, "xdg-open")
	l.imageViewer = "feh"

	if err := l.OpenMedia(topstories.Media{URL: "https://static01.nyt.com/images/a.jpg", Type: "image"}); err != nil {
		t.Fatal(err)
	}
	if err := l.OpenMedia(topstories.Media{URL: "https://vp.nyt.com/video/a.mp4", Type: "video"}); err != nil {
		t.Fatal(err)
	}

	if got := (*runs)[0].name; got != "feh" {
		t.Errorf("image opened with %q, want feh", got)
	}
	if got := (*runs)[1].name; got != "xdg-open" {
		t.Errorf("video opened with %q, want xdg-open", got)
	}
}

func TestOpenRunnerError(t *testing.T) {
	l, _ := testLauncher(t, "xdg-open")
	l.WithRunner(func(string, ...string) error { return errors.New("exec: not found") })

	if err := l.OpenArticle("https://www.nytimes.com/a.html"); err == nil {
		t.Error("expected runner error to be returned")
	}
}

func TestNewLauncherFallsBackToDetectorOpener(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Media.DefaultOpener = ""
	cfg.Media.ImageViewers = []string{"definitely-not-installed-viewer"}

	l := NewLauncher(cfg)
	if l.defaultOpener == "" {
		t.Error("expected a default opener from the media types table")
	}
	if l.imageViewer != l.defaultOpener {
		t.Errorf("image viewer should fall back to %q, got %q", l.defaultOpener, l.imageViewer)
	}
}

func TestFindCommand(t *testing.T) {
	if got := findCommand(); got != "" {
		t.Errorf("findCommand() with no candidates = %q", got)
	}
	if got := findCommand("definitely-not-installed-viewer"); got != "" {
		t.Errorf("findCommand found a missing command: %q", got)
	}
}
