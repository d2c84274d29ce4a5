package media

import (
	"fmt"
	"os/exec"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/debuglog"
	"github.com/pders01/frontpage/internal/topstories"
	"github.com/pders01/frontpage/internal/validation"
)

type Type int

const (
	TypeUnknown Type = iota
	TypeImage
	TypeVideo
)

func (t Type) String() string {
	switch t {
	case TypeImage:
		return "image"
	case TypeVideo:
		return "video"
	default:
		return "link"
	}
}

// Runner starts an external program without waiting for it.
type Runner func(name string, args ...string) error

// Launcher opens article links and story media in external applications.
type Launcher struct {
	defaultOpener string
	imageViewer   string
	detector      *TypeDetector
	validator     *validation.LinkValidator
	run           Runner
}

func NewLauncher(cfg *config.Config) *Launcher {
	detector, err := NewTypeDetector()
	if err != nil {
		debuglog.Warnf("media types unavailable: %v", err)
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.GetDefaultOpener()
	}

	imageViewer := findCommand(cfg.Media.ImageViewers...)
	if imageViewer == "" {
		imageViewer = defaultOpener
	}

	return &Launcher{
		defaultOpener: defaultOpener,
		imageViewer:   imageViewer,
		detector:      detector,
		validator:     validation.NewLinkValidator(),
		run:           startDetached,
	}
}

// WithRunner replaces how programs are started. Used by tests.
func (l *Launcher) WithRunner(run Runner) *Launcher {
	l.run = run
	return l
}

// OpenArticle opens the original article page in the default browser.
func (l *Launcher) OpenArticle(rawURL string) error {
	u, err := l.validator.Validate(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}
	return l.launch(l.defaultOpener, u)
}

// OpenMedia opens a multimedia item, preferring the configured image viewer
// for images.
func (l *Launcher) OpenMedia(m topstories.Media) error {
	u, err := l.validator.Validate(m.URL)
	if err != nil {
		return fmt.Errorf("refusing to open %q: %w", m.URL, err)
	}

	opener := l.defaultOpener
	if l.detector.DetectMedia(m) == TypeImage {
		opener = l.imageViewer
	}
	return l.launch(opener, u)
}

// Detect exposes the type detector to views that label media.
func (l *Launcher) Detect(m topstories.Media) Type {
	return l.detector.DetectMedia(m)
}

func (l *Launcher) launch(opener, url string) error {
	if opener == "" {
		return fmt.Errorf("no application found to open URL")
	}

	name, args := openerCommand(opener, url)
	debuglog.WithFields(map[string]any{"opener": name}).Debugf("opening %s", url)
	if err := l.run(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", opener, err)
	}
	return nil
}

// openerCommand builds the argv for opener. "start" is a cmd builtin whose
// first quoted argument is a window title.
func openerCommand(opener, url string) (string, []string) {
	if opener == "start" {
		return "cmd", []string{"/c", "start", "", url}
	}
	return opener, []string{url}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
