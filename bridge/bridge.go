// Package bridge turns named screenshot requests into a snapshot of the rendering
// surface, persisted to shared storage or returned as encoded bytes.
package bridge

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/mobile-next/nativescreenshot/utils"
)

// DefaultQuality is used when a takeScreenshotImage request carries no quality.
const DefaultQuality = 100

// Surface is the host's handle to the live visual output.
type Surface interface {
	CurrentFrame() (image.Image, error)
}

// Permissions gates writes to shared storage. RequestWritePermission must not block;
// its result is observed on a later call.
type Permissions interface {
	HasWritePermission() bool
	RequestWritePermission()
}

// PathProvider computes where a new screenshot file goes, creating directories as needed.
type PathProvider interface {
	DestinationPath(appName string, at time.Time) string
}

// MediaNotifier is told about every file the bridge writes.
type MediaNotifier interface {
	NotifyNewFile(path string)
}

// Engine holds what the embedding engine hands over when the bridge is attached.
type Engine struct {
	Surface Surface
	AppName string
}

// Activity holds the foreground handles. Media may be nil.
type Activity struct {
	Permissions Permissions
	Media       MediaNotifier
}

// Bridge is not safe for lifecycle changes concurrent with calls: attach and detach
// happen at startup and teardown. Calls share no mutable state with each other.
type Bridge struct {
	paths    PathProvider
	engine   *Engine
	activity *Activity
	now      func() time.Time
}

func New(paths PathProvider) *Bridge {
	return &Bridge{
		paths: paths,
		now:   time.Now,
	}
}

func (b *Bridge) AttachEngine(engine Engine) {
	b.engine = &engine
}

func (b *Bridge) DetachEngine() {
	b.engine = nil
}

func (b *Bridge) AttachActivity(activity Activity) {
	b.activity = &activity
}

func (b *Bridge) DetachActivity() {
	b.activity = nil
}

func (b *Bridge) EngineAttached() bool {
	return b.engine != nil
}

func (b *Bridge) ActivityAttached() bool {
	return b.activity != nil
}

// TakeScreenshot writes the current frame as a PNG to shared storage and returns its path.
func (b *Bridge) TakeScreenshot() (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("Error: %v", r)
			outcome = unavailable("encoder panic: %v", r)
		}
	}()

	if b.activity == nil || b.activity.Permissions == nil {
		utils.Verbose("takeScreenshot: no activity attached, cannot check write permission")
		return permissionDenied()
	}

	if !b.activity.Permissions.HasWritePermission() {
		b.activity.Permissions.RequestWritePermission()
		return permissionDenied()
	}

	frame, outcome := b.snapshot()
	if frame == nil {
		return outcome
	}

	path, err := b.writeFrame(frame)
	if err != nil {
		utils.Error("Error writing screenshot: %v", err)
		return unavailableErr("write screenshot", err)
	}

	if b.activity.Media != nil {
		b.activity.Media.NotifyNewFile(path)
	}

	return pathOutcome(path)
}

// TakeScreenshotImage returns the current frame encoded as PNG. PNG is lossless so
// quality does not change the output; it is accepted for channel compatibility.
func (b *Bridge) TakeScreenshotImage(quality int) Outcome {
	return b.TakeScreenshotImageAs(utils.FormatPNG, quality)
}

// TakeScreenshotImageAs encodes the current frame in the given format. quality is not
// validated and goes straight to the encoder.
func (b *Bridge) TakeScreenshotImageAs(format string, quality int) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("Error: %v", r)
			outcome = unavailable("encoder panic: %v", r)
		}
	}()

	frame, failed := b.snapshot()
	if frame == nil {
		return failed
	}

	data, err := utils.EncodeImage(frame, format, quality)
	if err != nil {
		utils.Error("Error: %v", err)
		return unavailableErr("encode screenshot", err)
	}

	return dataOutcome(data)
}

// snapshot grabs a fresh frame. A nil image means the returned outcome should be used.
func (b *Bridge) snapshot() (image.Image, Outcome) {
	if b.engine == nil || b.engine.Surface == nil {
		return nil, unavailable("no rendering surface attached")
	}

	frame, err := b.engine.Surface.CurrentFrame()
	if err != nil {
		utils.Verbose("rendering surface returned no frame: %v", err)
		return nil, unavailableErr("capture frame", err)
	}
	if frame == nil {
		return nil, unavailable("rendering surface returned no frame")
	}

	return frame, Outcome{}
}

func (b *Bridge) writeFrame(frame image.Image) (path string, err error) {
	if b.paths == nil {
		return "", fmt.Errorf("no path provider configured")
	}

	path = b.paths.DestinationPath(b.engine.AppName, b.now())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("error creating file: %w", err)
	}

	// no partial file survives a failed or panicking encode
	written := false
	defer func() {
		if !written {
			_ = f.Close()
			_ = os.Remove(path)
		}
	}()

	if err := utils.WriteImage(f, frame, utils.FormatPNG, DefaultQuality); err != nil {
		return "", fmt.Errorf("error encoding file: %w", err)
	}

	written = true
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("error writing file: %w", err)
	}

	utils.Verbose("screenshot written to %s", path)
	return path, nil
}
