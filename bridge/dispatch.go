package bridge

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mobile-next/nativescreenshot/utils"
)

// ChannelName is the name callers use to address the bridge.
const ChannelName = "native_screenshot_ext"

const (
	MethodTakeScreenshot      = "takeScreenshot"
	MethodTakeScreenshotImage = "takeScreenshotImage"
)

// Params are the arguments of a method call, as decoded from the channel.
type Params map[string]interface{}

// Has reports whether the call carried the named argument.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Int returns an integer argument, or def when it is absent.
func (p Params) Int(key string, def int) (int, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return intInRange(key, v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("'%s' must be an integer, got %v", key, v)
		}
		if v < math.MinInt || v >= math.MaxInt {
			return 0, fmt.Errorf("'%s' is out of range: %v", key, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("'%s' must be an integer: %w", key, err)
		}
		return intInRange(key, n)
	default:
		return 0, fmt.Errorf("'%s' must be an integer, got %T", key, raw)
	}
}

func intInRange(key string, v int64) (int, error) {
	if v < math.MinInt || v > math.MaxInt {
		return 0, fmt.Errorf("'%s' is out of range: %d", key, v)
	}
	return int(v), nil
}

// String returns a string argument, or def when it is absent.
func (p Params) String(key, def string) (string, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("'%s' must be a string, got %T", key, raw)
	}
	return s, nil
}

// Dispatch routes a method call by exact name. Unknown names yield StatusNotImplemented.
func (b *Bridge) Dispatch(method string, params Params) Outcome {
	switch method {
	case MethodTakeScreenshot:
		return b.TakeScreenshot()
	case MethodTakeScreenshotImage:
		quality, err := params.Int("quality", DefaultQuality)
		if err != nil {
			utils.Error("Error: %v", err)
			return unavailableErr("invalid parameters", err)
		}

		format, err := params.String("format", utils.FormatPNG)
		if err != nil {
			utils.Error("Error: %v", err)
			return unavailableErr("invalid parameters", err)
		}

		format, err = utils.ParseImageFormat(format)
		if err != nil {
			utils.Error("Error: %v", err)
			return unavailableErr("invalid parameters", err)
		}

		return b.TakeScreenshotImageAs(format, quality)
	default:
		return notImplemented(method)
	}
}

// Call is the null-collapsing view of Dispatch for existing callers: the value is a
// path, encoded bytes, or nil. The only error is ErrNotImplemented.
func (b *Bridge) Call(method string, params Params) (interface{}, error) {
	outcome := b.Dispatch(method, params)
	if outcome.Status == StatusNotImplemented {
		return nil, outcome.Err
	}

	if !outcome.OK() {
		utils.Verbose("%s returned null: %v", method, outcome.Err)
	}

	return outcome.Value(), nil
}
