package trace

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

var screenshotFields = []string{"screenshot", "image", "screen_capture", "page_screenshot"}

// extractScreenshot looks for screenshot data inside one raw step and
// persists it. The attempts mirror the shape detectors: a structured
// state.screenshot field, then a screenshot entry inside a pair, then the
// loose candidate fields. Failure here never fails the step.
func (n *Normalizer) extractScreenshot(taskID string, num int, raw models.RawStep) (models.ScreenshotAsset, bool) {
	label := fmt.Sprintf("step_%d", num)

	if m, ok := raw.(map[string]any); ok {
		if state, ok := m["state"].(map[string]any); ok {
			if asset, ok := n.writeScreenshotValue(taskID, label, num, state["screenshot"]); ok {
				return asset, true
			}
		}
		for _, field := range screenshotFields {
			if asset, ok := n.writeScreenshotValue(taskID, label, num, m[field]); ok {
				return asset, true
			}
		}
		return models.ScreenshotAsset{}, false
	}

	rv := reflect.ValueOf(raw)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		for i := 0; i < rv.Len(); i++ {
			item, ok := rv.Index(i).Interface().(map[string]any)
			if !ok {
				continue
			}
			if asset, ok := n.writeScreenshotValue(taskID, label, num, item["screenshot"]); ok {
				return asset, true
			}
		}
	}
	return models.ScreenshotAsset{}, false
}

// writeScreenshotValue persists one candidate screenshot value, trying raw
// bytes first, then base64 or data-URI content, then a filesystem path.
func (n *Normalizer) writeScreenshotValue(taskID, label string, num int, v any) (models.ScreenshotAsset, bool) {
	switch data := v.(type) {
	case nil:
		return models.ScreenshotAsset{}, false

	case []byte:
		asset, err := n.shots.WriteScreenshot(taskID, label, num, data)
		if err != nil {
			n.logger.Warn("failed to save screenshot bytes", "step", num, "error", err)
			return models.ScreenshotAsset{}, false
		}
		return asset, true

	case string:
		if data == "" {
			return models.ScreenshotAsset{}, false
		}

		if strings.HasPrefix(data, "data:image") {
			_, encoded, ok := strings.Cut(data, ",")
			if !ok {
				return models.ScreenshotAsset{}, false
			}
			asset, err := n.shots.WriteScreenshotBase64(taskID, label, num, encoded)
			if err != nil {
				n.logger.Warn("failed to decode data-URI screenshot", "step", num, "error", err)
				return models.ScreenshotAsset{}, false
			}
			return asset, true
		}

		if fileExists(data) {
			asset, err := n.shots.CopyScreenshot(taskID, label, num, data)
			if err != nil {
				n.logger.Warn("failed to copy screenshot file", "step", num, "path", data, "error", err)
				return models.ScreenshotAsset{}, false
			}
			return asset, true
		}

		// Plain base64 without a data-URI header.
		asset, err := n.shots.WriteScreenshotBase64(taskID, label, num, data)
		if err != nil {
			return models.ScreenshotAsset{}, false
		}
		return asset, true

	default:
		return models.ScreenshotAsset{}, false
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
