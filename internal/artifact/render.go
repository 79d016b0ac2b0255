package artifact

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"

	"github.com/valyala/fastjson"
)

// RenderJSON pretty-prints data when it is valid JSON. Otherwise the raw text
// is returned with false.
func RenderJSON(data string) (string, bool) {
	if err := fastjson.Validate(data); err != nil {
		return data, false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(data), "", "  "); err != nil {
		return data, false
	}
	return buf.String(), true
}

// Render returns the display text of an artifact: JSON content is
// pretty-printed, everything else is shown as text.
func Render(a *Artifact) (string, error) {
	text, err := a.Text()
	if err != nil {
		return "", err
	}
	if a.IsJSON() {
		pretty, _ := RenderJSON(text)
		return pretty, nil
	}
	return text, nil
}

func isJSONType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
