package chatbackend

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// contextJSON renders conversation history the way the context file
// reports it: a JSON array of {role, content} objects, built
// incrementally with sjson rather than a single json.Marshal call.
func contextJSON(messages []Message) ([]byte, error) {
	doc := "[]"
	for i, msg := range messages {
		path := strconv.Itoa(i)
		var err error
		doc, err = sjson.Set(doc, path+".role", msg.Role)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.Set(doc, path+".content", msg.Content)
		if err != nil {
			return nil, err
		}
	}
	return []byte(doc), nil
}

// contextWrite interprets a write to the context file as a system
// message: a JSON object with a "system" field uses that field's value
// as the message, while plain text (or any JSON that isn't of that
// shape) falls back to the raw bytes as written, untrimmed.
func contextWrite(p []byte) string {
	if gjson.ValidBytes(p) {
		result := gjson.ParseBytes(p)
		if result.IsObject() {
			if sys := result.Get("system"); sys.Exists() {
				return sys.String()
			}
		}
	}
	return string(p)
}
