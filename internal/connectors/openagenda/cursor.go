package openagenda

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// cursor is the opaque "after" value of a page. OpenAgenda returns it
// as a JSON array; each element is sent back as a repeated query value.
type cursor []string

// parseCursor decodes an "after" field. A null or missing cursor is nil.
func parseCursor(raw json.RawMessage) cursor {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var items []json.RawMessage
	if raw[0] != '[' {
		items = []json.RawMessage{raw}
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	c := make(cursor, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			c = append(c, s)
			continue
		}
		c = append(c, strings.TrimSpace(string(item)))
	}
	if len(c) == 0 {
		return nil
	}
	return c
}

// apply adds the cursor to query values.
func (c cursor) apply(q url.Values) {
	for _, v := range c {
		q.Add("after", v)
	}
}
