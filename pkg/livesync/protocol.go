package livesync

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/btlive/pkg/colors"
	"github.com/matzehuels/btlive/pkg/errors"
)

// TimestampKey is the reserved payload key carrying the server time.
const TimestampKey = "timestamp"

// MaxFrameSize bounds the bytes held for one pending frame.
const MaxFrameSize = 1 << 20

// Update is one decoded payload.
type Update struct {
	// Timestamp is the payload's timestamp field, if HasTimestamp.
	Timestamp    float64
	HasTimestamp bool
	// Colors maps node ids to values starting with '#'.
	Colors map[string]string
	// Ignored counts keys whose value was not a color string.
	Ignored int
}

// Decoder extracts payloads from a growing stream body.
//
// A stream is a sequence of JSON objects, possibly concatenated or split
// across reads. After each chunk the object starting at the last '{' of the
// buffered bytes is decoded:
//
//	buffer  := any* "{" object-text
//	payload := JSON object; "timestamp" -> number, other key -> node id
//	color   := string starting with "#"; other values are ignored
//
// A decoded object is consumed. When decoding fails the buffer keeps only
// the bytes from the last '{' on, so a split object can still complete. A
// pending frame that grows past [MaxFrameSize] is dropped.
type Decoder struct {
	buf []byte
}

// Feed appends chunk and decodes the trailing object. It reports false with
// a nil error when there is nothing to decode yet, and a
// [errors.ErrCodeMalformedPayload] error when the trailing object does not
// parse.
func (d *Decoder) Feed(chunk []byte) (Update, bool, error) {
	d.buf = append(d.buf, chunk...)
	idx := bytes.LastIndexByte(d.buf, '{')
	if idx < 0 {
		d.buf = d.buf[:0]
		return Update{}, false, nil
	}
	if idx > 0 {
		d.buf = append(d.buf[:0], d.buf[idx:]...)
	}
	if len(d.buf) > MaxFrameSize {
		n := len(d.buf)
		d.buf = d.buf[:0]
		return Update{}, false, errors.New(errors.ErrCodeMalformedPayload, "frame exceeds %d bytes (%d buffered)", MaxFrameSize, n)
	}

	u, err := Decode(d.buf)
	if err != nil {
		return Update{}, false, err
	}
	d.buf = d.buf[:0]
	return u, true, nil
}

// Buffered returns the number of bytes held for a pending frame.
func (d *Decoder) Buffered() int { return len(d.buf) }

// Reset drops buffered bytes.
func (d *Decoder) Reset() { d.buf = d.buf[:0] }

// Decode parses a single payload object.
func Decode(data []byte) (Update, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Update{}, errors.Wrap(errors.ErrCodeMalformedPayload, err, "decode payload")
	}
	if raw == nil {
		return Update{}, errors.New(errors.ErrCodeMalformedPayload, "payload is not an object")
	}

	u := Update{Colors: make(map[string]string, len(raw))}
	for key, val := range raw {
		if key == TimestampKey {
			var ts float64
			if err := json.Unmarshal(val, &ts); err == nil {
				u.Timestamp, u.HasTimestamp = ts, true
			}
			continue
		}
		var s string
		if err := json.Unmarshal(val, &s); err != nil || !colors.IsColor(s) {
			u.Ignored++
			continue
		}
		u.Colors[key] = s
	}
	return u, nil
}

// String summarises the update for logs.
func (u Update) String() string {
	if u.HasTimestamp {
		return fmt.Sprintf("update(ts=%g, colors=%d)", u.Timestamp, len(u.Colors))
	}
	return fmt.Sprintf("update(colors=%d)", len(u.Colors))
}
