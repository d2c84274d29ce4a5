package topstories

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Encode serializes a story for handing it to another view or process.
func Encode(story *Story) ([]byte, error) {
	if story == nil {
		return nil, errors.New("encoding story: nil story")
	}
	return json.Marshal(story)
}

// Decode is the inverse of Encode. Malformed input yields a *ParseError.
func Decode(data []byte) (*Story, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &ParseError{What: "story", Err: io.ErrUnexpectedEOF}
	}

	var story Story
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&story); err != nil {
		return nil, &ParseError{What: "story", Err: err}
	}
	if dec.More() {
		return nil, &ParseError{What: "story", Err: errors.New("trailing data after story")}
	}
	return &story, nil
}
