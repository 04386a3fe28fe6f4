package statestore

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"
)

// Doc is one JSON-shaped document: values must be string, number, bool,
// nil, []any or a nested map[string]any. The store never inspects or
// merges them; schema is the caller's concern.
type Doc map[string]any

// DecodeError means stored content was not valid JSON
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed document: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var prettyOpts = &pretty.Options{
	// always expand: corruption should be diff-visible line by line
	// and operators hand-edit these files
	Width:  1,
	Indent: "  ",
}

// Encode serializes doc as indented UTF-8 JSON. A nil doc encodes
// as an empty document.
func Encode(doc Doc) ([]byte, error) {
	if doc == nil {
		doc = Doc{}
	}
	d, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(d, prettyOpts), nil
}

// Decode parses d into a Doc. Returns *DecodeError on malformed input,
// never a partial document.
func Decode(d []byte) (Doc, error) {
	var doc Doc
	if err := json.Unmarshal(d, &doc); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if doc == nil {
		// the literal "null" decodes to a nil map
		doc = Doc{}
	}
	return doc, nil
}
