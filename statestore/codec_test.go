package statestore

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	docs := []Doc{
		{},
		{"active_project": "halcyon"},
		{"n": float64(42), "f": 3.5, "b": true, "nothing": nil},
		{"list": []any{"a", float64(1), false, nil}},
		{"nested": map[string]any{"deeper": map[string]any{"leaf": "ok"}}},
		{"unicode": "zażółć gęślą jaźń — 試験 🖋"},
		{"threads": []any{map[string]any{"id": float64(1), "open": true}}},
	}
	for _, doc := range docs {
		d, err := Encode(doc)
		if err != nil {
			t.Fatalf("Encode failed with '%s'", err)
		}
		got, err := Decode(d)
		if err != nil {
			t.Fatalf("Decode failed with '%s'", err)
		}
		if !reflect.DeepEqual(got, doc) {
			t.Errorf("round trip mismatch: expected %#v, got %#v", doc, got)
		}
	}
}

func TestEncodeIsIndented(t *testing.T) {
	d, err := Encode(Doc{"active_project": "halcyon", "mode": "book"})
	if err != nil {
		t.Fatalf("Encode failed with '%s'", err)
	}
	s := string(d)
	if !strings.Contains(s, "\n") {
		t.Errorf("expected multi-line output, got %q", s)
	}
	if !strings.Contains(s, "  \"") {
		t.Errorf("expected indented keys, got %q", s)
	}
}

func TestEncodeNil(t *testing.T) {
	d, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed with '%s'", err)
	}
	doc, err := Decode(d)
	if err != nil {
		t.Fatalf("Decode failed with '%s'", err)
	}
	if len(doc) != 0 {
		t.Errorf("expected empty doc, got %#v", doc)
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := []string{
		"",
		"{truncated",
		`{"active_project": "halcyon"`,
		"not json at all",
		"[1, 2, 3]", // valid JSON but not a document
	}
	for _, in := range inputs {
		_, err := Decode([]byte(in))
		if err == nil {
			t.Errorf("Decode(%q): expected an error", in)
			continue
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("Decode(%q): expected *DecodeError, got %T", in, err)
		}
	}
}

func TestDecodeNullLiteral(t *testing.T) {
	doc, err := Decode([]byte("null"))
	if err != nil {
		t.Fatalf("Decode failed with '%s'", err)
	}
	if doc == nil || len(doc) != 0 {
		t.Errorf("expected non-nil empty doc, got %#v", doc)
	}
}
