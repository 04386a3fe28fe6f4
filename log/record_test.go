package log

import (
	"bytes"
	"testing"
	"time"
)

func TestMarshalLineRoundTrip(t *testing.T) {
	t0 := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	buf.Write(MarshalLine("write", t0, []byte("doc: session.json\n")))
	buf.Write(MarshalLine("recovered", t0.Add(time.Second), []byte("doc: session.json\nslot: 2")))
	buf.Write(MarshalLine("empty", t0.Add(2*time.Second), nil))

	r := NewRecordReader(&buf)

	if !r.Next() {
		t.Fatalf("expected first record, err: %v", r.Err())
	}
	rec := r.Record()
	if rec.Name != "write" {
		t.Fatalf("expected name 'write', got %q", rec.Name)
	}
	if !rec.Timestamp.Equal(t0) {
		t.Fatalf("expected timestamp %s, got %s", t0, rec.Timestamp)
	}
	if string(rec.Data) != "doc: session.json\n" {
		t.Fatalf("unexpected data %q", rec.Data)
	}

	if !r.Next() {
		t.Fatalf("expected second record, err: %v", r.Err())
	}
	rec = r.Record()
	if rec.Name != "recovered" {
		t.Fatalf("expected name 'recovered', got %q", rec.Name)
	}
	if string(rec.Data) != "doc: session.json\nslot: 2" {
		t.Fatalf("unexpected data %q", rec.Data)
	}

	if !r.Next() {
		t.Fatalf("expected third record, err: %v", r.Err())
	}
	rec = r.Record()
	if rec.Name != "empty" || len(rec.Data) != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}

	if r.Next() {
		t.Fatal("expected end of records")
	}
	if r.Err() != nil {
		t.Fatalf("expected clean EOF, got %v", r.Err())
	}
}

func TestMarshalLineNoTimestamp(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(MarshalLine("recovered", time.Time{}, []byte("payload")))
	buf.Write(MarshalLine("two words", time.Time{}, []byte("more")))

	r := NewRecordReader(&buf)

	if !r.Next() {
		t.Fatalf("expected first record, err: %v", r.Err())
	}
	rec := r.Record()
	if rec.Name != "recovered" {
		t.Fatalf("expected name 'recovered', got %q", rec.Name)
	}
	if !rec.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %s", rec.Timestamp)
	}
	if string(rec.Data) != "payload" {
		t.Fatalf("unexpected data %q", rec.Data)
	}

	if !r.Next() {
		t.Fatalf("expected second record, err: %v", r.Err())
	}
	rec = r.Record()
	if rec.Name != "two words" {
		t.Fatalf("expected name 'two words', got %q", rec.Name)
	}

	if r.Next() {
		t.Fatal("expected end of records")
	}
	if r.Err() != nil {
		t.Fatalf("expected clean EOF, got %v", r.Err())
	}
}

func TestRecordReaderRejectsGarbage(t *testing.T) {
	r := NewRecordReader(bytes.NewReader([]byte("not a record\n")))
	if r.Next() {
		t.Fatal("expected Next to fail")
	}
	if r.Err() == nil {
		t.Fatal("expected an error")
	}
}
