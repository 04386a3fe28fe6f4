package log

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Serialized event records are length-prefixed so payloads can contain
// anything, while staying mostly human-readable:
//
//	--- <payload length> <timestamp unix ms> <name>\n
//	<payload>\n

var hdrPrefix = []byte("--- ")

// MarshalLine serializes one record. If t is zero it's not marshalled;
// a record with no timestamp must not have an all-digit name or the
// reader will take the name for a timestamp.
func MarshalLine(name string, t time.Time, d []byte) []byte {
	var wb bytes.Buffer
	wb.Write(hdrPrefix)
	wb.WriteString(strconv.Itoa(len(d)))
	if !t.IsZero() {
		wb.WriteString(" ")
		wb.WriteString(strconv.FormatInt(t.UnixMilli(), 10))
	}
	if name != "" {
		wb.WriteString(" ")
		wb.WriteString(name)
	}
	wb.WriteByte('\n')
	if len(d) > 0 {
		wb.Write(d)
		if d[len(d)-1] != '\n' {
			// for readability, records end with a newline
			wb.WriteByte('\n')
		}
	}
	return wb.Bytes()
}

// Record is one deserialized event record
type Record struct {
	Name      string
	Timestamp time.Time
	Data      []byte
}

// RecordReader reads records written with MarshalLine
type RecordReader struct {
	r   *bufio.Reader
	rec Record
	err error
}

func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{
		r: bufio.NewReader(r),
	}
}

// Next advances to the next record, returning false on EOF or error
func (r *RecordReader) Next() bool {
	if r.err != nil {
		return false
	}
	hdr, err := r.r.ReadString('\n')
	if err == io.EOF && hdr == "" {
		return false
	}
	if err != nil {
		r.err = err
		return false
	}
	hdr = strings.TrimSuffix(hdr, "\n")
	rest, ok := strings.CutPrefix(hdr, string(hdrPrefix))
	if !ok {
		r.err = fmt.Errorf("invalid record header: %q", hdr)
		return false
	}
	parts := strings.SplitN(rest, " ", 3)
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		r.err = fmt.Errorf("invalid record length in header: %q", hdr)
		return false
	}
	r.rec = Record{}
	if len(parts) > 1 {
		// the second field is the timestamp if numeric, otherwise the
		// record had no timestamp and the field starts the name
		ms, err := strconv.ParseInt(parts[1], 10, 64)
		if err == nil {
			r.rec.Timestamp = time.UnixMilli(ms).UTC()
			if len(parts) > 2 {
				r.rec.Name = parts[2]
			}
		} else {
			r.rec.Name = strings.Join(parts[1:], " ")
		}
	}
	if n > 0 {
		d := make([]byte, n)
		if _, err := io.ReadFull(r.r, d); err != nil {
			r.err = err
			return false
		}
		r.rec.Data = d
		// skip the readability newline unless the payload had one
		if d[n-1] != '\n' {
			if b, err := r.r.ReadByte(); err == nil && b != '\n' {
				r.err = fmt.Errorf("missing newline after record %q", r.rec.Name)
				return false
			}
		}
	}
	return true
}

// Record returns the record read by the last successful Next
func (r *RecordReader) Record() Record {
	return r.rec
}

// Err returns the first error encountered, nil on clean EOF
func (r *RecordReader) Err() error {
	return r.err
}
