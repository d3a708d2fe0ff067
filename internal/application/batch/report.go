package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/turtacn/dockrmsd/pkg/errors"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

// Format selects the report encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ParseFormat accepts "jsonl" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSONL, FormatCSV:
		return f, nil
	}
	return "", errors.InvalidParam(fmt.Sprintf("unknown report format %q; expected jsonl|csv", s))
}

// Ext is the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Sink writes batch records one at a time.
type Sink interface {
	Write(rec scoringtypes.BatchRecord) error
	// Flush pushes buffered rows to the underlying writer.
	Flush() error
}

// NewSink returns a Sink encoding records as f onto w.
func NewSink(f Format, w io.Writer) (Sink, error) {
	switch f {
	case FormatJSONL:
		return &jsonlSink{enc: json.NewEncoder(w)}, nil
	case FormatCSV:
		return &csvSink{w: csv.NewWriter(w)}, nil
	}
	return nil, errors.InvalidParam(fmt.Sprintf("unknown report format %q", f))
}

type jsonlSink struct {
	enc *json.Encoder
}

func (s *jsonlSink) Write(rec scoringtypes.BatchRecord) error {
	if err := s.enc.Encode(rec); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write jsonl record")
	}
	return nil
}

func (s *jsonlSink) Flush() error { return nil }

type csvSink struct {
	w           *csv.Writer
	wroteHeader bool
}

func (s *csvSink) Write(rec scoringtypes.BatchRecord) error {
	if !s.wroteHeader {
		if err := s.w.Write(scoringtypes.CSVHeader()); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write csv header")
		}
		s.wroteHeader = true
	}
	if err := s.w.Write(rec.CSVRow()); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write csv record")
	}
	return nil
}

func (s *csvSink) Flush() error {
	if !s.wroteHeader {
		if err := s.w.Write(scoringtypes.CSVHeader()); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write csv header")
		}
		s.wroteHeader = true
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to flush csv report")
	}
	return nil
}

// WriteAll writes records to sink and flushes it.
func WriteAll(sink Sink, records []scoringtypes.BatchRecord) error {
	for _, rec := range records {
		if err := sink.Write(rec); err != nil {
			return err
		}
	}
	return sink.Flush()
}

//Personal.AI order the ending
