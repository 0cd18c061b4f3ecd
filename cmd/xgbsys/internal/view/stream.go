package view

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/contriboss/xgboost-sys-go/cmd/xgbsys/version"
)

// Stream provides basic output operations wrapping an io.Writer.
type Stream struct {
	Writer io.Writer
}

// NewStream creates a Stream writing to the provided io.Writer.
func NewStream(w io.Writer) *Stream {
	return &Stream{
		Writer: w,
	}
}

// Println writes arguments to the stream with a newline.
func (s *Stream) Println(args ...any) {
	fmt.Fprintln(s.Writer, args...)
}

// Printf writes formatted output to the stream.
func (s *Stream) Printf(fmtStr string, args ...any) {
	fmt.Fprintf(s.Writer, fmtStr, args...)
}

// PrintVersion writes version information to the stream.
func (s *Stream) PrintVersion() {
	version.Fprint(s.Writer)
}

// Encode writes v as indented JSON or as YAML.
func (s *Stream) Encode(vt ViewType, v any) error {
	switch vt {
	case ViewJSON:
		enc := json.NewEncoder(s.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ViewYAML:
		enc := yaml.NewEncoder(s.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("cannot encode %s view", vt)
	}
}
