package bar

import (
	"bufio"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// json matches encoding/json except that '<', '>' and '&' are written
// verbatim, which keeps Pango markup readable on the wire.
var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Encoder writes the swaybar protocol: a header line, an opening "[" line,
// then one comma-terminated JSON array per Emit. The infinite array is
// never closed.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an Encoder writing to w. Every line is flushed as soon
// as it is complete.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header object and the opening bracket.
func (e *Encoder) WriteHeader(h model.Header) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	e.w.Write(data)
	e.w.WriteString("\n[\n")
	return e.w.Flush()
}

// Emit writes the registry as one array line followed by a comma.
func (e *Encoder) Emit(r *Registry) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return err
	}
	e.w.Write(data)
	e.w.WriteString(",\n")
	return e.w.Flush()
}
