package pipeline

import (
	"encoding/json"

	"github.com/ironsheep/tourguide/internal/scene"
)

// Entry is the outcome for one image: a Record on success, Err otherwise.
type Entry struct {
	Image  string
	Record *scene.Record
	Err    error
}

// OK reports whether the image was processed successfully.
func (e Entry) OK() bool { return e.Err == nil && e.Record != nil }

// MarshalJSON emits the record itself, or {image, error} for a failure.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.OK() {
		return json.Marshal(e.Record)
	}
	msg := "no result"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Image string `json:"image"`
		Error string `json:"error"`
	}{e.Image, msg})
}

// BatchResult holds one Entry per input image in enumeration order.
type BatchResult []Entry

// Failed counts the error entries.
func (br BatchResult) Failed() int {
	n := 0
	for _, e := range br {
		if !e.OK() {
			n++
		}
	}
	return n
}
