package models

import "encoding/json"

// MaxEnvelopeBytes is the serialized size limit declared to the state
// service and enforced locally before every save.
const MaxEnvelopeBytes = 10 * 1024

// Envelope is the record written to and read from the state service.
// DemoData is a pointer so an envelope missing the dataset key can be
// told apart from one holding the zero dataset.
type Envelope struct {
	DemoData     *DemoData `json:"demoData,omitempty"`
	SaveCount    int       `json:"saveCount"`
	RestoreCount int       `json:"restoreCount"`
}

// EncodedSize returns the JSON-serialized size of the envelope in bytes,
// the same measure the size limit is checked against.
func (e Envelope) EncodedSize() (int, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
