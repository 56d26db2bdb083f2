package docsync

import (
	"errors"
	"fmt"
)

// ErrNoRootElement is returned for a document without a root element.
var ErrNoRootElement = errors.New("document has no root element")

// DivergenceError reports that the raw document and the project model no
// longer describe the same entries in the same order.
type DivergenceError struct {
	// Section names the list being paired, e.g. "profile:ci/dependencies".
	Section string
	// Index is the position of the first mismatching entry, or -1 for a
	// length mismatch.
	Index    int
	Document string
	// Model is empty when the model has no entry for Document.
	Model string
}

func (e *DivergenceError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("document and model diverge in %s: %s entries in document, %s in model",
			e.Section, e.Document, e.Model)
	}
	if e.Model == "" {
		return fmt.Sprintf("document and model diverge in %s at entry %d: document has %q, model has no such entry",
			e.Section, e.Index, e.Document)
	}
	return fmt.Sprintf("document and model diverge in %s at entry %d: document has %q, model has %q",
		e.Section, e.Index, e.Document, e.Model)
}
