package scan

import (
	"context"
	"fmt"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// DocumentProcessor handles one stored document. Returning an error marks
// the document as failed; the scan moves on to the next one.
type DocumentProcessor interface {
	Process(ctx context.Context, kind sitecontent.CollectionKind, doc *sitecontent.Document) error
}

// ProcessorFunc adapts a function to DocumentProcessor.
type ProcessorFunc func(ctx context.Context, kind sitecontent.CollectionKind, doc *sitecontent.Document) error

func (f ProcessorFunc) Process(ctx context.Context, kind sitecontent.CollectionKind, doc *sitecontent.Document) error {
	return f(ctx, kind, doc)
}

// Validator re-runs the save-time checks against stored bodies. Documents
// written before a rule tightened, or by another tool, show up as failures.
type Validator struct{}

func (Validator) Process(ctx context.Context, kind sitecontent.CollectionKind, doc *sitecontent.Document) error {
	switch kind {
	case sitecontent.KindContent:
		f, l, err := sitecontent.FromWire(doc.Body)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return sitecontent.ValidateDocument(f, l)
	case sitecontent.KindFAQ:
		name, q, err := sitecontent.FromFAQWire(doc.Body)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return sitecontent.ValidateFAQ(sitecontent.FAQDocument{CategoryName: name, Questions: q})
	default:
		return nil
	}
}
