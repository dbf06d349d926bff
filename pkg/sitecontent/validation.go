package sitecontent

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// IsComplete reports whether it carries everything its variant needs before
// the document can be submitted.
func IsComplete(it Item) bool {
	return incompleteReason(it) == ""
}

// incompleteReason returns why it is not ready for submission, or "" when it is.
func incompleteReason(it Item) string {
	if !it.Type.IsValid() {
		return "unknown block type"
	}
	if !it.Type.AllowsSubType(it.SubType) {
		return "invalid sub type " + string(it.SubType)
	}
	if !payloadFits(it.Type, it.SubType, it.Data) {
		return "payload does not match block type"
	}

	switch it.Type {
	case BlockTitle, BlockRichText, BlockTechSpecifications:
		if strings.TrimSpace(string(it.Data.(Text))) == "" {
			return "text is required"
		}
	case BlockSpecification:
		switch d := it.Data.(type) {
		case Text:
			if strings.TrimSpace(string(d)) == "" {
				return "text is required"
			}
		case MediaRef:
			if d == "" {
				return "image is required"
			}
		}
	case BlockImage, BlockVariationImages:
		if !hasRef(it.Data.(MediaRefs)) {
			return "at least one image is required"
		}
	case BlockCoverImage:
		if it.Data.(MediaRef) == "" {
			return "image is required"
		}
	case BlockVideo:
		switch d := it.Data.(type) {
		case MediaRef:
			if d == "" {
				return "video file is required"
			}
		case Text:
			if !PlausibleURL(string(d)) {
				return "video URL is not a valid http(s) URL"
			}
		}
	case BlockTable:
		t := it.Data.(Table)
		if t.Columns() < 1 {
			return "table needs at least one column"
		}
		if !t.IsRectangular() {
			return "table rows must match the header count"
		}
	case BlockManualDownload:
		m := it.Data.(Manual)
		if m.File == "" && !PlausibleURL(m.URL) {
			return "a PDF URL or uploaded file is required"
		}
	}
	return ""
}

func hasRef(refs MediaRefs) bool {
	for _, r := range refs {
		if r != "" {
			return true
		}
	}
	return false
}

// PlausibleURL reports whether s looks like an absolute http(s) URL. It does
// not check reachability.
func PlausibleURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate checks every block of l and returns a *ValidationError naming each
// incomplete one, or nil.
func Validate(l List) error {
	var problems []BlockProblem
	for i, it := range l {
		if reason := incompleteReason(it); reason != "" {
			problems = append(problems, BlockProblem{Index: i, Type: it.Type, Reason: reason})
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateFields checks the scalar fields of a content-bearing entity.
func ValidateFields(f Fields) error {
	return structProblems(validate.Struct(f))
}

// ValidateFAQ checks an FAQ category and its questions.
func ValidateFAQ(doc FAQDocument) error {
	return structProblems(validate.Struct(doc))
}

// ValidateDocument runs field and block checks together so callers get one
// error listing everything that blocks submission.
func ValidateDocument(f Fields, l List) error {
	var problems []BlockProblem
	var verr *ValidationError
	if err := ValidateFields(f); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
		problems = append(problems, verr.Problems...)
	}
	if err := Validate(l); err != nil {
		if errors.As(err, &verr) {
			problems = append(problems, verr.Problems...)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func structProblems(err error) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	problems := make([]BlockProblem, 0, len(errs))
	for _, fe := range errs {
		problems = append(problems, BlockProblem{
			Index:  -1,
			Field:  fieldPath(fe),
			Reason: validationMessage(fe),
		})
	}
	return &ValidationError{Problems: problems}
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}
