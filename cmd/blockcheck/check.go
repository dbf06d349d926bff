package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// Kinds of document blockcheck understands.
const (
	KindContent = "content"
	KindFAQ     = "faq"
)

// Report is the outcome of checking one input.
type Report struct {
	Source   string                     `json:"source"`
	Kind     string                     `json:"kind"`
	OK       bool                       `json:"ok"`
	Error    string                     `json:"error,omitempty"`
	Problems []sitecontent.BlockProblem `json:"problems,omitempty"`
	Summary  *sitecontent.Summary       `json:"summary,omitempty"`
	Blocks   int                        `json:"blocks"`
}

// Check hydrates data and validates it. A document carrying categoryName is
// an FAQ category unless it also has contents.
func Check(source string, data []byte, faq bool) Report {
	r := Report{Source: source, Kind: KindContent}
	if faq || looksLikeFAQ(data) {
		r.Kind = KindFAQ
		return checkFAQ(r, data)
	}
	return checkContent(r, data)
}

func looksLikeFAQ(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, hasCategory := probe["categoryName"]
	_, hasContents := probe["contents"]
	return hasCategory && !hasContents
}

func checkContent(r Report, data []byte) Report {
	fields, list, err := sitecontent.FromWire(data)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Blocks = len(list)
	summary := sitecontent.Summarize(fields, list)
	r.Summary = &summary
	return finish(r, sitecontent.ValidateDocument(fields, list))
}

func checkFAQ(r Report, data []byte) Report {
	name, questions, err := sitecontent.FromFAQWire(data)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Blocks = len(questions)
	r.Summary = &sitecontent.Summary{Title: sitecontent.Truncate(name, sitecontent.SummaryTitleChars)}
	return finish(r, sitecontent.ValidateFAQ(sitecontent.FAQDocument{CategoryName: name, Questions: questions}))
}

func finish(r Report, err error) Report {
	if err == nil {
		r.OK = true
		return r
	}
	var verr *sitecontent.ValidationError
	if errors.As(err, &verr) {
		r.Problems = verr.Problems
		return r
	}
	r.Error = err.Error()
	return r
}

func countFailed(reports []Report) int {
	n := 0
	for _, r := range reports {
		if !r.OK {
			n++
		}
	}
	return n
}

func writeReports(w io.Writer, reports []Report, asJSON, quiet bool) error {
	if quiet {
		failing := reports[:0:0]
		for _, r := range reports {
			if !r.OK {
				failing = append(failing, r)
			}
		}
		reports = failing
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		status := "ok"
		if !r.OK {
			status = "FAIL"
		}
		title := ""
		if r.Summary != nil {
			title = r.Summary.Title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d blocks\t%s\n", status, r.Source, r.Kind, r.Blocks, title)
		if r.Error != "" {
			fmt.Fprintf(tw, "\t\terror: %s\n", r.Error)
		}
		for _, p := range r.Problems {
			fmt.Fprintf(tw, "\t\t%s\n", describe(p))
		}
	}
	return tw.Flush()
}

func describe(p sitecontent.BlockProblem) string {
	switch {
	case p.Field != "":
		return fmt.Sprintf("%s: %s", p.Field, p.Reason)
	case p.Index < 0:
		return p.Reason
	default:
		return fmt.Sprintf("block %d (%s): %s", p.Index, p.Type, p.Reason)
	}
}
