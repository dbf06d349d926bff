package sitecontent

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// NoContent is the excerpt of a list with no rich text.
const NoContent = "No content"

// Ellipsis marks a truncated excerpt or title.
const Ellipsis = "…"

// List view limits.
const (
	SummaryTitleChars   = 30
	SummaryExcerptChars = 80
)

// FirstImageRef returns the first reference held by an image or cover image
// block. ok is false when there is none.
func FirstImageRef(l List) (ref MediaRef, ok bool) {
	for _, it := range l {
		switch d := it.Data.(type) {
		case MediaRefs:
			if it.Type != BlockImage {
				continue
			}
			for _, r := range d {
				if r != "" {
					return r, true
				}
			}
		case MediaRef:
			if it.Type == BlockCoverImage && d != "" {
				return d, true
			}
		}
	}
	return "", false
}

// TextExcerpt joins the text of every rich text block with markup stripped
// and truncates it to maxChars runes. It returns NoContent when there is no
// text at all.
func TextExcerpt(l List, maxChars int) string {
	var parts []string
	for _, it := range l {
		if it.Type != BlockRichText {
			continue
		}
		t, ok := it.Data.(Text)
		if !ok {
			continue
		}
		if s := strings.TrimSpace(StripTags(string(t))); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return NoContent
	}
	return Truncate(strings.Join(parts, " "), maxChars)
}

// StripTags returns the text content of an HTML fragment with entities
// decoded.
func StripTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the text so far is all there is.
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Truncate shortens s to maxChars runes, adding Ellipsis when it cut anything.
func Truncate(s string, maxChars int) string {
	if maxChars < 0 {
		maxChars = 0
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	r := []rune(s)
	return string(r[:maxChars]) + Ellipsis
}

// Summarize builds the list view row of a content-bearing entity. The
// thumbnail prefers a cover image block, then the cover image field, then
// the first image block.
func Summarize(f Fields, l List) Summary {
	s := Summary{
		Title:   Truncate(f.Title, SummaryTitleChars),
		Excerpt: TextExcerpt(l, SummaryExcerptChars),
	}
	for _, it := range l {
		if ref, ok := it.Data.(MediaRef); ok && it.Type == BlockCoverImage && ref != "" {
			s.Thumbnail = ref
			return s
		}
	}
	if f.CoverImage != "" {
		s.Thumbnail = f.CoverImage
		return s
	}
	if ref, ok := FirstImageRef(l); ok {
		s.Thumbnail = ref
	}
	return s
}
