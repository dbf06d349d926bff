package sitecontent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/site-console/pkg/sitecontent"
)

func richText(parts ...string) sitecontent.List {
	var l sitecontent.List
	for i, p := range parts {
		l = append(l, sitecontent.Item{Type: sitecontent.BlockRichText, Data: sitecontent.Text(p), Order: i})
	}
	return l
}

func TestTextExcerpt(t *testing.T) {
	l := richText("<p>Hello</p>", "<b>world</b>")
	assert.Equal(t, "Hello wo…", sitecontent.TextExcerpt(l, 8))
	assert.Equal(t, "Hello world", sitecontent.TextExcerpt(l, 11))

	mixed := append(titles(t, nil, "Not part of the excerpt"), richText("<p>Fish &amp; chips</p>", "<p>  </p>", "naïve café")...)
	assert.Equal(t, "Fish & chips naïve café", sitecontent.TextExcerpt(mixed, 80))
	assert.Equal(t, "Fish & chips naïve c…", sitecontent.TextExcerpt(mixed, 20))

	assert.Equal(t, sitecontent.NoContent, sitecontent.TextExcerpt(nil, 80))
	assert.Equal(t, sitecontent.NoContent, sitecontent.TextExcerpt(richText("<br/>", ""), 80))
}

func TestTextExcerpt_DoesNotMutate(t *testing.T) {
	l := richText("<p>Hello</p>")
	before := l.Clone()
	_ = sitecontent.TextExcerpt(l, 2)
	assert.Equal(t, before, l)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "a < b", sitecontent.StripTags("<p>a &lt; b</p>"))
	assert.Equal(t, "unclosed", sitecontent.StripTags("<div>unclosed"))
	assert.Equal(t, "", sitecontent.StripTags(""))
}

func TestFirstImageRef(t *testing.T) {
	_, ok := sitecontent.FirstImageRef(richText("x"))
	assert.False(t, ok)

	l := sitecontent.List{
		{Type: sitecontent.BlockVariationImages, Data: sitecontent.MediaRefs{"variation.png"}},
		{Type: sitecontent.BlockImage, Data: sitecontent.MediaRefs{"", "second.png"}},
		{Type: sitecontent.BlockCoverImage, Data: sitecontent.MediaRef("cover.png")},
	}
	ref, ok := sitecontent.FirstImageRef(l)
	assert.True(t, ok)
	assert.Equal(t, sitecontent.MediaRef("second.png"), ref)

	ref, ok = sitecontent.FirstImageRef(l[2:])
	assert.True(t, ok)
	assert.Equal(t, sitecontent.MediaRef("cover.png"), ref)
}

func TestSummarize(t *testing.T) {
	images := sitecontent.List{
		{Type: sitecontent.BlockImage, Data: sitecontent.MediaRefs{"first.png"}},
		{Type: sitecontent.BlockCoverImage, Data: sitecontent.MediaRef("cover-block.png")},
	}

	s := sitecontent.Summarize(sitecontent.Fields{Title: "A title that is definitely longer than thirty runes", CoverImage: "field.png"}, images)
	assert.Equal(t, "A title that is definitely lon…", s.Title)
	assert.Equal(t, sitecontent.MediaRef("cover-block.png"), s.Thumbnail)
	assert.Equal(t, sitecontent.NoContent, s.Excerpt)

	s = sitecontent.Summarize(sitecontent.Fields{Title: "Short", CoverImage: "field.png"}, images[:1])
	assert.Equal(t, "Short", s.Title)
	assert.Equal(t, sitecontent.MediaRef("field.png"), s.Thumbnail)

	s = sitecontent.Summarize(sitecontent.Fields{Title: "Short"}, images[:1])
	assert.Equal(t, sitecontent.MediaRef("first.png"), s.Thumbnail)

	s = sitecontent.Summarize(sitecontent.Fields{}, nil)
	assert.Empty(t, s.Thumbnail)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", sitecontent.Truncate("abc", 3))
	assert.Equal(t, "ab…", sitecontent.Truncate("abc", 2))
	assert.Equal(t, "…", sitecontent.Truncate("abc", -1))
	assert.Equal(t, "日本…", sitecontent.Truncate("日本語", 2))
}
