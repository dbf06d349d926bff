package sitecontent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// wireItem is the stored shape of one block.
type wireItem struct {
	Type      BlockType       `json:"type"`
	SubType   SubType         `json:"subType,omitempty"`
	Data      json.RawMessage `json:"data"`
	Order     float64         `json:"order"`
	VideoType SubType         `json:"videoType,omitempty"`
	// URL keeps a manual link that an uploaded file shadows in data.
	URL string `json:"url,omitempty"`
}

type wireTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Keys of a content document owned by Fields or the block list.
var knownFieldKeys = map[string]struct{}{
	"title":           {},
	"category":        {},
	"brand":           {},
	"coverImage":      {},
	"variationImages": {},
	"contents":        {},
}

// ToWire serializes a content-bearing document as {...fields, contents}.
// Every block's order is re-stamped from its position first, so the stored
// order always matches the array.
func ToWire(f Fields, l List) ([]byte, error) {
	doc := make(map[string]any, len(f.Extra)+6)
	for k, v := range f.Extra {
		if _, known := knownFieldKeys[k]; known {
			continue
		}
		doc[k] = v
	}
	doc["title"] = f.Title
	if f.Category != "" {
		doc["category"] = f.Category
	}
	if f.Brand != "" {
		doc["brand"] = f.Brand
	}
	if f.CoverImage != "" {
		doc["coverImage"] = f.CoverImage
	}
	if f.VariationImages != nil {
		doc["variationImages"] = f.VariationImages
	}

	contents := make([]wireItem, len(l))
	for i, it := range l {
		w, err := encodeItem(it)
		if err != nil {
			return nil, fmt.Errorf("contents[%d]: %w", i, err)
		}
		w.Order = float64(i)
		contents[i] = w
	}
	doc["contents"] = contents

	return json.Marshal(doc)
}

// FromWire hydrates the fields and block list of a stored document.
//
// Blocks are ordered by their stored order (ties keep array order) and then
// re-stamped, so a document saved with stale order values loads in the order
// it was meant to have. Legacy payload shapes are normalized.
func FromWire(data []byte) (Fields, List, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Fields{}, nil, fmt.Errorf("decode document: %w", err)
	}

	var f Fields
	if err := decodeOptional(raw["title"], &f.Title); err != nil {
		return Fields{}, nil, fmt.Errorf("decode title: %w", err)
	}
	if err := decodeOptional(raw["category"], &f.Category); err != nil {
		return Fields{}, nil, fmt.Errorf("decode category: %w", err)
	}
	if err := decodeOptional(raw["brand"], &f.Brand); err != nil {
		return Fields{}, nil, fmt.Errorf("decode brand: %w", err)
	}
	if err := decodeOptional(raw["coverImage"], &f.CoverImage); err != nil {
		return Fields{}, nil, fmt.Errorf("decode coverImage: %w", err)
	}
	if err := decodeOptional(raw["variationImages"], &f.VariationImages); err != nil {
		return Fields{}, nil, fmt.Errorf("decode variationImages: %w", err)
	}
	for k, v := range raw {
		if _, known := knownFieldKeys[k]; known {
			continue
		}
		if f.Extra == nil {
			f.Extra = make(map[string]json.RawMessage)
		}
		f.Extra[k] = v
	}

	var items []wireItem
	if err := decodeOptional(raw["contents"], &items); err != nil {
		return Fields{}, nil, fmt.Errorf("decode contents: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})

	var l List
	if items != nil {
		l = make(List, 0, len(items))
	}
	for i, w := range items {
		it, err := decodeItem(w)
		if err != nil {
			return Fields{}, nil, fmt.Errorf("contents[%d]: %w", i, err)
		}
		it.Order = i
		l = append(l, it)
	}
	return f, l, nil
}

// ToFAQWire serializes an FAQ category with question order re-stamped.
func ToFAQWire(categoryName string, q Questions) ([]byte, error) {
	out := restamp(cloneQuestions(q), setQuestionOrder)
	if out == nil {
		out = Questions{}
	}
	return json.Marshal(FAQDocument{CategoryName: categoryName, Questions: out})
}

// FromFAQWire hydrates an FAQ category, ordering questions by their stored
// order.
func FromFAQWire(data []byte) (string, Questions, error) {
	var doc FAQDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("decode faq: %w", err)
	}
	sort.SliceStable(doc.Questions, func(i, j int) bool {
		return doc.Questions[i].Order < doc.Questions[j].Order
	})
	return doc.CategoryName, restamp(doc.Questions, setQuestionOrder), nil
}

func encodeItem(it Item) (wireItem, error) {
	if !it.Type.IsValid() {
		return wireItem{}, invariant("encode", "unknown block type %q", it.Type)
	}
	w := wireItem{Type: it.Type, SubType: it.SubType}
	if it.Type == BlockVideo {
		w.VideoType = it.SubType
	}

	data := it.Data
	if data == nil {
		var err error
		if data, err = DefaultPayload(it.Type, it.SubType); err != nil {
			return wireItem{}, err
		}
	}

	var v any
	switch d := data.(type) {
	case Text:
		v = string(d)
	case MediaRef:
		v = string(d)
	case MediaRefs:
		if d == nil {
			d = MediaRefs{}
		}
		v = d
	case Table:
		wt := wireTable{Headers: d.Headers(), Rows: d.Rows()}
		if wt.Headers == nil {
			wt.Headers = []string{}
		}
		if wt.Rows == nil {
			wt.Rows = [][]string{}
		}
		v = wt
	case Manual:
		target, uploaded := d.Target()
		if uploaded {
			target = UploadsPrefix + MediaRef(target).Name()
			w.URL = d.URL
		}
		v = target
	default:
		return wireItem{}, invariant("encode", "unsupported payload %T", data)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return wireItem{}, err
	}
	w.Data = raw
	return w, nil
}

func decodeItem(w wireItem) (Item, error) {
	if !w.Type.IsValid() {
		return Item{}, invariant("decode", "unknown block type %q", w.Type)
	}
	it := Item{Type: w.Type}

	switch w.Type {
	case BlockTitle, BlockRichText, BlockTechSpecifications:
		s, err := decodeString(w.Data)
		if err != nil {
			return Item{}, err
		}
		it.Data = Text(s)

	case BlockImage, BlockVariationImages:
		refs, err := decodeRefs(w.Data)
		if err != nil {
			return Item{}, err
		}
		it.Data = refs

	case BlockCoverImage:
		s, err := decodeString(w.Data)
		if err != nil {
			return Item{}, err
		}
		it.Data = MediaRef(s)

	case BlockSpecification:
		s, err := decodeString(w.Data)
		if err != nil {
			return Item{}, err
		}
		it.SubType = SubTypeText
		if w.SubType == SubTypeImage {
			it.SubType = SubTypeImage
			it.Data = MediaRef(s)
		} else {
			it.Data = Text(s)
		}

	case BlockVideo:
		s, err := decodeString(w.Data)
		if err != nil {
			return Item{}, err
		}
		it.SubType = videoSubType(w, s)
		if it.SubType == SubTypeURL {
			it.Data = Text(s)
		} else {
			it.Data = MediaRef(s)
		}

	case BlockTable:
		t, err := decodeTable(w.Data)
		if err != nil {
			return Item{}, err
		}
		it.Data = t

	case BlockManualDownload:
		s, err := decodeString(w.Data)
		if err != nil {
			return Item{}, err
		}
		var m Manual
		if strings.HasPrefix(s, UploadsPrefix) {
			m.File = MediaRef(strings.TrimPrefix(s, UploadsPrefix))
			m.URL = w.URL
		} else {
			m.URL = s
		}
		it.Data = m
	}
	return it, nil
}

// videoSubType picks the video source from subType, then the legacy
// videoType field, then the shape of the data itself.
func videoSubType(w wireItem, data string) SubType {
	for _, s := range []SubType{w.SubType, w.VideoType} {
		if BlockVideo.AllowsSubType(s) {
			return s
		}
	}
	if !strings.HasPrefix(data, UploadsPrefix) && PlausibleURL(data) {
		return SubTypeURL
	}
	return SubTypeUpload
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeOptional(raw json.RawMessage, dst any) error {
	if isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := decodeOptional(raw, &s); err != nil {
		return "", fmt.Errorf("data: %w", err)
	}
	return s, nil
}

func decodeRefs(raw json.RawMessage) (MediaRefs, error) {
	if isNull(raw) {
		return MediaRefs{}, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return MediaRefs{}, nil
		}
		return MediaRefs{MediaRef(single)}, nil
	}
	var refs MediaRefs
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if refs == nil {
		refs = MediaRefs{}
	}
	return refs, nil
}

// decodeTable accepts the {headers, rows} object. Anything that is not an
// object (the empty string a fresh block was saved with) is an empty table.
func decodeTable(raw json.RawMessage) (Table, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Table{}, nil
	}
	var wt wireTable
	if err := json.Unmarshal(trimmed, &wt); err != nil {
		return Table{}, fmt.Errorf("data: %w", err)
	}
	if len(wt.Headers) == 0 && len(wt.Rows) == 0 {
		return Table{}, nil
	}
	return NewTable(wt.Headers, wt.Rows)
}
