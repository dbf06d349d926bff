package sitecontent

import (
	"encoding/json"
	"strings"
	"sync/atomic"
)

// BlockType is the variant tag of a content block. Values are the tags used
// in stored documents.
type BlockType string

// Block type constants (typed).
const (
	BlockTitle              BlockType = "title"
	BlockImage              BlockType = "image"
	BlockRichText           BlockType = "content"
	BlockVideo              BlockType = "video"
	BlockSpecification      BlockType = "specification"
	BlockTechSpecifications BlockType = "techSpecifications"
	BlockTable              BlockType = "table"
	BlockCoverImage         BlockType = "coverImage"
	BlockVariationImages    BlockType = "variationImages"
	BlockManualDownload     BlockType = "manualDownload"
)

// AllBlockTypes returns every block type in catalog order.
func AllBlockTypes() []BlockType {
	return []BlockType{
		BlockTitle,
		BlockImage,
		BlockRichText,
		BlockVideo,
		BlockSpecification,
		BlockTechSpecifications,
		BlockTable,
		BlockCoverImage,
		BlockVariationImages,
		BlockManualDownload,
	}
}

// IsValid reports whether t is one of the known block types.
func (t BlockType) IsValid() bool {
	for _, known := range AllBlockTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// SubType refines a block type. Only specification and video blocks carry one.
type SubType string

// Sub type constants (typed).
const (
	SubTypeNone   SubType = ""
	SubTypeText   SubType = "text"
	SubTypeImage  SubType = "image"
	SubTypeUpload SubType = "upload"
	SubTypeURL    SubType = "url"
)

// SubTypes returns the subtypes allowed for t. The first entry is the default.
// Types without subtypes return nil.
func (t BlockType) SubTypes() []SubType {
	switch t {
	case BlockSpecification:
		return []SubType{SubTypeText, SubTypeImage}
	case BlockVideo:
		return []SubType{SubTypeUpload, SubTypeURL}
	default:
		return nil
	}
}

// DefaultSubType returns the subtype a new block of type t starts with.
func (t BlockType) DefaultSubType() SubType {
	if subs := t.SubTypes(); len(subs) > 0 {
		return subs[0]
	}
	return SubTypeNone
}

// AllowsSubType reports whether sub is valid for t. SubTypeNone is valid only
// for types that take no subtype.
func (t BlockType) AllowsSubType(sub SubType) bool {
	subs := t.SubTypes()
	if len(subs) == 0 {
		return sub == SubTypeNone
	}
	for _, s := range subs {
		if s == sub {
			return true
		}
	}
	return false
}

// MediaRef is the opaque identifier the upload service assigns to a file.
type MediaRef string

// UploadsPrefix marks a stored value as a reference into the uploads area.
const UploadsPrefix = "uploads/"

// Name returns the reference without a leading uploads/ prefix.
func (r MediaRef) Name() string {
	return strings.TrimPrefix(string(r), UploadsPrefix)
}

// URL returns the public address of the media under baseURL, following the
// /uploads/{filename} convention.
func (r MediaRef) URL(baseURL string) string {
	if r == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/uploads/" + r.Name()
}

// Item is one block of page content.
//
// Order mirrors the item's position in its List and is re-stamped by every
// mutator. The identity key is process-local: it survives copies and
// reordering but is never serialized.
type Item struct {
	Type    BlockType
	SubType SubType
	Data    Payload
	Order   int

	key    uint64
	ticket uint64
}

var itemKeys atomic.Uint64

func nextKey() uint64 {
	return itemKeys.Add(1)
}

func (it *Item) ensureKey() {
	if it.key == 0 {
		it.key = nextKey()
	}
}

// List is the ordered sequence of blocks owned by one parent entity.
type List []Item

// Clone returns a copy of l that shares no mutable state with it.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, it := range l {
		it.Data = clonePayload(it.Data)
		out[i] = it
	}
	return out
}

// Fields are the scalar fields of a content-bearing entity (service,
// solution, product, blog). Extra keeps scalars this package does not model
// so they survive a load/save cycle untouched.
type Fields struct {
	Title           string     `json:"title" validate:"required"`
	Category        string     `json:"category,omitempty"`
	Brand           string     `json:"brand,omitempty"`
	CoverImage      MediaRef   `json:"coverImage,omitempty"`
	VariationImages []MediaRef `json:"variationImages,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Question is one entry of an FAQ category.
type Question struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Order    int    `json:"order"`
}

// Questions is the ordered question list of an FAQ category.
type Questions []Question

// FAQDocument is the stored shape of an FAQ category.
type FAQDocument struct {
	CategoryName string    `json:"categoryName" validate:"required"`
	Questions    Questions `json:"questions" validate:"dive"`
}

// Summary is what list views show for a content-bearing entity.
type Summary struct {
	Title     string   `json:"title"`
	Thumbnail MediaRef `json:"thumbnail,omitempty"`
	Excerpt   string   `json:"excerpt"`
}
