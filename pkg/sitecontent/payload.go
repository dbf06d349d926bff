package sitecontent

import "reflect"

// Payload is the variant-typed data of a block. The set of implementations is
// closed: Text, MediaRef, MediaRefs, Table and Manual.
type Payload interface {
	isPayload()
}

// Text is a plain or HTML string payload.
type Text string

// MediaRefs is an ordered list of media references.
type MediaRefs []MediaRef

// Manual is the payload of a manual download block: an external URL or an
// uploaded file. When both are set the uploaded file takes precedence.
type Manual struct {
	URL  string
	File MediaRef
}

func (Text) isPayload()      {}
func (MediaRef) isPayload()  {}
func (MediaRefs) isPayload() {}
func (Table) isPayload()     {}
func (Manual) isPayload()    {}

// Target returns the address the download resolves to and whether it is an
// uploaded file.
func (m Manual) Target() (string, bool) {
	if m.File != "" {
		return string(m.File), true
	}
	return m.URL, false
}

// DefaultPayload returns the empty payload for a block of type t with subtype
// sub.
func DefaultPayload(t BlockType, sub SubType) (Payload, error) {
	switch t {
	case BlockTitle, BlockRichText, BlockTechSpecifications:
		return Text(""), nil
	case BlockImage, BlockVariationImages:
		return MediaRefs{}, nil
	case BlockCoverImage:
		return MediaRef(""), nil
	case BlockVideo:
		if sub == SubTypeURL {
			return Text(""), nil
		}
		return MediaRef(""), nil
	case BlockSpecification:
		if sub == SubTypeImage {
			return MediaRef(""), nil
		}
		return Text(""), nil
	case BlockTable:
		return Table{}, nil
	case BlockManualDownload:
		return Manual{}, nil
	default:
		return nil, invariant("default payload", "unknown block type %q", t)
	}
}

// payloadFits reports whether p has the shape a block of type t/sub carries.
func payloadFits(t BlockType, sub SubType, p Payload) bool {
	want, err := DefaultPayload(t, sub)
	if err != nil || p == nil {
		return false
	}
	return reflect.TypeOf(want) == reflect.TypeOf(p)
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case MediaRefs:
		if v == nil {
			return v
		}
		return append(MediaRefs(nil), v...)
	case Table:
		return v.clone()
	default:
		return p
	}
}
