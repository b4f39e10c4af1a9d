package poster

import "github.com/posterbox-dev/posterbox/pkg/store"

// SourceKind discriminates where the current poster comes from.
type SourceKind uint8

const (
	// SourceNone means no poster is set.
	SourceNone SourceKind = iota

	// SourceImage means the poster is a stored image identifier.
	SourceImage

	// SourceLegacyURL means the poster is an externally hosted URL.
	SourceLegacyURL
)

// String returns the string representation of the SourceKind.
func (k SourceKind) String() string {
	switch k {
	case SourceImage:
		return "image"
	case SourceLegacyURL:
		return "url"
	default:
		return "none"
	}
}

// Source is the widget's poster value: a stored image id, a legacy URL, or
// nothing. Modeling the two parent-bound fields as one tagged union makes
// the "at most one is set" invariant hold by construction.
type Source struct {
	Kind  SourceKind
	Value string
}

// NoSource is the empty poster value.
var NoSource = Source{}

// ImageSource builds a Source referencing a stored image.
func ImageSource(id store.ImageID) Source {
	if id == "" {
		return NoSource
	}
	return Source{Kind: SourceImage, Value: string(id)}
}

// LegacyURLSource builds a Source referencing an external URL.
func LegacyURLSource(url string) Source {
	if url == "" {
		return NoSource
	}
	return Source{Kind: SourceLegacyURL, Value: url}
}

// SourceOf builds a Source from the parent form's two nullable fields.
// When both are set the image identifier wins, restoring the invariant.
func SourceOf(id store.ImageID, legacyURL string) Source {
	if id != "" {
		return ImageSource(id)
	}
	return LegacyURLSource(legacyURL)
}

// ImageID returns the stored image identifier, empty unless Kind is
// SourceImage.
func (s Source) ImageID() store.ImageID {
	if s.Kind != SourceImage {
		return ""
	}
	return store.ImageID(s.Value)
}

// LegacyURL returns the external URL, empty unless Kind is SourceLegacyURL.
func (s Source) LegacyURL() string {
	if s.Kind != SourceLegacyURL {
		return ""
	}
	return s.Value
}

// IsZero reports whether no poster is set.
func (s Source) IsZero() bool {
	return s.Kind == SourceNone
}

// Binding is the parent form's output surface. Both callbacks fire together
// on every successful upload and on removal: one side non-empty and the
// other forced empty, or both empty on clear. Nil callbacks are skipped.
type Binding struct {
	OnImageID   func(store.ImageID)
	OnLegacyURL func(string)
}

func (b Binding) notify(s Source) {
	if b.OnImageID != nil {
		b.OnImageID(s.ImageID())
	}
	if b.OnLegacyURL != nil {
		b.OnLegacyURL(s.LegacyURL())
	}
}
