package content

import (
	"encoding/json"

	"github.com/aTrapDeer/utworld/internal/model"
)

// GalleryKind tells which stored shape a gallery came from.
type GalleryKind int

const (
	// GalleryEmpty is anything that is neither of the known shapes.
	GalleryEmpty GalleryKind = iota
	// GalleryLegacy is a bare array of image paths.
	GalleryLegacy
	// GalleryStructured is {title, subtitle, images}.
	GalleryStructured
)

// Gallery is a press-kit gallery in either stored shape. Only the fields
// belonging to Kind are meaningful.
type Gallery struct {
	Kind     GalleryKind
	Title    string
	Subtitle string
	Images   []string
}

// StructuredGallery is the canonical gallery shape written on save.
type StructuredGallery struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Images   []string `json:"images"`
}

// ParseGallery classifies a decoded content.gallery value. Array elements
// may be paths or {url} objects as written by older admin builds.
func ParseGallery(raw any) Gallery {
	switch v := raw.(type) {
	case []any, []string:
		return Gallery{Kind: GalleryLegacy, Images: imagePaths(v)}
	case map[string]any:
		d := model.Doc(v)
		return Gallery{
			Kind:     GalleryStructured,
			Title:    d.String("title"),
			Subtitle: d.String("subtitle"),
			Images:   imagePaths(d.Value("images")),
		}
	case model.Doc:
		return ParseGallery(map[string]any(v))
	case StructuredGallery:
		return Gallery{Kind: GalleryStructured, Title: v.Title, Subtitle: v.Subtitle, Images: append([]string{}, v.Images...)}
	}
	return Gallery{Kind: GalleryEmpty}
}

func imagePaths(v any) []string {
	items := model.AsList(v)
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch t := it.(type) {
		case string:
			out = append(out, t)
		case map[string]any:
			if u, ok := t["url"].(string); ok {
				out = append(out, u)
			}
		}
	}
	return out
}

// Normalize returns the structured form. Images keep their order and are
// never nil.
func (g Gallery) Normalize() StructuredGallery {
	images := g.Images
	if images == nil {
		images = []string{}
	}
	if g.Kind != GalleryStructured {
		return StructuredGallery{Images: images}
	}
	return StructuredGallery{Title: g.Title, Subtitle: g.Subtitle, Images: images}
}

// Map is the structured form as a JSON object, for writing into content.
func (sg StructuredGallery) Map() map[string]any {
	images := make([]any, len(sg.Images))
	for i, s := range sg.Images {
		images[i] = s
	}
	return map[string]any{"title": sg.Title, "subtitle": sg.Subtitle, "images": images}
}

// UnmarshalJSON accepts either stored shape.
func (sg *StructuredGallery) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*sg = ParseGallery(raw).Normalize()
	return nil
}
