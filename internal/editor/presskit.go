package editor

import (
	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/model"
)

// DownloadableAsset is one file offered in the press kit.
type DownloadableAsset struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// PressKit is the editable press-kit block.
type PressKit struct {
	Bio            string                    `json:"bio"`
	ShortBio       string                    `json:"shortBio"`
	TechnicalRider string                    `json:"technicalRider"`
	Genres         []string                  `json:"genres"`
	Gallery        content.StructuredGallery `json:"gallery"`
	Downloads      []DownloadableAsset       `json:"downloadableAssets"`
}

func first(d model.Doc, keys ...string) string {
	for _, k := range keys {
		if s := d.String(k); s != "" {
			return s
		}
	}
	return ""
}

// LoadPressKit reads either key family from the project content. Camel-case
// keys win over their snake-case twins.
func LoadPressKit(p model.Project) PressKit {
	c := p.ContentDoc()
	downloads := c.Docs("downloadableAssets")
	if len(downloads) == 0 {
		downloads = c.Docs("downloads")
	}
	assets := make([]DownloadableAsset, 0, len(downloads))
	for _, d := range downloads {
		assets = append(assets, DownloadableAsset{Name: d.String("name"), URL: d.String("url"), Type: d.String("type")})
	}
	return PressKit{
		Bio:            first(c, "bio", "bio_long"),
		ShortBio:       first(c, "shortBio", "bio_short"),
		TechnicalRider: first(c, "technicalRider", "technical_rider"),
		Genres:         c.Strings("genres"),
		Gallery:        content.ParseGallery(c.Value("gallery")).Normalize(),
		Downloads:      assets,
	}
}

// Content returns the document to store. Both key families are written so
// older readers keep working; the gallery is always structured.
func (pk PressKit) Content() model.Doc {
	genres := pk.Genres
	if genres == nil {
		genres = []string{}
	}
	downloads := pk.Downloads
	if downloads == nil {
		downloads = []DownloadableAsset{}
	}
	return model.Doc{
		"bio":                pk.Bio,
		"bio_long":           pk.Bio,
		"shortBio":           pk.ShortBio,
		"bio_short":          pk.ShortBio,
		"technicalRider":     pk.TechnicalRider,
		"technical_rider":    pk.TechnicalRider,
		"genres":             genres,
		"gallery":            pk.Gallery.Map(),
		"downloadableAssets": downloads,
		"downloads":          downloads,
	}
}
