package provider

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/aTrapDeer/utworld/internal/content"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// Fixtures is the bundled static content served when the API is disabled
// or unreachable.
type Fixtures struct {
	DJ           *content.DJData
	Professional *content.ProfessionalData
	Projects     *content.ProjectsData
}

func decodeFixture(name string, v any) error {
	data, err := fixtureFS.ReadFile("fixtures/" + name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing fixture %s: %w", name, err)
	}
	return nil
}

// LoadFixtures decodes the embedded fixtures.
func LoadFixtures() (Fixtures, error) {
	f := Fixtures{
		DJ:           &content.DJData{},
		Professional: &content.ProfessionalData{},
		Projects:     &content.ProjectsData{},
	}
	if err := decodeFixture("djData.json", f.DJ); err != nil {
		return Fixtures{}, err
	}
	if err := decodeFixture("professionalData.json", f.Professional); err != nil {
		return Fixtures{}, err
	}
	if err := decodeFixture("projectsData.json", f.Projects); err != nil {
		return Fixtures{}, err
	}
	return f, nil
}

// MustLoadFixtures is LoadFixtures for program start-up.
func MustLoadFixtures() Fixtures {
	f, err := LoadFixtures()
	if err != nil {
		panic(err)
	}
	return f
}
