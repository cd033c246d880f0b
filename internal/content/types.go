// Package content turns the flat project list of a section into the view
// models the public site renders. Transforms are pure and tolerate missing
// or wrongly typed fields: absent singletons become nil, collections become
// empty.
package content

// DJData is the DJ persona view model.
type DJData struct {
	Hero     *DJHero       `json:"hero"`
	Artist   *Artist       `json:"artist"`
	Gigs     []Gig         `json:"gigs"`
	Sets     *SetsView     `json:"sets"`
	PressKit *PressKitView `json:"pressKit"`
	Contact  *DJContact    `json:"contact"`
}

type DJHero struct {
	Name        string  `json:"name"`
	Badge       *string `json:"badge"`
	Headline    *string `json:"headline"`
	Subheadline *string `json:"subheadline"`
	Genres      any     `json:"genres"`
	HeroImage   *string `json:"hero_image"`
	CTAs        []any   `json:"ctas"`
}

type Artist struct {
	Title       *string `json:"title"`
	Bio         *string `json:"bio"`
	ArtistImage *string `json:"artist_image"`
	Highlights  []any   `json:"highlights"`
}

type Gig struct {
	ID          string   `json:"id"`
	Event       string   `json:"event"`
	Collective  *string  `json:"collective"`
	Date        *string  `json:"date"`
	Location    *string  `json:"location"`
	Time        *string  `json:"time"`
	Genre       []string `json:"genre"`
	Tags        []string `json:"tags"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Clips       []any    `json:"clips"`
}

type SetsView struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Platforms   []any   `json:"platforms"`
}

type PressKitView struct {
	Title          string            `json:"title"`
	Description    *string           `json:"description"`
	BioShort       *string           `json:"bio_short"`
	BioLong        *string           `json:"bio_long"`
	TechnicalRider *string           `json:"technical_rider"`
	Downloads      []any             `json:"downloads"`
	Gallery        StructuredGallery `json:"gallery"`
}

type DJContact struct {
	Email              *string        `json:"email"`
	BookingTitle       *string        `json:"booking_title"`
	BookingDescription *string        `json:"booking_description"`
	Social             map[string]any `json:"social"`
}

// ProfessionalData is the tech persona view model.
type ProfessionalData struct {
	Hero           *ProHero       `json:"hero"`
	Highlights     []any          `json:"highlights"`
	About          *About         `json:"about"`
	Education      []Education    `json:"education"`
	Experience     []Experience   `json:"experience"`
	Skills         Skills         `json:"skills"`
	Certifications []any          `json:"certifications"`
	Contact        map[string]any `json:"contact"`
}

type ProHero struct {
	Name     string  `json:"name"`
	Title    *string `json:"title"`
	Headline *string `json:"headline"`
	Subtext  *string `json:"subtext"`
	Headshot *string `json:"headshot"`
	CTAs     []any   `json:"ctas"`
}

type About struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

type Education struct {
	Institution string  `json:"institution"`
	Degree      *string `json:"degree"`
	Location    *string `json:"location"`
	Dates       *string `json:"dates"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
	Modules     []any   `json:"modules"`
	Projects    []any   `json:"projects"`
	Thesis      any     `json:"thesis"`
	Leadership  []any   `json:"leadership"`
}

type Experience struct {
	Company          string  `json:"company"`
	Role             *string `json:"role"`
	Location         *string `json:"location"`
	Dates            *string `json:"dates"`
	Duration         *string `json:"duration"`
	Responsibilities []any   `json:"responsibilities"`
	Achievements     []any   `json:"achievements"`
}

type Skills struct {
	Categories []any `json:"categories"`
}

// ProjectsData is the tech persona's project showcase.
type ProjectsData struct {
	Featured       []FeaturedProject          `json:"featured"`
	GithubProjects map[string][]GithubProject `json:"github_projects"`
}

type FeaturedProject struct {
	Title       string         `json:"title"`
	Category    *string        `json:"category"`
	Timeline    *string        `json:"timeline"`
	Description *string        `json:"description"`
	Problem     *string        `json:"problem"`
	Approach    *string        `json:"approach"`
	Stack       []any          `json:"stack"`
	Outcomes    []any          `json:"outcomes"`
	Links       map[string]any `json:"links"`
	DemoImage   *string        `json:"demo_image"`
}

type GithubProject struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Stack       []any   `json:"stack"`
	Repo        *string `json:"repo"`
	Demo        *string `json:"demo"`
}
