package models

import "time"

// DefaultBackgroundColor is used for slides created without a color.
const DefaultBackgroundColor = "#FFFFFF"

// Slide is one page of a presentation. Position is its 1-based ordinal; the
// positions of a presentation's slides always form 1..N.
type Slide struct {
	ID                 string    `json:"slide_id"`
	PresentationID     string    `json:"presentation_id"`
	Position           int       `json:"slide_number"`
	BackgroundColor    string    `json:"background_color"`
	BackgroundImageURL *string   `json:"background_image_url"`
	Title              *string   `json:"title"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewSlide holds the caller-supplied attributes of a slide to append.
type NewSlide struct {
	BackgroundColor    string
	BackgroundImageURL *string
	Title              *string
}

// SlidePatch carries the fields to change; nil or unset fields stay
// unchanged. A non-nil Position moves the slide.
type SlidePatch struct {
	Position           *int             `json:"slide_number"`
	BackgroundColor    *string          `json:"background_color"`
	BackgroundImageURL Nullable[string] `json:"background_image_url"`
	Title              Nullable[string] `json:"title"`
}

func (p SlidePatch) Empty() bool {
	return p.Position == nil && p.BackgroundColor == nil && !p.BackgroundImageURL.Set && !p.Title.Set
}
