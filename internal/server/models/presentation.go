package models

import "time"

type Presentation struct {
	ID          string    `json:"presentation_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PresentationDetail is a presentation together with its slides ordered by
// position. Slides is never nil.
type PresentationDetail struct {
	Presentation
	Slides []Slide `json:"slides"`
}

// PresentationSummary is a row of a user's presentation list. LastUpdated is
// the newest slide update time, nil for a presentation without slides.
type PresentationSummary struct {
	Presentation
	SlideCount  int        `json:"slide_count"`
	LastUpdated *time.Time `json:"last_updated"`
}

// PresentationPatch carries the fields to change; nil or unset fields stay
// unchanged.
type PresentationPatch struct {
	Title       *string          `json:"title"`
	Description Nullable[string] `json:"description"`
}

func (p PresentationPatch) Empty() bool {
	return p.Title == nil && !p.Description.Set
}
