package models

import (
	"github.com/dmitrijs2005/slidedeck/internal/common"
)

var textAlignments = map[string]struct{}{
	"left": {}, "center": {}, "right": {}, "justify": {},
}

type TextPayload struct {
	Content    string `json:"content"`
	FontFamily string `json:"font_family"`
	FontSize   int    `json:"font_size"`
	FontColor  string `json:"font_color"`
	Bold       bool   `json:"bold"`
	Italic     bool   `json:"italic"`
	Underline  bool   `json:"underline"`
	TextAlign  string `json:"text_align"`
}

func (*TextPayload) Kind() ElementKind { return KindText }

func (p *TextPayload) Validate() error {
	if p.FontSize <= 0 {
		return common.Validationf("font_size must be positive")
	}
	if _, ok := textAlignments[p.TextAlign]; !ok {
		return common.Validationf("unsupported text_align %q", p.TextAlign)
	}
	return nil
}

type TextPatch struct {
	Content    *string `json:"content"`
	FontFamily *string `json:"font_family"`
	FontSize   *int    `json:"font_size"`
	FontColor  *string `json:"font_color"`
	Bold       *bool   `json:"bold"`
	Italic     *bool   `json:"italic"`
	Underline  *bool   `json:"underline"`
	TextAlign  *string `json:"text_align"`
}

func (*TextPatch) Kind() ElementKind { return KindText }

func (p *TextPatch) Empty() bool {
	return p.Content == nil && p.FontFamily == nil && p.FontSize == nil && p.FontColor == nil &&
		p.Bold == nil && p.Italic == nil && p.Underline == nil && p.TextAlign == nil
}

func (p *TextPatch) Merge(current Payload) (Payload, error) {
	t, ok := current.(*TextPayload)
	if !ok {
		return nil, common.ErrorKindMismatch
	}
	merged := *t
	p.Apply(&merged)
	return &merged, nil
}

// Apply overlays the patch onto dst.
func (p *TextPatch) Apply(dst *TextPayload) {
	set(&dst.Content, p.Content)
	set(&dst.FontFamily, p.FontFamily)
	set(&dst.FontSize, p.FontSize)
	set(&dst.FontColor, p.FontColor)
	set(&dst.Bold, p.Bold)
	set(&dst.Italic, p.Italic)
	set(&dst.Underline, p.Underline)
	set(&dst.TextAlign, p.TextAlign)
}

type ImagePayload struct {
	ImageURL string  `json:"image_url"`
	AltText  *string `json:"alt_text"`
}

func (*ImagePayload) Kind() ElementKind { return KindImage }

func (p *ImagePayload) Validate() error {
	if p.ImageURL == "" {
		return common.Validationf("image_url must not be empty")
	}
	return nil
}

type ImagePatch struct {
	ImageURL *string          `json:"image_url"`
	AltText  Nullable[string] `json:"alt_text"`
}

func (*ImagePatch) Kind() ElementKind { return KindImage }

func (p *ImagePatch) Empty() bool { return p.ImageURL == nil && !p.AltText.Set }

func (p *ImagePatch) Merge(current Payload) (Payload, error) {
	i, ok := current.(*ImagePayload)
	if !ok {
		return nil, common.ErrorKindMismatch
	}
	merged := *i
	p.Apply(&merged)
	return &merged, nil
}

// Apply overlays the patch onto dst.
func (p *ImagePatch) Apply(dst *ImagePayload) {
	set(&dst.ImageURL, p.ImageURL)
	p.AltText.Apply(&dst.AltText)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
