package elements

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

// codec maps one element kind onto its payload table. Payload rows are
// keyed by element_id, so every table shares the same join and update key.
type codec struct {
	table   string
	columns []string
	// values returns the insert values of p in column order.
	values func(p models.Payload) []any
	// scan returns nullable scan targets in column order and a builder that
	// turns them into a payload once the row has been read.
	scan func() ([]any, func() models.Payload)
	sets func(p models.PayloadPatch) dbx.Sets
}

var codecs = map[models.ElementKind]codec{
	models.KindText: {
		table:   "text_elements",
		columns: []string{"content", "font_family", "font_size", "font_color", "bold", "italic", "underline", "text_align"},
		values: func(p models.Payload) []any {
			t := p.(*models.TextPayload)
			return []any{t.Content, t.FontFamily, t.FontSize, t.FontColor, t.Bold, t.Italic, t.Underline, t.TextAlign}
		},
		scan: func() ([]any, func() models.Payload) {
			var (
				content, family, color, align sql.NullString
				size                          sql.NullInt64
				bold, italic, underline       sql.NullBool
			)
			dest := []any{&content, &family, &size, &color, &bold, &italic, &underline, &align}
			return dest, func() models.Payload {
				return &models.TextPayload{
					Content:    content.String,
					FontFamily: family.String,
					FontSize:   int(size.Int64),
					FontColor:  color.String,
					Bold:       bold.Bool,
					Italic:     italic.Bool,
					Underline:  underline.Bool,
					TextAlign:  align.String,
				}
			}
		},
		sets: func(p models.PayloadPatch) dbx.Sets {
			t := p.(*models.TextPatch)
			var s dbx.Sets
			s = dbx.Add(s, "content", t.Content)
			s = dbx.Add(s, "font_family", t.FontFamily)
			s = dbx.Add(s, "font_size", t.FontSize)
			s = dbx.Add(s, "font_color", t.FontColor)
			s = dbx.Add(s, "bold", t.Bold)
			s = dbx.Add(s, "italic", t.Italic)
			s = dbx.Add(s, "underline", t.Underline)
			s = dbx.Add(s, "text_align", t.TextAlign)
			return s
		},
	},
	models.KindImage: {
		table:   "image_elements",
		columns: []string{"image_url", "alt_text"},
		values: func(p models.Payload) []any {
			i := p.(*models.ImagePayload)
			return []any{i.ImageURL, i.AltText}
		},
		scan: func() ([]any, func() models.Payload) {
			var url, alt sql.NullString
			return []any{&url, &alt}, func() models.Payload {
				p := &models.ImagePayload{ImageURL: url.String}
				if alt.Valid {
					p.AltText = &alt.String
				}
				return p
			}
		},
		sets: func(p models.PayloadPatch) dbx.Sets {
			i := p.(*models.ImagePatch)
			var s dbx.Sets
			s = dbx.Add(s, "image_url", i.ImageURL)
			s = dbx.AddNull(s, "alt_text", i.AltText.Set, i.AltText.Value)
			return s
		},
	},
}

func codecFor(kind models.ElementKind) (codec, error) {
	c, ok := codecs[kind]
	if !ok {
		return codec{}, fmt.Errorf("no storage for element kind %q", kind)
	}
	return c, nil
}
