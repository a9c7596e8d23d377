package models

import (
	"sort"

	"github.com/dmitrijs2005/slidedeck/internal/common"
)

// KindSpec describes one element kind: which payload fields a create request
// must carry and how to build a payload or patch pre-filled with defaults.
type KindSpec struct {
	Kind     ElementKind
	Required []string
	New      func() Payload
	NewPatch func() PayloadPatch
}

var kinds = map[ElementKind]KindSpec{
	KindText: {
		Kind:     KindText,
		Required: []string{"content"},
		New: func() Payload {
			return &TextPayload{
				FontFamily: "Arial",
				FontSize:   18,
				FontColor:  "#000000",
				TextAlign:  "left",
			}
		},
		NewPatch: func() PayloadPatch { return &TextPatch{} },
	},
	KindImage: {
		Kind:     KindImage,
		Required: []string{"image_url"},
		New:      func() Payload { return &ImagePayload{} },
		NewPatch: func() PayloadPatch { return &ImagePatch{} },
	},
}

// LookupKind returns the spec registered for kind.
func LookupKind(kind ElementKind) (KindSpec, error) {
	spec, ok := kinds[kind]
	if !ok {
		return KindSpec{}, &common.KindError{Msg: "unsupported element type: " + string(kind), Kind: common.ErrorUnsupportedKind}
	}
	return spec, nil
}

// DefaultPayload returns a payload of kind holding the documented defaults.
func DefaultPayload(kind ElementKind) (Payload, error) {
	spec, err := LookupKind(kind)
	if err != nil {
		return nil, err
	}
	return spec.New(), nil
}

// Kinds lists the registered kinds in name order.
func Kinds() []ElementKind {
	out := make([]ElementKind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
