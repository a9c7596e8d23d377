package models

import (
	"encoding/json"
	"time"
)

// ElementKind tags the payload an element carries.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindImage ElementKind = "image"
)

// Payload is the kind-specific part of an element.
type Payload interface {
	Kind() ElementKind
	Validate() error
}

// PayloadPatch is a sparse change to a payload. Merge returns a copy of
// current with the patch applied and leaves current untouched.
type PayloadPatch interface {
	Kind() ElementKind
	Empty() bool
	Merge(current Payload) (Payload, error)
}

// Element is a positioned item on a slide. Elements paint bottom to top in
// ascending ZIndex order, ties broken by creation order.
//
// Data is nil for kinds this server does not know; such elements are
// rendered with an empty element_data object.
type Element struct {
	ID        string      `json:"element_id"`
	SlideID   string      `json:"slide_id"`
	Kind      ElementKind `json:"element_type"`
	X         float64     `json:"x_position"`
	Y         float64     `json:"y_position"`
	Width     *float64    `json:"width"`
	Height    *float64    `json:"height"`
	ZIndex    int         `json:"z_index"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Data      Payload     `json:"-"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	type plain Element
	var data any = struct{}{}
	if e.Data != nil {
		data = e.Data
	}
	return json.Marshal(struct {
		plain
		Data any `json:"element_data"`
	}{plain: plain(e), Data: data})
}

// NewElement holds the attributes of an element to create.
type NewElement struct {
	SlideID string
	X       float64
	Y       float64
	Width   *float64
	Height  *float64
	ZIndex  int
	Data    Payload
}

// ElementPatch carries the shared fields to change plus an optional payload
// patch. Kind names the element type the caller believes it is updating.
type ElementPatch struct {
	Kind    ElementKind       `json:"-"`
	X       *float64          `json:"x_position"`
	Y       *float64          `json:"y_position"`
	Width   Nullable[float64] `json:"width"`
	Height  Nullable[float64] `json:"height"`
	ZIndex  *int              `json:"z_index"`
	Payload PayloadPatch      `json:"-"`
}

// SharedEmpty reports whether no shared field is set.
func (p ElementPatch) SharedEmpty() bool {
	return p.X == nil && p.Y == nil && !p.Width.Set && !p.Height.Set && p.ZIndex == nil
}

func (p ElementPatch) Empty() bool {
	return p.SharedEmpty() && (p.Payload == nil || p.Payload.Empty())
}
