package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/elements"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/presentations"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/slides"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memStore is an in-memory stand-in for the database behind all repositories.
type memStore struct {
	mu            sync.Mutex
	seq           int
	clock         time.Time
	users         map[string]*models.User
	presentations map[string]*models.Presentation
	slides        map[string]*models.Slide
	elements      map[string]*models.Element
	elementSeq    map[string]int

	locked  []string
	updates int
	fail    map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		clock:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         map[string]*models.User{},
		presentations: map[string]*models.Presentation{},
		slides:        map[string]*models.Slide{},
		elements:      map[string]*models.Element{},
		elementSeq:    map[string]int{},
		fail:          map[string]error{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addPresentation(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("p")
	m.presentations[id] = &models.Presentation{ID: id, UserID: userID, Title: id}
	return id
}

// positions returns slide ids of the presentation ordered by position, and
// the positions themselves.
func (m *memStore) positions(presentationID string) ([]string, []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*models.Slide
	for _, s := range m.slides {
		if s.PresentationID == presentationID {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	ids := make([]string, len(list))
	pos := make([]int, len(list))
	for i, s := range list {
		ids[i] = s.ID
		pos[i] = s.Position
	}
	return ids, pos
}

type fakeRepoManager struct {
	store *memStore
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository          { return &memUsers{f.store} }
func (f *fakeRepoManager) Presentations(dbx.DBTX) presentations.Repository {
	return &memPresentations{f.store}
}
func (f *fakeRepoManager) Slides(dbx.DBTX) slides.Repository     { return &memSlides{f.store} }
func (f *fakeRepoManager) Elements(dbx.DBTX) elements.Repository { return &memElements{f.store} }

type memUsers struct{ m *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail["users.Create"]; err != nil {
		return nil, err
	}
	for _, other := range r.m.users {
		if other.UserName == u.UserName {
			return nil, common.ErrorUsernameTaken
		}
		if other.Email == u.Email {
			return nil, common.ErrorEmailTaken
		}
	}
	u.ID = r.m.nextID("u")
	stored := *u
	r.m.users[u.ID] = &stored
	return u, nil
}

func (r *memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail["users.Get"]; err != nil {
		return nil, err
	}
	for _, u := range r.m.users {
		if u.UserName == login {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

type memPresentations struct{ m *memStore }

func (r *memPresentations) Create(_ context.Context, p *models.Presentation) (*models.Presentation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[p.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	p.ID = r.m.nextID("p")
	p.CreatedAt = r.m.tick()
	p.UpdatedAt = p.CreatedAt
	c := *p
	r.m.presentations[p.ID] = &c
	return p, nil
}

func (r *memPresentations) GetDetail(_ context.Context, id string) (*models.PresentationDetail, error) {
	r.m.mu.Lock()
	p, ok := r.m.presentations[id]
	r.m.mu.Unlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	ids, _ := r.m.positions(id)
	d := &models.PresentationDetail{Presentation: *p, Slides: []models.Slide{}}
	r.m.mu.Lock()
	for _, sid := range ids {
		d.Slides = append(d.Slides, *r.m.slides[sid])
	}
	r.m.mu.Unlock()
	return d, nil
}

func (r *memPresentations) OwnerID(_ context.Context, id string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.presentations[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	return p.UserID, nil
}

func (r *memPresentations) ListByUser(_ context.Context, userID string) ([]models.PresentationSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.PresentationSummary{}
	for _, p := range r.m.presentations {
		if p.UserID == userID {
			out = append(out, models.PresentationSummary{Presentation: *p})
		}
	}
	return out, nil
}

func (r *memPresentations) Update(_ context.Context, id string, patch models.PresentationPatch) (*models.Presentation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.presentations[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	patch.Description.Apply(&p.Description)
	p.UpdatedAt = r.m.tick()
	c := *p
	return &c, nil
}

func (r *memPresentations) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.presentations[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.presentations, id)
	for sid, s := range r.m.slides {
		if s.PresentationID == id {
			delete(r.m.slides, sid)
		}
	}
	return nil
}

type memSlides struct{ m *memStore }

func (r *memSlides) LockPresentation(_ context.Context, presentationID string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.presentations[presentationID]
	if !ok {
		return "", common.ErrorNotFound
	}
	r.m.locked = append(r.m.locked, presentationID)
	return p.UserID, nil
}

func (r *memSlides) OwnerID(_ context.Context, id string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.slides[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	p, ok := r.m.presentations[s.PresentationID]
	if !ok {
		return "", common.ErrorNotFound
	}
	return p.UserID, nil
}

func (r *memSlides) Get(_ context.Context, id string) (*models.Slide, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.slides[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	return &c, nil
}

func (r *memSlides) Count(_ context.Context, presentationID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, s := range r.m.slides {
		if s.PresentationID == presentationID {
			n++
		}
	}
	return n, nil
}

func (r *memSlides) Append(_ context.Context, presentationID string, ns models.NewSlide) (*models.Slide, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	max := 0
	for _, s := range r.m.slides {
		if s.PresentationID == presentationID && s.Position > max {
			max = s.Position
		}
	}
	now := r.m.tick()
	s := &models.Slide{
		ID:                 r.m.nextID("s"),
		PresentationID:     presentationID,
		Position:           max + 1,
		BackgroundColor:    ns.BackgroundColor,
		BackgroundImageURL: ns.BackgroundImageURL,
		Title:              ns.Title,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	r.m.slides[s.ID] = s
	c := *s
	return &c, nil
}

func (r *memSlides) ShiftRange(_ context.Context, presentationID string, from, to, delta int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail["slides.Shift"]; err != nil {
		return err
	}
	for _, s := range r.m.slides {
		if s.PresentationID == presentationID && s.Position >= from && s.Position <= to {
			s.Position += delta
		}
	}
	return nil
}

func (r *memSlides) ShiftAfter(_ context.Context, presentationID string, position, delta int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail["slides.Shift"]; err != nil {
		return err
	}
	for _, s := range r.m.slides {
		if s.PresentationID == presentationID && s.Position > position {
			s.Position += delta
		}
	}
	return nil
}

func (r *memSlides) Update(_ context.Context, id string, patch models.SlidePatch) (*models.Slide, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.slides[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	r.m.updates++
	if patch.Position != nil {
		s.Position = *patch.Position
	}
	if patch.BackgroundColor != nil {
		s.BackgroundColor = *patch.BackgroundColor
	}
	patch.BackgroundImageURL.Apply(&s.BackgroundImageURL)
	patch.Title.Apply(&s.Title)
	s.UpdatedAt = r.m.tick()
	c := *s
	return &c, nil
}

func (r *memSlides) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.slides[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.slides, id)
	for eid, e := range r.m.elements {
		if e.SlideID == id {
			delete(r.m.elements, eid)
		}
	}
	return nil
}

type memElements struct{ m *memStore }

func (r *memElements) Create(_ context.Context, ne models.NewElement) (*models.Element, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail["elements.Create"]; err != nil {
		return nil, err
	}
	if _, ok := r.m.slides[ne.SlideID]; !ok {
		return nil, common.ErrorNotFound
	}
	now := r.m.tick()
	e := &models.Element{
		ID: r.m.nextID("e"), SlideID: ne.SlideID, Kind: ne.Data.Kind(),
		X: ne.X, Y: ne.Y, Width: ne.Width, Height: ne.Height, ZIndex: ne.ZIndex,
		CreatedAt: now, UpdatedAt: now, Data: ne.Data,
	}
	r.m.elements[e.ID] = e
	r.m.elementSeq[e.ID] = r.m.seq
	c := *e
	return &c, nil
}

func (r *memElements) Get(_ context.Context, id string, _ bool) (*models.Element, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.elements[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyElement(e), nil
}

func (r *memElements) ListBySlide(_ context.Context, slideID string) ([]models.Element, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Element{}
	for _, e := range r.m.elements {
		if e.SlideID == slideID {
			out = append(out, *copyElement(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return r.m.elementSeq[out[i].ID] < r.m.elementSeq[out[j].ID]
	})
	return out, nil
}

func (r *memElements) Update(_ context.Context, id string, kind models.ElementKind, patch models.ElementPatch) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail["elements.Update"]; err != nil {
		return err
	}
	e, ok := r.m.elements[id]
	if !ok {
		return common.ErrorNotFound
	}
	if patch.X != nil {
		e.X = *patch.X
	}
	if patch.Y != nil {
		e.Y = *patch.Y
	}
	patch.Width.Apply(&e.Width)
	patch.Height.Apply(&e.Height)
	if patch.ZIndex != nil {
		e.ZIndex = *patch.ZIndex
	}
	if patch.Payload != nil && !patch.Payload.Empty() {
		merged, err := patch.Payload.Merge(e.Data)
		if err != nil {
			return err
		}
		e.Data = merged
	}
	e.UpdatedAt = r.m.tick()
	return nil
}

func (r *memElements) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.elements[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.elements, id)
	return nil
}

func copyElement(e *models.Element) *models.Element {
	c := *e
	switch d := e.Data.(type) {
	case *models.TextPayload:
		dc := *d
		c.Data = &dc
	case *models.ImagePayload:
		dc := *d
		c.Data = &dc
	}
	return &c
}
