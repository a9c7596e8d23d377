package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/logging"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
	"github.com/stretchr/testify/require"
)

const (
	validToken  = "good-token"
	otherToken  = "other-token"
	callerID    = "6f1c3c1e-8a53-4b8e-9a5d-2f1f6a0b7c11"
	otherUserID = "1d2e3f40-5a6b-4c7d-8e9f-a0b1c2d3e4f5"
	presID      = "0b7f0d8a-3f1e-4c71-9d2b-5c4b1e2d3a40"
	slideID     = "4a1d2c3b-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	elementID   = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
	unknownUUID = "00000000-0000-4000-8000-000000000000"
)

type fakeUsers struct {
	registered registerRequest
	err        error
	tokenErr   error
}

func (f *fakeUsers) Register(_ context.Context, username, email, password string) (*models.User, error) {
	f.registered = registerRequest{Username: username, Email: email, Password: password}
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: callerID, UserName: username, Email: email, PasswordHash: "hash"}, nil
}

func (f *fakeUsers) Login(_ context.Context, username, _ string) (*models.User, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &models.User{ID: callerID, UserName: username, Email: username + "@example.com"}, "jwt", nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if id != callerID {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: id, UserName: "alice", Email: "alice@example.com"}, nil
}

func (f *fakeUsers) UserIDFromToken(token string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	switch token {
	case validToken:
		return callerID, nil
	case otherToken:
		return otherUserID, nil
	}
	return "", common.ErrInvalidToken
}

type fakePresentations struct {
	createdFor string
	patch      models.PresentationPatch
	err        error
}

// The presentation, slide and element fakes own presID, slideID and
// elementID on behalf of callerID; other callers get common.ErrorNotFound.
func ownedBy(caller string) error {
	if caller != callerID {
		return common.ErrorNotFound
	}
	return nil
}

func (f *fakePresentations) Create(_ context.Context, caller, title string, description *string) (*models.Presentation, error) {
	f.createdFor = caller
	if f.err != nil {
		return nil, f.err
	}
	return &models.Presentation{ID: presID, UserID: caller, Title: title, Description: description}, nil
}

func (f *fakePresentations) Get(_ context.Context, caller, id string) (*models.PresentationDetail, error) {
	if err := ownedBy(caller); err != nil {
		return nil, err
	}
	if id != presID {
		return nil, common.ErrorNotFound
	}
	return &models.PresentationDetail{
		Presentation: models.Presentation{ID: id, UserID: callerID, Title: "Deck"},
		Slides:       []models.Slide{},
	}, nil
}

func (f *fakePresentations) ListByUser(_ context.Context, caller, userID string) ([]models.PresentationSummary, error) {
	if caller != userID {
		return nil, common.ErrorNotFound
	}
	if f.err != nil {
		return nil, f.err
	}
	return []models.PresentationSummary{{Presentation: models.Presentation{ID: presID, UserID: userID}, SlideCount: 2}}, nil
}

func (f *fakePresentations) Update(_ context.Context, caller, id string, patch models.PresentationPatch) (*models.Presentation, error) {
	if err := ownedBy(caller); err != nil {
		return nil, err
	}
	f.patch = patch
	if patch.Empty() {
		return nil, common.ErrorNoFieldsToUpdate
	}
	p := &models.Presentation{ID: id, UserID: caller, Title: "Deck"}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	patch.Description.Apply(&p.Description)
	return p, nil
}

func (f *fakePresentations) Delete(_ context.Context, caller, id string) error {
	if err := ownedBy(caller); err != nil {
		return err
	}
	if id != presID {
		return common.ErrorNotFound
	}
	return nil
}

type fakeSlides struct {
	created models.NewSlide
	patch   models.SlidePatch
	err     error
}

func (f *fakeSlides) Create(_ context.Context, caller, presentationID string, ns models.NewSlide) (*models.Slide, error) {
	if err := ownedBy(caller); err != nil {
		return nil, err
	}
	f.created = ns
	if f.err != nil {
		return nil, f.err
	}
	return &models.Slide{ID: slideID, PresentationID: presentationID, Position: 1, BackgroundColor: "#FFFFFF"}, nil
}

func (f *fakeSlides) Update(_ context.Context, caller, id string, patch models.SlidePatch) (*models.Slide, error) {
	if err := ownedBy(caller); err != nil {
		return nil, err
	}
	f.patch = patch
	if f.err != nil {
		return nil, f.err
	}
	pos := 1
	if patch.Position != nil {
		pos = *patch.Position
	}
	return &models.Slide{ID: id, PresentationID: presID, Position: pos}, nil
}

func (f *fakeSlides) Delete(_ context.Context, caller, _ string) error {
	if err := ownedBy(caller); err != nil {
		return err
	}
	return f.err
}

type fakeElements struct {
	created models.NewElement
	patch   models.ElementPatch
	err     error
}

func (f *fakeElements) List(_ context.Context, caller, id string) ([]models.Element, error) {
	if err := ownedBy(caller); err != nil {
		return nil, err
	}
	if id != slideID {
		return nil, common.ErrorNotFound
	}
	return []models.Element{
		{ID: elementID, SlideID: id, Kind: models.KindImage, ZIndex: 1, Data: &models.ImagePayload{ImageURL: "https://cdn/a.png"}},
		{ID: unknownUUID, SlideID: id, Kind: "chart", ZIndex: 2},
	}, nil
}

func (f *fakeElements) Create(_ context.Context, caller string, ne models.NewElement) (*models.Element, error) {
	if err := ownedBy(caller); err != nil {
		return nil, err
	}
	f.created = ne
	if f.err != nil {
		return nil, f.err
	}
	return &models.Element{ID: elementID, SlideID: ne.SlideID, Kind: ne.Data.Kind(), X: ne.X, Y: ne.Y, ZIndex: ne.ZIndex, Data: ne.Data}, nil
}

func (f *fakeElements) Update(_ context.Context, caller, id string, patch models.ElementPatch) (*models.Element, error) {
	if err := ownedBy(caller); err != nil {
		return nil, err
	}
	f.patch = patch
	if f.err != nil {
		return nil, f.err
	}
	return &models.Element{ID: id, Kind: patch.Kind}, nil
}

func (f *fakeElements) Delete(_ context.Context, caller, _ string) error {
	if err := ownedBy(caller); err != nil {
		return err
	}
	return f.err
}

type fakeUploader struct {
	data        []byte
	contentType string
	fail        bool
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, _ string, contentType string) (string, bool) {
	f.data, f.contentType = data, contentType
	if f.fail {
		return "", false
	}
	return "https://cdn.example.com/images/x.png", true
}

type testAPI struct {
	handler       http.Handler
	users         *fakeUsers
	presentations *fakePresentations
	slides        *fakeSlides
	elements      *fakeElements
	assets        *fakeUploader
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		users:         &fakeUsers{},
		presentations: &fakePresentations{},
		slides:        &fakeSlides{},
		elements:      &fakeElements{},
		assets:        &fakeUploader{},
	}
	s := NewServer(":0", logging.Nop(), Services{
		Users:         api.users,
		Presentations: api.presentations,
		Slides:        api.slides,
		Elements:      api.elements,
		Assets:        api.assets,
	}, 1<<20)
	api.handler = s.Handler()
	return api
}

// do sends a JSON request with a valid token and decodes the JSON response.
func (a *testAPI) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	return a.doAs(t, validToken, method, path, body)
}

// doAs is do with the given bearer token.
func (a *testAPI) doAs(t *testing.T, token, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return a.serve(t, req)
}

func (a *testAPI) serve(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

// doList is do for endpoints answering with a JSON array.
func (a *testAPI) doList(t *testing.T, path string) (int, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out []map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}
