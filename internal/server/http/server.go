// Package http exposes the slidedeck services as a JSON API under /api.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/slidedeck/internal/logging"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

const shutdownTimeout = 10 * time.Second

// UserService is the account API the handlers need.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UserIDFromToken(token string) (string, error)
}

// PresentationService, SlideService and ElementService act for the caller
// named by callerID and report resources the caller does not own as not
// found.
type PresentationService interface {
	Create(ctx context.Context, callerID, title string, description *string) (*models.Presentation, error)
	Get(ctx context.Context, callerID, id string) (*models.PresentationDetail, error)
	ListByUser(ctx context.Context, callerID, userID string) ([]models.PresentationSummary, error)
	Update(ctx context.Context, callerID, id string, patch models.PresentationPatch) (*models.Presentation, error)
	Delete(ctx context.Context, callerID, id string) error
}

type SlideService interface {
	Create(ctx context.Context, callerID, presentationID string, ns models.NewSlide) (*models.Slide, error)
	Update(ctx context.Context, callerID, id string, patch models.SlidePatch) (*models.Slide, error)
	Delete(ctx context.Context, callerID, id string) error
}

type ElementService interface {
	List(ctx context.Context, callerID, slideID string) ([]models.Element, error)
	Create(ctx context.Context, callerID string, ne models.NewElement) (*models.Element, error)
	Update(ctx context.Context, callerID, id string, patch models.ElementPatch) (*models.Element, error)
	Delete(ctx context.Context, callerID, id string) error
}

// AssetUploader stores an uploaded image and returns its public URL.
type AssetUploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, bool)
}

// Services groups the dependencies of the API.
type Services struct {
	Users         UserService
	Presentations PresentationService
	Slides        SlideService
	Elements      ElementService
	Assets        AssetUploader
}

type Server struct {
	address        string
	logger         logging.Logger
	users          UserService
	presentations  PresentationService
	slides         SlideService
	elements       ElementService
	assets         AssetUploader
	maxUploadBytes int64
}

func NewServer(address string, l logging.Logger, s Services, maxUploadBytes int64) *Server {
	return &Server{
		address:        address,
		logger:         l.With("module", "http_server"),
		users:          s.Users,
		presentations:  s.Presentations,
		slides:         s.Slides,
		elements:       s.Elements,
		assets:         s.Assets,
		maxUploadBytes: maxUploadBytes,
	}
}

// Handler builds the router.
//
//	POST   /api/auth/register
//	POST   /api/auth/login
//	GET    /api/users/{userID}
//	POST   /api/presentations
//	GET    /api/presentations/{presentationID}
//	PUT    /api/presentations/{presentationID}
//	DELETE /api/presentations/{presentationID}
//	GET    /api/user/{userID}/presentations
//	POST   /api/presentations/{presentationID}/slides
//	PUT    /api/slides/{slideID}
//	DELETE /api/slides/{slideID}
//	GET    /api/slides/{slideID}/elements
//	POST   /api/slides/{slideID}/elements/{kind}
//	PUT    /api/elements/{elementID}
//	DELETE /api/elements/{elementID}
//	POST   /api/upload/image
//
// Everything except register and login requires a bearer token.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)

			r.Get("/users/{userID}", s.getUser)
			r.Get("/user/{userID}/presentations", s.listPresentations)

			r.Post("/presentations", s.createPresentation)
			r.Route("/presentations/{presentationID}", func(r chi.Router) {
				r.Get("/", s.getPresentation)
				r.Put("/", s.updatePresentation)
				r.Delete("/", s.deletePresentation)
				r.Post("/slides", s.createSlide)
			})

			r.Route("/slides/{slideID}", func(r chi.Router) {
				r.Put("/", s.updateSlide)
				r.Delete("/", s.deleteSlide)
				r.Get("/elements", s.listElements)
				r.Post("/elements/{kind}", s.createElement)
			})

			r.Put("/elements/{elementID}", s.updateElement)
			r.Delete("/elements/{elementID}", s.deleteElement)

			r.Post("/upload/image", s.uploadImage)
		})
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
