// Package web serves the HTTP surface of planararm: joint submission, pose queries and rendered
// frames.
package web

import (
	"context"
	"embed"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/render"
)

//go:embed static
var staticFS embed.FS

// ErrNoArm is returned by handlers that need an arm before one is set.
var ErrNoArm = errors.New("no arm configured")

// Service serves the HTTP API for one arm. The arm and renderer may be swapped while serving.
type Service struct {
	logger logging.Logger

	mu       sync.RWMutex
	arm      arm.Arm
	segments *render.SegmentSet
	renderer *render.ImageRenderer
}

// New returns a service for the given arm. segments are the ones the frame loop writes to and
// may be nil when no loop runs.
func New(a arm.Arm, segments *render.SegmentSet, renderer *render.ImageRenderer, logger logging.Logger) *Service {
	if renderer == nil {
		renderer = render.NewImageRenderer(0, 0, 0)
	}
	return &Service{logger: logger, arm: a, segments: segments, renderer: renderer}
}

// SetArm replaces the arm served.
func (svc *Service) SetArm(a arm.Arm) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.arm = a
}

// SetSegments replaces the frame loop segments served.
func (svc *Service) SetSegments(segments *render.SegmentSet) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.segments = segments
}

// SetRenderer replaces the renderer used for frames.
func (svc *Service) SetRenderer(renderer *render.ImageRenderer) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.renderer = renderer
}

func (svc *Service) currentArm() (arm.Arm, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if svc.arm == nil {
		return nil, ErrNoArm
	}
	return svc.arm, nil
}

// Handler returns the multiplexer with every route installed.
func (svc *Service) Handler() http.Handler {
	mux := goji.NewMux()

	api := goji.SubMux()
	api.HandleFunc(pat.Post("/submit-numbers"), svc.handleSubmitNumbers)
	api.HandleFunc(pat.Post("/submit-number"), svc.handleSubmitNumber)
	api.HandleFunc(pat.Post("/move"), svc.handleMove)
	api.HandleFunc(pat.Post("/stop"), svc.handleStop)
	api.HandleFunc(pat.Get("/joints"), svc.handleJoints)
	api.HandleFunc(pat.Get("/poses"), svc.handlePoses)
	api.HandleFunc(pat.Get("/segments"), svc.handleSegments)
	api.HandleFunc(pat.Get("/geometry"), svc.handleGeometry)
	api.HandleFunc(pat.Get("/frame.png"), svc.handleFrame)
	api.Use(svc.debugMiddleware)

	// Browser front ends are served from other origins.
	corsHandler := cors.AllowAll()
	mux.Handle(pat.New("/api/*"), corsHandler.Handler(api))
	mux.Handle(pat.Get("/static/*"), http.FileServer(http.FS(staticFS)))
	mux.HandleFunc(pat.Get("/"), func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, staticFS, "static/index.html")
	})
	return mux
}

// debugMiddleware turns on debug logging for requests with a true debug query parameter.
func (svc *Service) debugMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if debugRequested(r) {
			r = r.WithContext(logging.EnableDebugMode(r.Context(), ""))
		}
		next.ServeHTTP(w, r)
	})
}

func debugRequested(r *http.Request) bool {
	debug, err := strconv.ParseBool(r.URL.Query().Get("debug"))
	return err == nil && debug
}

// RunWeb serves the service on listener until ctx is done.
func (svc *Service) RunWeb(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Handler:           svc.Handler(),
	}

	utils.PanicCapturingGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			svc.logger.Errorw("error shutting down", "error", err)
		}
	})

	svc.logger.Infow("serving", "url", fmt.Sprintf("http://%s", listener.Addr().String()))
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
