package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"

	"github.com/chazu/glkrun/glk"
	"github.com/chazu/glkrun/storage"
)

var log = commonlog.GetLogger("glkrun.server")

// GlkServer serves interpreter sessions over websocket. Each connection
// gets its own session and its own interpreter goroutine; sessions share
// nothing but the file store.
type GlkServer struct {
	interp   Interpreter
	store    storage.Store
	sessions *SessionStore
	opts     []glk.SessionOption
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// ServerOption configures a GlkServer.
type ServerOption func(*GlkServer)

// WithSessionOptions passes session options through to every spawned
// session.
func WithSessionOptions(opts ...glk.SessionOption) ServerOption {
	return func(s *GlkServer) { s.opts = append(s.opts, opts...) }
}

// WithStore sets the shared file store for spawned sessions.
func WithStore(st storage.Store) ServerOption {
	return func(s *GlkServer) { s.store = st }
}

// New creates a server that runs interp for each incoming connection.
func New(interp Interpreter, opts ...ServerOption) *GlkServer {
	s := &GlkServer{
		interp:   interp,
		sessions: NewSessionStore(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Sessions are per-connection with no shared browser state,
			// so cross-origin pages are allowed to connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("/glk", s.handleGlk)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

func (s *GlkServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *GlkServer) handleGlk(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("upgrade failed: %v", err)
		return
	}
	ch := NewWSChannel(conn)

	sopts := make([]glk.SessionOption, 0, len(s.opts)+2)
	sopts = append(sopts, s.opts...)
	if s.store != nil {
		sopts = append(sopts, glk.WithStore(s.store))
	}

	// The exit func must not kill the process; it unwinds the interpreter
	// goroutine instead.
	exited := make(chan struct{})
	sopts = append(sopts, glk.WithExitFunc(func() {
		close(exited)
		panic(sessionExit{})
	}))

	session := glk.NewSession(ch, sopts...)
	runner := NewRunner(session, s.wrapInterp(exited))
	info := s.sessions.Add(runner)
	log.Infof("session %s started from %s", info.ID, r.RemoteAddr)

	go func() {
		err := runner.Wait()
		if err != nil {
			log.Errorf("session %s: %v", info.ID, err)
		} else {
			log.Infof("session %s finished", info.ID)
		}
		s.sessions.Remove(info.ID)
		ch.Close()
	}()
}

// sessionExit is the panic value used to unwind an interpreter goroutine
// when its session exits.
type sessionExit struct{}

func (s *GlkServer) wrapInterp(exited chan struct{}) Interpreter {
	return func(session *glk.Session) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				if _, ok := rec.(sessionExit); ok {
					return
				}
				panic(rec)
			}
		}()
		err = s.interp(session)
		select {
		case <-exited:
		default:
			// Interpreter returned without calling Exit; close out the
			// display anyway.
			session.Exit()
		}
		return err
	}
}

// Sessions returns the live session store.
func (s *GlkServer) Sessions() *SessionStore {
	return s.sessions
}

// ListenAndServe starts the HTTP server on addr.
func (s *GlkServer) ListenAndServe(addr string) error {
	log.Infof("listening on %s (websocket endpoint /glk)", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Handler exposes the mux for embedding in another server.
func (s *GlkServer) Handler() http.Handler {
	return s.mux
}
