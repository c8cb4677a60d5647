package httpapp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/alphabot-ai/quill/internal/auth"
	"github.com/alphabot-ai/quill/internal/blog"
	"github.com/alphabot-ai/quill/internal/config"
	"github.com/alphabot-ai/quill/internal/store"

	_ "github.com/alphabot-ai/quill/docs" // swagger docs

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// Version is reported by the service banner. Overridden at build time.
var Version = "dev"

const maxBodyBytes = 1 << 20

type Server struct {
	store     store.Store
	directory *blog.Directory
	catalog   *blog.Catalog
	ledger    *blog.Ledger
	gate      *auth.Gate
	cfg       config.Config
	logger    zerolog.Logger
	handler   http.Handler
}

// NewServer wires the blog services over st. The issuer both mints login
// tokens and verifies them at the gate.
func NewServer(st store.Store, issuer *auth.Issuer, cfg config.Config, logger zerolog.Logger) (*Server, error) {
	if issuer == nil {
		return nil, auth.ErrMissingSecret
	}
	passwords := auth.NewPasswords(cfg.BcryptCost)
	s := &Server{
		store:     st,
		directory: blog.NewDirectory(st, st, passwords, issuer),
		catalog:   blog.NewCatalog(st, st),
		ledger:    blog.NewLedger(st, st, st),
		gate:      auth.NewGate(issuer),
		cfg:       cfg,
		logger:    logger,
	}
	s.handler = s.middleware(s.routes())
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/openapi.json", s.serveOpenAPIJSON).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	api.HandleFunc("/user/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/user/verify", s.handleVerifyUser).Methods(http.MethodPost)
	api.Handle("/user/update", s.gate.Require(http.HandlerFunc(s.handleUpdateUser))).Methods(http.MethodPut)
	api.HandleFunc("/user/{username}", s.handleGetUser).Methods(http.MethodGet)
	api.Handle("/user/{userId}", s.gate.Require(http.HandlerFunc(s.handleDeleteUser))).Methods(http.MethodDelete)

	api.HandleFunc("/post", s.handleCreatePost).Methods(http.MethodPost)
	api.Handle("/post/update", s.gate.Require(http.HandlerFunc(s.handleUpdatePost))).Methods(http.MethodPut)
	api.HandleFunc("/post/{userId}", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/post/{userId}/{postId}", s.handleGetPost).Methods(http.MethodGet)
	api.Handle("/post/{postId}", s.gate.Require(http.HandlerFunc(s.handleDeletePost))).Methods(http.MethodDelete)

	api.HandleFunc("/comment", s.handleCreateComment).Methods(http.MethodPost)
	api.Handle("/comment/update", s.gate.Require(http.HandlerFunc(s.handleUpdateComment))).Methods(http.MethodPut)
	api.HandleFunc("/comment/{id}", s.handleGetComments).Methods(http.MethodGet)
	api.Handle("/comment/{commentId}", s.gate.Require(http.HandlerFunc(s.handleDeleteComment))).Methods(http.MethodDelete)

	return r
}

// middleware wraps h, outermost first: request logger, request id, access
// log, panic recovery, CORS.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.corsHandler().Handler(h)
	h = recoverer(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	})(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	return hlog.NewHandler(s.logger)(h)
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")
			writeError(w, http.StatusInternalServerError, internalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

// handleHome godoc
//
//	@Summary		Service info
//	@Description	Name and version of the running service
//	@Tags			Service
//	@Produce		json
//	@Success		200	{object}	model.ServiceInfo
//	@Router			/ [get]
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, serviceInfo())
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Reports whether the backing store is reachable
//	@Tags			Service
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	model.ErrorResponse
//	@Router			/healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("store ping failed")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("read openapi doc")
		writeError(w, http.StatusInternalServerError, internalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

const internalServerError = "Internal Server Error"

var errEmptyBody = errors.New("request body is empty")

// readJSON decodes the request body into dest. Unknown fields are ignored.
func readJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeBadJSON(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
}

// writeServiceError maps a blog error onto a status code. Internal failures
// are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch blog.KindOf(err) {
	case blog.KindInvalid, blog.KindConflict, blog.KindBadCredential:
		status = http.StatusBadRequest
	case blog.KindNotFound:
		status = http.StatusNotFound
	case blog.KindForbidden:
		status = http.StatusForbidden
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, internalServerError)
		return
	}
	writeError(w, status, blog.MessageOf(err))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// callerID returns the user id the gate attached to the request.
func callerID(r *http.Request) string {
	claims, _ := auth.ClaimsFrom(r.Context())
	return claims.UserID
}
