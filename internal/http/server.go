package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"expenseminimizer/internal/advisor"
	"expenseminimizer/internal/amqp"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/middleware/ratelimit"
	"expenseminimizer/internal/middleware/security"
	"expenseminimizer/internal/middleware/trace"
	"expenseminimizer/internal/prompt"
)

// LivenessText is the body of GET /api/chat.
const LivenessText = "ExpenseMinimizerGPT backend is running."

const defaultMaxBodyBytes = 1 << 20

// Completer sends one prompt upstream. *advisor.Client implements it.
type Completer interface {
	Complete(ctx context.Context, promptText string) (*advisor.Reply, error)
}

// EventPublisher receives one event per chat request. *amqp.Client
// implements it.
type EventPublisher interface {
	PublishAdvisoryEvent(ctx context.Context, ev *amqp.AdvisoryEvent) error
}

type Options struct {
	Addr               string
	Completer          Completer
	Builder            prompt.Builder
	Publisher          EventPublisher
	Logger             *log.Logger
	AllowedOrigins     []string
	RateLimitPerMinute int
	TrustedProxies     []string
	MaxBodyBytes       int64
	// Ready reports whether dependencies are usable; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	completer Completer
	builder   prompt.Builder
	publisher EventPublisher
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	ready     func(ctx context.Context) error
	maxBody   int64

	stopLimiter  context.CancelFunc
	events       sync.WaitGroup
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		completer: opts.Completer,
		builder:   opts.Builder,
		publisher: opts.Publisher,
		logger:    logger.WithComponent(log.ComponentProxy),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		ready:     opts.Ready,
		maxBody:   maxBody,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopLimiter = cancel
	go s.limiter.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chat", handleChatStatus)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("OPTIONS /api/chat", handlePreflight)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	clientIP := security.NewClientIP()
	for _, cidr := range opts.TrustedProxies {
		if err := clientIP.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}
	var handler http.Handler = mux
	handler = s.limiter.Middleware(clientIP.Extract, http.MethodPost)(handler)
	handler = security.NewCORS(origins).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(logger, clientIP.Extract).Middleware(handler)
	handler = log.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests, waits for in-flight ones and for
// pending event publications.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopLimiter()
		err = s.Server.Shutdown(ctx)

		done := make(chan struct{})
		go func() {
			s.events.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
	})
	return err
}

func handleChatStatus(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, LivenessText)
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeText(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeText(w, http.StatusOK, "ready")
}
