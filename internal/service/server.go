package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/pktdecode/internal/discovery"
	"github.com/muurk/pktdecode/internal/logging"
	"github.com/muurk/pktdecode/internal/packet"
	"github.com/muurk/pktdecode/internal/version"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long Start waits for connections after ctx ends
const shutdownTimeout = 10 * time.Second

// Config holds the service configuration
type Config struct {
	Host string
	// Port 0 picks a free port
	Port    int
	Options []packet.Option
	// Advertise registers the service over mDNS
	Advertise bool
	// Instance is the mDNS instance name, defaulting to the hostname
	Instance string
	// TLS serves wss:// when set
	TLS *tls.Config
	// RateLimit caps requests per second per client host, 0 disables it
	RateLimit int
	Burst     int
}

// Server is the WebSocket decode service
type Server struct {
	config      *Config
	upgrader    websocket.Upgrader
	httpServer  *http.Server
	listener    net.Listener
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
	limiter     *requestLimiter
	ready       chan struct{}
	readyOnce   sync.Once
}

// New creates a new Server instance. A rate limiter that cannot be built is
// logged and left off.
func New(config *Config) *Server {
	s := &Server{
		config:      config,
		activeConns: make(map[string]*websocket.Conn),
		ready:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients are CLIs and scripts, not browsers
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	limiter, err := newRequestLimiter(config.RateLimit, config.Burst)
	if err != nil {
		logging.Warn("Rate limiting disabled", zap.Error(err))
	}
	s.limiter = limiter

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: writeWait,
	}
	return s
}

// Handler returns the HTTP routes of the service
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(discovery.DefaultPath, s.handleDecode)
	mux.HandleFunc("/healthz", handleHealth)
	return mux
}

// Start listens, optionally advertises over mDNS, and serves until ctx is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	secure := s.config.TLS != nil
	if secure {
		listener = tls.NewListener(listener, s.config.TLS)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	logging.Info("Decode service listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", discovery.DefaultPath),
		zap.Bool("tls", secure),
	)

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		instance := s.instance()
		adv, err := discovery.Advertise(instance, port, version.Version, secure)
		if err != nil {
			// The service is still reachable by address
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer adv.Shutdown()
			logging.Info("Advertising over mDNS",
				zap.String("instance", instance),
				zap.String("service", discovery.ServiceType),
				zap.Int("port", port),
			)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Ready is closed once Start is listening
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listen address, or nil before Start
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting requests and closes open WebSocket connections
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	// Hijacked connections are not tracked by http.Server
	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()

	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// ActiveConnections returns the number of open WebSocket connections
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

func (s *Server) instance() string {
	if s.config.Instance != "" {
		return s.config.Instance
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "pktdecode"
}

func (s *Server) track(remoteAddr string, conn *websocket.Conn) {
	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()
}

func (s *Server) untrack(remoteAddr string) {
	s.mu.Lock()
	delete(s.activeConns, remoteAddr)
	s.mu.Unlock()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
