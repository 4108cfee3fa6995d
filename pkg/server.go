package hornql

import (
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clog "github.com/hornql/hornql/pkg/log"
)

type Server struct {
	db         *Database
	httpServer *http.Server
}

func NewServer(cfg Config, host string, port int) (*Server, error) {
	database, handler, err := newServerInternal(cfg)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{Addr: fmt.Sprintf("%s:%d", host, port), Handler: handler}

	return &Server{
		db:         database,
		httpServer: httpServer,
	}, nil
}

func newServerInternal(cfg Config) (*Database, http.Handler, error) {
	database, err := NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()

	// Serve metrics.
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(database.metrics.registry, promhttp.HandlerOpts{}),
	)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Serve WebSocket endpoint for statement traffic.
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(_ *http.Request) bool { return true },
	}
	mux.HandleFunc("/ws", func(resp http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(resp, req, nil)
		if err != nil {
			clog.Infof("upgrade failed: %v", err)
			return
		}
		database.addConnection(conn)
	})

	return database, mux, nil
}

func (s *Server) Database() *Database {
	return s.db
}

func (s *Server) ListenAndServe() error {
	clog.Infof("serving HTTP at http://%s/", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Serve serves on an already-bound listener. Tests use it with a
// kernel-assigned port.
func (s *Server) Serve(listener net.Listener) error {
	return s.httpServer.Serve(listener)
}

func (s *Server) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	if err := s.httpServer.Close(); err != nil {
		return err
	}
	return nil
}
