// Package debugserver serves pprof profiles and the live state of open lists
// over HTTP while marksync watch is running.
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/marksync/internal/core/listsync"
	"github.com/colonyops/marksync/internal/core/logging"
)

// Lists is the view of open lists the server exposes.
type Lists interface {
	Lists() []string
	Get(listID string) (*listsync.Controller, bool)
}

type listInfo struct {
	ID      string `json:"id"`
	Pending bool   `json:"pending"`
	Undo    int    `json:"undo"`
	LastOp  string `json:"lastOp,omitempty"`
}

// listDetail is a list's live state plus its undo entries, newest first.
// Entry snapshots are left out.
type listDetail struct {
	listsync.State
	Undo []undoEntry `json:"undo"`
}

type undoEntry struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	log        zerolog.Logger
}

// New creates a server that listens on addr once started. Use ":0" for a
// random port.
func New(addr string, lists Lists) *Server {
	s := &Server{addr: addr, log: logging.Component("debugserver")}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.HandleFunc("GET /lists", func(w http.ResponseWriter, r *http.Request) {
		ids := lists.Lists()
		out := make([]listInfo, 0, len(ids))
		for _, id := range ids {
			c, ok := lists.Get(id)
			if !ok {
				continue
			}
			info := listInfo{ID: id, Pending: c.Pending(), Undo: c.History().Len()}
			if last, ok := c.History().Peek(); ok {
				info.LastOp = last.Op
			}
			out = append(out, info)
		}
		s.writeJSON(w, out)
	})

	mux.HandleFunc("GET /lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := lists.Get(r.PathValue("id"))
		if !ok {
			http.Error(w, "unknown list", http.StatusNotFound)
			return
		}
		detail := listDetail{State: c.Snapshot(), Undo: []undoEntry{}}
		for _, e := range c.History().Entries() {
			detail.Undo = append(detail.Undo, undoEntry{ID: e.ID, Op: e.Op, Timestamp: e.Timestamp})
		}
		s.writeJSON(w, detail)
	})

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("write response")
	}
}

func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	s.log.Info().Str("addr", listener.Addr().String()).Msg("starting debug server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("debug server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down debug server")
	return s.httpServer.Shutdown(ctx)
}
