// Package server implements the dev close tracker: the HTTP contract the
// board consumes, backed by sqlite, for local development and tests.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/feed"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/pkg/httpapi"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/pkg/netguard"
)

// Server wraps the store with the tracker's HTTP + WS endpoints.
type Server struct {
	store  *Store
	broker *feed.Broker
	logger *slog.Logger
	mux    *http.ServeMux
	srv    *http.Server
}

// NewServer builds the tracker server.
func NewServer(store *Store, broker *feed.Broker, logger *slog.Logger) *Server {
	if broker == nil {
		broker = feed.NewBroker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, broker: broker, logger: logger, mux: http.NewServeMux()}
	s.setupRoutes()
	return s
}

// Broker returns the event broker.
func (s *Server) Broker() *feed.Broker { return s.broker }

// Handler exposes the mux, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.mux.HandleFunc("PUT /api/tasks/{id}/status", s.handleUpdateStatus)
	s.mux.HandleFunc("POST /api/tasks/bulk-status", s.handleBulkStatus)

	s.mux.HandleFunc("GET /api/reviews", s.handleReviewQueue)
	s.mux.HandleFunc("GET /api/periods", s.handleListPeriods)

	s.mux.HandleFunc("GET /ws/events", s.handleWS)
}

// Start serves until the listener fails or Shutdown is called. The tracker
// refuses to bind beyond loopback.
func (s *Server) Start(addr string) error {
	if err := netguard.EnsureLocalOnly(addr); err != nil {
		return err
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	s.logger.Info("tracker listening", "addr", addr)
	return s.srv.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func currentUser(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteOK(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
}

func parseListOptions(r *http.Request) (ListOptions, error) {
	var opt ListOptions
	q := r.URL.Query()
	if v := q.Get("period_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opt, errors.New("period_id must be an integer")
		}
		opt.PeriodID = id
	}
	if v := q.Get("status"); v != "" {
		st, err := task.ParseStatus(v)
		if err != nil {
			return opt, err
		}
		opt.Status = st
	}
	opt.Department = q.Get("department")
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opt, errors.New("limit must be a non-negative integer")
		}
		opt.Limit = n
	}
	return opt, nil
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	opt, err := parseListOptions(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, err.Error())
		return
	}
	if r.URL.Query().Get("mine") == "1" {
		user := currentUser(r)
		if user == "" {
			httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "mine=1 requires an X-User header")
			return
		}
		opt.User = user
	}

	tasks, err := s.store.ListTasks(opt)
	if err != nil {
		s.logger.Error("list tasks", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, httpapi.ErrInternal, "list tasks failed")
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	httpapi.WriteOK(w, http.StatusOK, tasks, &httpapi.Meta{Count: len(tasks), Limit: opt.Limit})
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == "" {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "review queue requires an X-User header")
		return
	}
	opt, err := parseListOptions(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, err.Error())
		return
	}

	tasks, err := s.store.ReviewQueue(user, opt)
	if err != nil {
		s.logger.Error("review queue", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, httpapi.ErrInternal, "review queue failed")
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	httpapi.WriteOK(w, http.StatusOK, tasks, &httpapi.Meta{Count: len(tasks), Limit: opt.Limit})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "task id must be an integer")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "invalid request body")
		return
	}
	st, err := task.ParseStatus(req.Status)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, err.Error())
		return
	}

	updated, prev, err := s.store.UpdateStatus(id, st, currentUser(r))
	if errors.Is(err, sql.ErrNoRows) {
		httpapi.WriteError(w, http.StatusNotFound, httpapi.ErrNotFound, "task "+strconv.FormatInt(id, 10)+" not found")
		return
	}
	if err != nil {
		s.logger.Error("update status", "task", id, "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, httpapi.ErrInternal, "update failed")
		return
	}

	s.broker.Publish(feed.StatusChanged(updated, prev, currentUser(r)))
	s.logger.Info("status changed", "task", id, "from", prev, "to", st)
	httpapi.WriteOK(w, http.StatusOK, updated, nil)
}

func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskIDs []int64 `json:"task_ids"`
		Status  string  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "invalid request body")
		return
	}
	if len(req.TaskIDs) == 0 {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "task_ids must not be empty")
		return
	}
	st, err := task.ParseStatus(req.Status)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, err.Error())
		return
	}

	updated, err := s.store.BulkUpdateStatus(req.TaskIDs, st, currentUser(r))
	if err != nil {
		s.logger.Error("bulk update", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, httpapi.ErrInternal, "bulk update failed")
		return
	}

	s.broker.Publish(feed.BulkStatusChanged(updated, st, currentUser(r)))
	s.logger.Info("bulk status changed", "count", updated, "to", st)
	httpapi.WriteOK(w, http.StatusOK, map[string]int{"updated": updated}, nil)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var d task.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(d.Name) == "" {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "name is required")
		return
	}
	if d.Owner == "" {
		d.Owner = currentUser(r)
	}
	if d.PeriodID == 0 {
		id, err := s.store.ActivePeriod()
		if err != nil {
			httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "no active period; pass period_id")
			return
		}
		d.PeriodID = id
	}

	created, err := s.store.CreateTask(d)
	if err != nil {
		s.logger.Error("create task", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, httpapi.ErrInternal, "create failed")
		return
	}

	s.broker.Publish(feed.TaskCreated(created, currentUser(r)))
	httpapi.WriteOK(w, http.StatusCreated, created, nil)
}

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.store.ListPeriods()
	if err != nil {
		s.logger.Error("list periods", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, httpapi.ErrInternal, "list periods failed")
		return
	}
	if periods == nil {
		periods = []task.Period{}
	}
	httpapi.WriteOK(w, http.StatusOK, periods, nil)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	// Optional filter: ?types=status_changed,bulk_status_changed
	var types []feed.EventType
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		for _, t := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				types = append(types, feed.EventType(trimmed))
			}
		}
	}
	s.broker.ServeWS(w, r, types)
}
