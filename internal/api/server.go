package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"darkcross/internal/domain"
	"darkcross/internal/engine"
	"darkcross/internal/event"
	"darkcross/internal/infra"
	"darkcross/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var startTime = time.Now()

// Server exposes the engine over HTTP: order entry, book views, cross
// history and operational endpoints. Order entry is asynchronous; requests
// are stamped and queued for the sequencer, never processed in-line.
type Server struct {
	intake *event.Intake
	seq    *engine.Sequencer
	books  *service.BookService
	store  domain.CrossRepository
	srv    *http.Server
}

// NewServer creates the API server.
func NewServer(addr string, intake *event.Intake, seq *engine.Sequencer, books *service.BookService, store domain.CrossRepository) *Server {
	s := &Server{
		intake: intake,
		seq:    seq,
		books:  books,
		store:  store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/metrics", s.handleMetrics)
	mux.HandleFunc("/api/v1/books", s.handleBooks)
	mux.HandleFunc("/api/v1/books/", s.handleBook)
	mux.HandleFunc("/api/v1/crosses/", s.handleCrosses)
	mux.HandleFunc("/api/v1/orders", s.handleCreateOrder)
	mux.HandleFunc("/api/v1/orders/", s.handleCancelOrder)
	mux.HandleFunc("/api/v1/alerts", s.handleCreateAlert)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the listener until the context is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		slog.Info("API listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("API server failed", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// -------------------------------
// GET /api/v1/health
// -------------------------------
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := infra.GlobalMetrics.Snapshot()
	resp := map[string]interface{}{
		"status":           "ok",
		"uptime_sec":       int64(time.Since(startTime).Seconds()),
		"events_processed": snap.EventsProcessed,
		"feed_connected":   snap.FeedConnected,
	}
	writeJSON(w, http.StatusOK, resp)
}

// -------------------------------
// GET /api/v1/metrics
// -------------------------------
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

// -------------------------------
// GET /api/v1/books
// -------------------------------
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.books.GetAll())
}

// -------------------------------
// GET /api/v1/books/{symbol}
// -------------------------------
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	symbol := pathParam(r.URL.Path)

	view := s.books.Get(symbol)
	if view == nil {
		writeError(w, http.StatusNotFound, "unknown symbol")
		return
	}

	// The view can outlive sequencer state; keep the sides as [] not null
	book, _ := s.seq.BookSnapshot(symbol)
	if book.Buys == nil {
		book.Buys = []*domain.Order{}
	}
	if book.Sells == nil {
		book.Sells = []*domain.Order{}
	}
	resp := map[string]interface{}{
		"view":  view,
		"buys":  book.Buys,
		"sells": book.Sells,
	}
	writeJSON(w, http.StatusOK, resp)
}

// -------------------------------
// GET /api/v1/crosses/{symbol}?limit=N
// -------------------------------
func (s *Server) handleCrosses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no cross store configured")
		return
	}

	symbol := pathParam(r.URL.Path)
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if l, err := strconv.Atoi(ls); err == nil && l > 0 {
			limit = l
		}
	}

	recs, err := s.store.RecentCrosses(symbol, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []domain.CrossRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// orderRequest is the order-entry payload
type orderRequest struct {
	ClientID string `json:"client_id"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Peg      string `json:"peg"`
	Qty      int64  `json:"qty"`
	MinQty   int64  `json:"min_qty"`
	Price    string `json:"price"`
}

// -------------------------------
// POST /api/v1/orders
// -------------------------------
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	order, err := req.toOrder()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.intake.Submit(func(seq uint64, ts int64) event.Event {
		return &event.OrderEvent{
			BaseEvent: event.BaseEvent{Seq: seq, Ts: ts},
			Order:     *order,
		}
	})

	// Admission happens on the sequencer goroutine; the request is only
	// queued at this point.
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"client_id": order.ClientID,
		"symbol":    order.Symbol,
		"status":    "queued",
	})
}

func (req *orderRequest) toOrder() (*domain.Order, error) {
	if req.Symbol == "" {
		return nil, domain.ErrInvalidSymbol
	}
	if req.Qty <= 0 {
		return nil, errors.New("qty must be positive")
	}

	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	typ, err := domain.ParseType(req.Type)
	if err != nil {
		return nil, err
	}
	peg, err := domain.ParsePeg(req.Peg)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.Sign() <= 0 {
		return nil, errors.New("price must be a positive decimal")
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	return &domain.Order{
		ClientID:  clientID,
		Symbol:    req.Symbol,
		Side:      side,
		Type:      typ,
		Peg:       peg,
		Qty:       req.Qty,
		MinQty:    req.MinQty,
		LeavesQty: req.Qty,
		Price:     price,
	}, nil
}

// -------------------------------
// DELETE /api/v1/orders/{symbol}/{id}
// -------------------------------
func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		writeError(w, http.StatusBadRequest, "expected /api/v1/orders/{symbol}/{id}")
		return
	}
	symbol := parts[len(parts)-2]
	id, err := strconv.ParseUint(parts[len(parts)-1], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	s.intake.Submit(func(seq uint64, ts int64) event.Event {
		return &event.CancelEvent{
			BaseEvent: event.BaseEvent{Seq: seq, Ts: ts},
			Symbol:    symbol,
			OrderID:   id,
		}
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// alertRequest is the cross-alert payload
type alertRequest struct {
	Symbol     string `json:"symbol"`
	Target     string `json:"target"`
	MinQty     int64  `json:"min_qty"`
	Persistent bool   `json:"persistent"`
}

// -------------------------------
// POST /api/v1/alerts
// -------------------------------
func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	target, err := decimal.NewFromString(req.Target)
	if err != nil || target.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "target must be a positive decimal")
		return
	}
	if req.MinQty < 0 {
		writeError(w, http.StatusBadRequest, "min_qty must not be negative")
		return
	}

	view := s.books.Get(req.Symbol)
	if view == nil {
		writeError(w, http.StatusNotFound, "unknown symbol")
		return
	}

	// Anchor the direction on the last cross, falling back to the midpoint
	current := view.NBB.Add(view.NBO).Div(decimal.NewFromInt(2))
	if view.LastCross != nil {
		current = *view.LastCross
	}

	alert := domain.NewAlertConfig(req.Symbol, target, current, req.MinQty, req.Persistent)
	s.seq.AddAlert(alert)

	writeJSON(w, http.StatusCreated, alert)
}

// ----------------- helpers -----------------

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func pathParam(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return parts[len(parts)-1]
}
