package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"darkcross/internal/domain"
	"darkcross/internal/event"
	"darkcross/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	maxRetries   = 10
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

// Worker handles the NBBO quote WebSocket connection
type Worker struct {
	wsURL     string
	symbols   []string
	intake    *event.Intake
	signer    *Signer
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWorker creates a new quote feed worker
func NewWorker(wsURL string, symbols []string, intake *event.Intake, signer *Signer) *Worker {
	return &Worker{
		wsURL:   wsURL,
		symbols: symbols,
		intake:  intake,
		signer:  signer,
	}
}

// Connect starts the WebSocket connection
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Feed connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := make(http.Header)
	if w.signer != nil {
		for k, v := range w.signer.GenerateHeaders("GET", "/v1/quotes") {
			header.Add(k, v)
		}
	}

	conn, _, err := dialer.DialContext(ctx, w.wsURL, header)
	if err != nil {
		return domain.NewNetworkError("dial", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	infra.GlobalMetrics.SetFeedConnected(true)
	slog.Info("Feed connected", slog.Int("subs", len(w.symbols)))
	return nil
}

func (w *Worker) subscribe() error {
	msg := subscribeRequest{
		Op:      "subscribe",
		Channel: "quote",
		Symbols: w.symbols,
	}
	b, _ := json.Marshal(msg)
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return domain.ErrConnectionFailed
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	pinger := time.NewTicker(pingInterval)
	defer pinger.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-pinger.C:
				if err := w.threadSafeWrite(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *Worker) handleMessage(msg []byte) {
	var resp quoteResponse
	if json.Unmarshal(msg, &resp) != nil || resp.Type != "quote" {
		return
	}

	nbb, err1 := decimal.NewFromString(resp.Bid)
	nbo, err2 := decimal.NewFromString(resp.Ask)
	lUp, err3 := decimal.NewFromString(resp.LimitUp)
	lDown, err4 := decimal.NewFromString(resp.LimitDown)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		slog.Warn("Malformed quote payload", slog.String("symbol", resp.Symbol))
		infra.GlobalMetrics.RecordError()
		return
	}

	ev := event.AcquireQuoteEvent()
	ev.Symbol = resp.Symbol
	ev.NBB = nbb
	ev.NBO = nbo
	ev.LimitUp = lUp
	ev.LimitDown = lDown

	w.intake.Submit(func(seq uint64, ts int64) event.Event {
		ev.Seq = seq
		ev.Ts = ts
		return ev
	})
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
	infra.GlobalMetrics.SetFeedConnected(false)
}

// IsConnected reports whether the socket is currently up.
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
