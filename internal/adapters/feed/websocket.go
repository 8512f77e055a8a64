package feed

// websocket.go — feed en vivo desde el WebSocket del casino.
//
// Protocolo Pragmatic Play live: tras conectar se envía un mensaje de
// suscripción con casino/mesa/moneda, el servidor empuja el estado de la
// mesa con los últimos resultados, y un ping periódico mantiene viva la
// conexión. Ante cualquier fallo de transporte se reconecta con backoff;
// el engine nunca ve los errores, solo resultados por el canal.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

const (
	pingInterval  = 5 * time.Minute
	dialTimeout   = 10 * time.Second
	maxReconnects = 5
	baseReconnect = 2 * time.Second
)

// WebSocket implementa ports.OutcomeFeed contra una mesa de ruleta en vivo.
type WebSocket struct {
	url      string
	casinoID string
	tableID  string
	currency string

	out        chan domain.Outcome
	lastGameID string // dedup: el servidor reenvía el estado completo de la mesa
}

// NewWebSocket crea el feed para la mesa dada.
func NewWebSocket(url, casinoID, tableID, currency string) *WebSocket {
	if currency == "" {
		currency = "USD"
	}
	return &WebSocket{
		url:      url,
		casinoID: casinoID,
		tableID:  tableID,
		currency: currency,
		out:      make(chan domain.Outcome),
	}
}

// Outcomes devuelve el canal de resultados.
func (w *WebSocket) Outcomes() <-chan domain.Outcome {
	return w.out
}

// Run mantiene la conexión hasta que el contexto se cancele o se agoten
// los reintentos. Cierra el canal de resultados al terminar.
func (w *WebSocket) Run(ctx context.Context) error {
	defer close(w.out)

	for attempt := 0; attempt <= maxReconnects; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * baseReconnect
			slog.Warn("feed: reconnecting", "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		}

		err := w.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("feed: session ended", "err", err)
	}

	return fmt.Errorf("feed.Run: gave up after %d reconnects", maxReconnects)
}

// session abre una conexión, se suscribe y procesa mensajes hasta fallar.
func (w *WebSocket) session(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, w.url, nil)
	if err != nil {
		return fmt.Errorf("feed.session: dial %q: %w", w.url, err)
	}
	defer conn.Close()

	if err := w.subscribe(conn); err != nil {
		return err
	}
	slog.Info("feed: subscribed", "table", w.tableID, "casino", w.casinoID)

	// Cerrar la conexión al cancelar desbloquea el ReadMessage.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				if err := w.ping(conn); err != nil {
					slog.Warn("feed: ping failed", "err", err)
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed.session: read: %w", err)
		}
		outcome, gameID, ok := parseResult(msg)
		if !ok || (gameID != "" && gameID == w.lastGameID) {
			continue
		}
		w.lastGameID = gameID

		select {
		case <-ctx.Done():
			return nil
		case w.out <- outcome:
		}
	}
}

// subscribe envía el mensaje inicial de suscripción a la mesa.
func (w *WebSocket) subscribe(conn *websocket.Conn) error {
	msg := map[string]any{
		"type":           "subscribe",
		"isDeltaEnabled": true,
		"casinoId":       w.casinoID,
		"key":            []string{w.tableID},
		"currency":       w.currency,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("feed.subscribe: %w", err)
	}
	return nil
}

// ping envía el keepalive con el timestamp actual en milisegundos.
func (w *WebSocket) ping(conn *websocket.Conn) error {
	return conn.WriteJSON(map[string]any{
		"type":     "ping",
		"pingTime": time.Now().UnixMilli(),
	})
}

// tableMessage es el mensaje de estado de mesa del servidor. El formato
// principal lleva los últimos resultados en last20Results (el más
// reciente primero); el formato antiguo lleva result.number.
type tableMessage struct {
	TableID string `json:"tableId"`
	Last20  []struct {
		Result string `json:"result"`
		GameID string `json:"gameId"`
	} `json:"last20Results"`
	Result *struct {
		Number int `json:"number"`
	} `json:"result"`
}

// parseResult extrae el resultado más reciente de un mensaje del servidor.
// Devuelve ok=false para mensajes sin resultado (acks, deltas vacíos).
func parseResult(raw []byte) (domain.Outcome, string, bool) {
	var msg tableMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Debug("feed: undecodable message", "err", err)
		return 0, "", false
	}

	if msg.TableID != "" && len(msg.Last20) > 0 {
		latest := msg.Last20[0]
		n, err := strconv.Atoi(latest.Result)
		if err != nil {
			slog.Warn("feed: invalid result format", "result", latest.Result)
			return 0, "", false
		}
		o := domain.Outcome(n)
		if !o.Valid() {
			slog.Warn("feed: result outside alphabet", "result", n)
			return 0, "", false
		}
		return o, latest.GameID, true
	}

	// Formato antiguo: sin gameId, se emite sin dedup.
	if msg.Result != nil {
		o := domain.Outcome(msg.Result.Number)
		if !o.Valid() {
			return 0, "", false
		}
		return o, "", true
	}

	return 0, "", false
}
