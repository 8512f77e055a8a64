package engine

// engine.go — la máquina de estados del ciclo predicción→apuesta→liquidación.
//
// El ciclo de decisión corre en un único hilo lógico: el engine consume
// resultados del feed en su propio loop, así las mutaciones de historia y
// bankroll nunca se intercalan y el orden de liquidación coincide con el
// orden de llegada. El único trabajo concurrente es el Trainer, que opera
// sobre snapshots y hace el handoff con un swap atómico.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/domain/strategy"
	"github.com/alejandrodnm/roulettebot/internal/ports"
)

// State es el estado de la máquina del engine.
type State int

const (
	// StateAwaitingHistory: aún no hay historia suficiente para predecir.
	StateAwaitingHistory State = iota
	// StateActive: ciclos normales de predicción/apuesta/liquidación.
	StateActive
	// StateExhausted: bankroll agotado. Terminal, sin transición de salida.
	StateExhausted
)

// String devuelve el nombre legible del estado.
func (s State) String() string {
	switch s {
	case StateAwaitingHistory:
		return "awaiting_history"
	case StateActive:
		return "active"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Config contiene la configuración del engine.
type Config struct {
	WindowLength      int             // longitud de ventana del predictor
	HistoryCap        int             // retención máxima de historia
	PayoutRatio       decimal.Decimal // pago por unidad apostada al acertar
	BettingFraction   decimal.Decimal // fracción del balance por ronda
	PerUnitCap        decimal.Decimal // tope fijo de stake por número predicho
	InitialBalance    decimal.Decimal
	AutoTrain         bool
	MinTrainHistory   int     // historia mínima para encolar reentrenamiento
	CoverageThreshold float64 // umbral de cobertura para el K dinámico
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		WindowLength:      10,
		HistoryCap:        domain.DefaultHistoryCap,
		PayoutRatio:       decimal.NewFromInt(35),
		BettingFraction:   decimal.NewFromFloat(0.1),
		PerUnitCap:        decimal.NewFromFloat(0.01),
		InitialBalance:    decimal.NewFromInt(10),
		MinTrainHistory:   20,
		CoverageThreshold: 0.5,
	}
}

// validate comprueba la configuración en el arranque. Cualquier fallo aquí
// es un ConfigurationError: fatal, no se construye un engine parcial.
func (c Config) validate() error {
	if c.WindowLength <= 0 {
		return fmt.Errorf("window_length must be > 0, got %d", c.WindowLength)
	}
	if c.InitialBalance.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("initial_balance must be > 0, got %s", c.InitialBalance)
	}
	if c.PayoutRatio.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("payout_ratio must be > 0, got %s", c.PayoutRatio)
	}
	if c.BettingFraction.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("betting_fraction must be > 0, got %s", c.BettingFraction)
	}
	if c.PerUnitCap.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("per_unit_cap must be > 0, got %s", c.PerUnitCap)
	}
	return nil
}

// CycleResult es lo que produce cada llamada a OnOutcome: una liquidación,
// un aviso de historia insuficiente, o un aviso de agotamiento.
type CycleResult struct {
	State      State
	Settlement *domain.SettlementResult // nil salvo ronda liquidada
	Have, Need int                      // progreso de historia en AwaitingHistory
}

// Engine orquesta el ciclo de decisión de una estrategia.
// Una instancia posee en exclusiva su historia y su ledger.
type Engine struct {
	cfg       Config
	spec      strategy.Spec
	sessionID string

	history   *domain.History
	predictor ports.Predictor
	policy    *WagerPolicy
	ledger    *Ledger
	trainer   *Trainer
	storage   ports.RoundStorage // opcional: nil desactiva el log de rondas
	notifier  ports.Notifier

	state State
}

// New crea un Engine con todas las dependencias inyectadas.
// trainer puede ser nil si el auto-train está deshabilitado; storage puede
// ser nil para correr sin log persistente.
func New(
	cfg Config,
	spec strategy.Spec,
	sessionID string,
	predictor ports.Predictor,
	trainer *Trainer,
	storage ports.RoundStorage,
	notifier ports.Notifier,
) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	if predictor == nil {
		return nil, fmt.Errorf("engine.New: predictor is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("engine.New: notifier is required")
	}

	return &Engine{
		cfg:       cfg,
		spec:      spec,
		sessionID: sessionID,
		history:   domain.NewHistory(cfg.HistoryCap),
		predictor: predictor,
		policy:    NewWagerPolicy(spec, cfg.BettingFraction, cfg.PerUnitCap, cfg.CoverageThreshold),
		ledger:    NewLedger(cfg.InitialBalance, cfg.PayoutRatio),
		trainer:   trainer,
		storage:   storage,
		notifier:  notifier,
		state:     StateAwaitingHistory,
	}, nil
}

// State devuelve el estado actual de la máquina.
func (e *Engine) State() State {
	return e.state
}

// Stats devuelve las estadísticas agregadas de la sesión.
func (e *Engine) Stats() domain.SessionStats {
	return e.ledger.Stats()
}

// Run consume resultados del feed hasta que el contexto se cancele, el
// feed cierre su canal, o el bankroll se agote. El ciclo de vida del
// Trainer lo gestiona el llamante: puede llamarse Run varias veces sobre
// el mismo engine (p.ej. feed en vivo y luego fallback a simulación) sin
// duplicar workers.
func (e *Engine) Run(ctx context.Context, feed ports.OutcomeFeed) error {
	slog.Info("engine starting",
		"strategy", e.spec.Kind,
		"session", e.sessionID,
		"balance", e.ledger.Balance(),
		"auto_train", e.cfg.AutoTrain,
	)

	for {
		select {
		case <-ctx.Done():
			e.finish(ctx, "context cancelled")
			return nil
		case outcome, ok := <-feed.Outcomes():
			if !ok {
				e.finish(ctx, "feed closed")
				return nil
			}
			cycle := e.OnOutcome(ctx, outcome)
			if cycle.State == StateExhausted {
				e.finish(ctx, "bankroll exhausted")
				return nil
			}
		}
	}
}

// OnOutcome procesa un resultado entrante: actualiza la historia y, si hay
// ventana completa, ejecuta el ciclo predicción→apuesta→liquidación.
// Estrictamente serializado — no es seguro llamarlo desde varias goroutines.
func (e *Engine) OnOutcome(ctx context.Context, outcome domain.Outcome) CycleResult {
	if e.state == StateExhausted {
		// Terminal: los resultados posteriores se ignoran.
		return CycleResult{State: StateExhausted}
	}

	if !outcome.Valid() {
		slog.Warn("ignoring outcome outside alphabet", "outcome", int(outcome))
		return CycleResult{State: e.state, Have: e.history.Len(), Need: e.cfg.WindowLength}
	}

	e.history.Append(outcome)

	if e.history.Len() < e.cfg.WindowLength {
		if err := e.notifier.AwaitingHistory(ctx, e.history.Len(), e.cfg.WindowLength); err != nil {
			slog.Warn("notifier error", "err", err)
		}
		return CycleResult{
			State: StateAwaitingHistory,
			Have:  e.history.Len(),
			Need:  e.cfg.WindowLength,
		}
	}

	if e.state == StateAwaitingHistory {
		e.state = StateActive
		slog.Info("history window filled, engine active", "window", e.cfg.WindowLength)
	}

	result := e.settleCycle(ctx, outcome)

	if result.NewBalance.LessThanOrEqual(decimal.Zero) {
		e.state = StateExhausted
		if err := e.notifier.Exhausted(ctx, e.ledger.Stats()); err != nil {
			slog.Warn("notifier error", "err", err)
		}
		return CycleResult{State: StateExhausted, Settlement: &result}
	}

	e.maybeTrain()

	return CycleResult{State: StateActive, Settlement: &result}
}

// settleCycle ejecuta predict → size → settle → persist → notify para el
// resultado dado. Las anomalías no-fatales se absorben para preservar la
// vivacidad del loop.
func (e *Engine) settleCycle(ctx context.Context, outcome domain.Outcome) domain.SettlementResult {
	prediction := e.predict(ctx)
	wagers := e.policy.Size(prediction, e.ledger.Balance())
	result := e.ledger.Settle(outcome, prediction, wagers)

	if e.storage != nil {
		if err := e.storage.SaveRound(ctx, e.sessionID, result); err != nil {
			slog.Warn("failed to persist round", "spin", result.Spin, "err", err)
		}
	}
	if err := e.notifier.RoundSettled(ctx, result, e.ledger.Stats()); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	return result
}

// predict obtiene los scores del predictor y extrae el top-K según la
// política. Si el predictor falla o no hay ventana, cae a la predicción
// determinista por defecto — el ciclo siempre tiene una predicción válida.
func (e *Engine) predict(ctx context.Context) domain.Prediction {
	window, ok := e.history.Window(e.cfg.WindowLength)
	if !ok {
		return domain.DefaultPrediction(e.fallbackK())
	}

	scores, err := e.predictor.Predict(ctx, window)
	if err != nil || len(scores) != domain.AlphabetSize {
		slog.Warn("predictor unavailable, using default prediction", "err", err)
		return domain.DefaultPrediction(e.fallbackK())
	}

	k := e.policy.PredictionSize(scores)
	return domain.TopK(scores, k)
}

// fallbackK es el K a usar cuando no hay scores de los que derivarlo.
func (e *Engine) fallbackK() int {
	if e.spec.Dynamic {
		return 1
	}
	return e.spec.NumbersToPredict
}

// maybeTrain encola un job de reentrenamiento si el auto-train está
// habilitado, hay historia mínima y no hay otro job en vuelo. Nunca bloquea.
func (e *Engine) maybeTrain() {
	if !e.cfg.AutoTrain || e.trainer == nil {
		return
	}
	if e.history.Len() < e.cfg.MinTrainHistory {
		return
	}
	if e.trainer.TryEnqueue(e.history.Snapshot()) {
		slog.Debug("training job enqueued", "history", e.history.Len())
	}
}

// finish emite el resumen de sesión al terminar el loop.
func (e *Engine) finish(ctx context.Context, reason string) {
	slog.Info("engine stopping", "reason", reason, "state", e.state.String())
	if err := e.notifier.Summary(ctx, e.ledger.Stats()); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}
