package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Engine   EngineConfig   `yaml:"engine"`
	Feed     FeedConfig     `yaml:"feed"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig selecciona la estrategia y su sesión.
type StrategyConfig struct {
	Name           string  `yaml:"name"`            // top1 | top3 | top18 | topm
	InitialBalance float64 `yaml:"initial_balance"` // bankroll de arranque
	AutoTrain      bool    `yaml:"auto_train"`
}

// EngineConfig controla el ciclo de decisión.
type EngineConfig struct {
	WindowLength      int     `yaml:"window_length"`      // longitud de ventana del predictor
	HistoryCap        int     `yaml:"history_cap"`        // retención máxima de resultados
	PayoutRatio       float64 `yaml:"payout_ratio"`       // pago straight-up (35:1)
	BettingFraction   float64 `yaml:"betting_fraction"`   // fracción del balance por ronda
	PerUnitCap        float64 `yaml:"per_unit_cap"`       // tope de stake por número predicho
	MinTrainHistory   int     `yaml:"min_train_history"`  // historia mínima para reentrenar
	CoverageThreshold float64 `yaml:"coverage_threshold"` // masa de score para el K dinámico
}

// FeedConfig controla la fuente de resultados.
type FeedConfig struct {
	WSURL          string  `yaml:"ws_url"`
	CasinoID       string  `yaml:"casino_id"`
	TableID        string  `yaml:"table_id"`
	Currency       string  `yaml:"currency"`
	SpinsPerSecond float64 `yaml:"spins_per_second"` // cadencia del feed simulado
	Seed           uint64  `yaml:"seed"`             // 0 = aleatorio
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Los valores del entorno sobreescriben los del YAML. Si el
// archivo YAML no existe se arranca solo con defaults y entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// sin archivo: defaults + entorno
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están
// presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FEED_WS_URL"); v != "" {
		cfg.Feed.WSURL = v
	}
	if v := os.Getenv("FEED_CASINO_ID"); v != "" {
		cfg.Feed.CasinoID = v
	}
	if v := os.Getenv("FEED_TABLE_ID"); v != "" {
		cfg.Feed.TableID = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = "top1"
	}
	if cfg.Strategy.InitialBalance <= 0 {
		cfg.Strategy.InitialBalance = 10.0
	}
	if cfg.Engine.WindowLength <= 0 {
		cfg.Engine.WindowLength = 10
	}
	if cfg.Engine.HistoryCap <= 0 {
		cfg.Engine.HistoryCap = 1000
	}
	if cfg.Engine.PayoutRatio <= 0 {
		cfg.Engine.PayoutRatio = 35
	}
	if cfg.Engine.BettingFraction <= 0 {
		cfg.Engine.BettingFraction = 0.1
	}
	if cfg.Engine.PerUnitCap <= 0 {
		cfg.Engine.PerUnitCap = 0.01
	}
	if cfg.Engine.MinTrainHistory <= 0 {
		cfg.Engine.MinTrainHistory = 20
	}
	if cfg.Engine.CoverageThreshold <= 0 {
		cfg.Engine.CoverageThreshold = 0.5
	}
	if cfg.Feed.WSURL == "" {
		cfg.Feed.WSURL = "wss://dga.pragmaticplaylive.net/ws"
	}
	if cfg.Feed.CasinoID == "" {
		cfg.Feed.CasinoID = "ppcds00000003709"
	}
	if cfg.Feed.TableID == "" {
		cfg.Feed.TableID = "236"
	}
	if cfg.Feed.Currency == "" {
		cfg.Feed.Currency = "USD"
	}
	if cfg.Feed.SpinsPerSecond <= 0 {
		cfg.Feed.SpinsPerSecond = 0.2
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "roulettebot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
