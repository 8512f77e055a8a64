package storage

// sqlite.go — persistencia de rondas y artefactos de modelo.
//
// Estrategia:
//   - `rounds`: log acotado de rondas liquidadas, una fila por spin.
//     Los importes se guardan como texto decimal exacto, nunca como REAL.
//   - `models`: un blob opaco por clave de estrategia (UPSERT).
//   - Prune automático al arrancar: rondas con más de 30 días se descartan,
//     las estadísticas agregadas viven en memoria durante la sesión.

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/ports"
)

const schema = `
-- Log acotado de rondas liquidadas
CREATE TABLE IF NOT EXISTS rounds (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   TEXT     NOT NULL,
    spin         INTEGER  NOT NULL,
    realized     INTEGER  NOT NULL,
    prediction   TEXT     NOT NULL,
    total_staked TEXT     NOT NULL,
    amount_won   TEXT     NOT NULL,
    new_balance  TEXT     NOT NULL,
    won          INTEGER  NOT NULL DEFAULT 0,
    settled_at   DATETIME NOT NULL
);

-- Un artefacto de modelo por estrategia
CREATE TABLE IF NOT EXISTS models (
    key        TEXT     PRIMARY KEY,
    blob       BLOB     NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rounds_session ON rounds(session_id, spin);
CREATE INDEX IF NOT EXISTS idx_rounds_at      ON rounds(settled_at DESC);
`

// retentionRounds es la edad máxima del log de rondas.
const retentionRounds = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.RoundStorage y ports.ModelStore usando
// SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia rondas antiguas.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRound persiste una ronda liquidada asociada a la sesión dada.
func (s *SQLiteStorage) SaveRound(ctx context.Context, sessionID string, r domain.SettlementResult) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO rounds
			(session_id, spin, realized, prediction, total_staked, amount_won, new_balance, won, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		r.Spin,
		int(r.Realized),
		encodePrediction(r.Prediction),
		r.TotalStaked.String(),
		r.AmountWon.String(),
		r.NewBalance.String(),
		boolToInt(r.Won),
		r.SettledAt.UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveRound: insert spin %d: %w", r.Spin, err)
	}
	return nil
}

// GetRounds devuelve las rondas de la sesión en el rango dado, en orden
// de liquidación.
func (s *SQLiteStorage) GetRounds(ctx context.Context, sessionID string, from, to time.Time) ([]domain.SettlementResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT spin, realized, prediction, total_staked, amount_won, new_balance, won, settled_at
		FROM rounds
		WHERE session_id = ? AND settled_at BETWEEN ? AND ?
		ORDER BY spin ASC
	`, sessionID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetRounds: query: %w", err)
	}
	defer rows.Close()

	var results []domain.SettlementResult
	for rows.Next() {
		var (
			r          domain.SettlementResult
			realized   int
			prediction string
			staked     string
			won        string
			balance    string
			wonFlag    int
			settledAt  time.Time
		)
		if err := rows.Scan(&r.Spin, &realized, &prediction, &staked, &won, &balance, &wonFlag, &settledAt); err != nil {
			return nil, fmt.Errorf("storage.GetRounds: scan row: %w", err)
		}

		r.Realized = domain.Outcome(realized)
		r.Won = wonFlag == 1
		r.SettledAt = settledAt
		if r.Prediction, err = decodePrediction(prediction); err != nil {
			return nil, fmt.Errorf("storage.GetRounds: spin %d: %w", r.Spin, err)
		}
		if r.TotalStaked, err = decimal.NewFromString(staked); err != nil {
			return nil, fmt.Errorf("storage.GetRounds: spin %d: total_staked: %w", r.Spin, err)
		}
		if r.AmountWon, err = decimal.NewFromString(won); err != nil {
			return nil, fmt.Errorf("storage.GetRounds: spin %d: amount_won: %w", r.Spin, err)
		}
		if r.NewBalance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("storage.GetRounds: spin %d: new_balance: %w", r.Spin, err)
		}

		results = append(results, r)
	}

	return results, rows.Err()
}

// LoadModel devuelve el blob del artefacto para la clave dada, o
// ports.ErrModelNotFound si no existe.
func (s *SQLiteStorage) LoadModel(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM models WHERE key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("storage.LoadModel: %q: %w", key, ports.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage.LoadModel: %q: %w", key, err)
	}
	return blob, nil
}

// SaveModel persiste (o reemplaza) el blob del artefacto.
func (s *SQLiteStorage) SaveModel(ctx context.Context, key string, blob []byte) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO models (key, blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			blob       = excluded.blob,
			updated_at = excluded.updated_at
	`, key, blob, time.Now().UTC()); err != nil {
		return fmt.Errorf("storage.SaveModel: %q: %w", key, err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina rondas antiguas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRounds)
	s.db.ExecContext(ctx, `DELETE FROM rounds WHERE settled_at < ?`, cutoff)
}

// encodePrediction serializa la predicción como CSV de números.
func encodePrediction(p domain.Prediction) string {
	parts := make([]string, len(p))
	for i, o := range p {
		parts[i] = strconv.Itoa(int(o))
	}
	return strings.Join(parts, ",")
}

// decodePrediction reconstruye la predicción desde su forma CSV.
func decodePrediction(s string) (domain.Prediction, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	pred := make(domain.Prediction, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("prediction %q: %w", s, err)
		}
		pred[i] = domain.Outcome(n)
	}
	return pred, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
