package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/domain/strategy"
)

// Console implementa ports.Notifier escribiendo a stdout.
// El engine emite resultados estructurados; todo el formato vive aquí.
type Console struct {
	out     io.Writer
	verbose bool // imprimir el desglose de apuestas por número
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(verbose bool) *Console {
	return &Console{out: os.Stdout, verbose: verbose}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, verbose bool) *Console {
	return &Console{out: w, verbose: verbose}
}

// RoundSettled imprime la ronda liquidada en formato compacto de una
// línea, más el desglose de apuestas si verbose está activo.
func (c *Console) RoundSettled(_ context.Context, r domain.SettlementResult, stats domain.SessionStats) error {
	now := time.Now().Format("15:04:05")

	outcome := fmt.Sprintf("%d(%s)", int(r.Realized), r.Realized.Color())
	verdict := "LOSS"
	if r.Won {
		verdict = "WIN"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] spin #%d → %s | pred:%s | staked $%s | %s %s | bal $%s | wr %.2f%% roi %.2f%%",
		now, r.Spin, outcome,
		compactPrediction(r.Prediction),
		r.TotalStaked.StringFixed(2),
		verdict, r.Net().StringFixed(2),
		r.NewBalance.StringFixed(2),
		stats.WinRate(), stats.ROI(),
	)
	fmt.Fprintln(c.out, sb.String())

	if c.verbose && len(r.Wagers) > 0 {
		for _, o := range r.Prediction {
			fmt.Fprintf(c.out, "    %2d: $%s\n", int(o), r.Wagers.StakeOn(o).StringFixed(4))
		}
	}
	return nil
}

// AwaitingHistory imprime el progreso de acumulación de historia.
func (c *Console) AwaitingHistory(_ context.Context, have, need int) error {
	fmt.Fprintf(c.out, "[%s] collecting history %d/%d — waiting for more spins\n",
		time.Now().Format("15:04:05"), have, need)
	return nil
}

// Exhausted imprime el aviso terminal de bankroll agotado.
func (c *Console) Exhausted(_ context.Context, stats domain.SessionStats) error {
	fmt.Fprintf(c.out, "\n✗ balance depleted after %d rounds — strategy stopped\n", stats.TotalRounds)
	return nil
}

// Summary imprime la tabla resumen de la sesión.
func (c *Console) Summary(_ context.Context, stats domain.SessionStats) error {
	fmt.Fprintf(c.out, "\n=== SESSION SUMMARY ===\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("Rounds", "Wins", "Win rate", "Initial", "Final", "ROI")
	table.Append(
		fmt.Sprintf("%d", stats.TotalRounds),
		fmt.Sprintf("%d", stats.CorrectRounds),
		fmt.Sprintf("%.2f%%", stats.WinRate()),
		fmt.Sprintf("$%s", stats.InitialBalance.StringFixed(2)),
		fmt.Sprintf("$%s", stats.Balance.StringFixed(2)),
		fmt.Sprintf("%.2f%%", stats.ROI()),
	)
	table.Render()
	return nil
}

// PrintCatalog imprime el catálogo de estrategias disponibles
// (modo --list-strategies).
func (c *Console) PrintCatalog(specs []strategy.Spec) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Name", "Risk", "Numbers", "Target WR", "Description")

	for _, s := range specs {
		numbers := fmt.Sprintf("%d", s.NumbersToPredict)
		target := fmt.Sprintf("%.2f%%", s.TargetWinRate)
		if s.Dynamic {
			numbers = "dynamic"
			target = "variable"
		}
		table.Append(string(s.Kind), s.RiskLevel, numbers, target, s.Description)
	}

	table.Render()
}

// compactPrediction abrevia predicciones largas: lista completa hasta 6
// números, después solo el conteo.
func compactPrediction(p domain.Prediction) string {
	if len(p) > 6 {
		return fmt.Sprintf("%d numbers", len(p))
	}
	parts := make([]string, len(p))
	for i, o := range p {
		parts[i] = fmt.Sprintf("%d", int(o))
	}
	return strings.Join(parts, ",")
}
