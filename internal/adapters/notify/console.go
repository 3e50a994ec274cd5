package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier imprimiendo la clasificación tras cada
// resultado.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// NotifyStandings imprime la tabla de clasificación acumulada.
func (c *Console) NotifyStandings(_ context.Context, game domain.GameID, round domain.Round, standings []domain.Standing) error {
	if len(standings) == 0 {
		return nil
	}
	fmt.Fprintf(c.out, "\n[%s] game %d standings after round %d\n",
		time.Now().Format("15:04:05"), game, round)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Team", "P", "W", "D", "L", "GF", "GA", "Pts")
	for i, row := range standings {
		table.Append(
			fmt.Sprintf("%d", i+1),
			row.Team,
			fmt.Sprintf("%d", row.Played),
			fmt.Sprintf("%d", row.Won),
			fmt.Sprintf("%d", row.Drawn),
			fmt.Sprintf("%d", row.Lost),
			fmt.Sprintf("%d", row.GoalsFor),
			fmt.Sprintf("%d", row.GoalsAgainst),
			fmt.Sprintf("%d", row.Points),
		)
	}
	table.Render()
	return nil
}
