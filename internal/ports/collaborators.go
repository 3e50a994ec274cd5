package ports

import (
	"context"

	"github.com/alejandrodnm/vbet/internal/domain"
)

// TicketService gestiona el ciclo de vida de los tickets de una competición.
// Es un colaborador externo: debe dar sus propias garantías de consistencia
// cuando varias competiciones lo comparten.
type TicketService interface {
	// RegisterTicket registra un ticket recién producido por una estrategia.
	RegisterTicket(ctx context.Context, ticket *domain.Ticket) error

	// SettleCompetitionTickets intenta liquidar los tickets pendientes de la
	// competición contra los resultados ya conocidos.
	SettleCompetitionTickets(ctx context.Context, game domain.GameID) error

	// ResumeCompetition informa si existe un ticket en vuelo para la
	// competición tras una reconexión.
	ResumeCompetition(ctx context.Context, game domain.GameID) (bool, error)

	// ResetCompetitionTickets descarta los tickets registrados localmente.
	// Se usa cuando la reconciliación detecta un cambio de liga.
	ResetCompetitionTickets(ctx context.Context, game domain.GameID) error
}

// Archiver persiste el resumen de una liga completada.
type Archiver interface {
	StoreCompletedLeague(ctx context.Context, game domain.GameID, league domain.LeagueID, summary domain.LeagueSummary) error
}

// Notifier presenta el estado de la liga al usuario tras cada resultado.
type Notifier interface {
	NotifyStandings(ctx context.Context, game domain.GameID, round domain.Round, standings []domain.Standing) error
}
