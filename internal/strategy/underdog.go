package strategy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/vbet/internal/domain"
)

const underdogName = "underdog"

// Underdog apuesta cada jornada por la victoria del colista: el equipo que
// más cuota paga de forma sistemática. La pérdida de una jornada se persigue
// subiendo el stake de la siguiente hasta recuperar (escalera de
// recuperación), y una victoria vuelve al stake base.
type Underdog struct {
	view LeagueView
	cfg  Config

	mu      sync.Mutex
	team    string
	stake   float64
	deficit float64
	closing bool
}

// NewUnderdog crea la estrategia con la configuración dada.
func NewUnderdog(view LeagueView, cfg Config) Strategy {
	if cfg.Stake <= 0 {
		cfg.Stake = 100
	}
	if cfg.MinOdd <= 0 {
		cfg.MinOdd = 1.02
	}
	if cfg.FormSpan <= 0 {
		cfg.FormSpan = 3
	}
	return &Underdog{view: view, cfg: cfg, stake: cfg.Stake}
}

// Name implementa Strategy.
func (u *Underdog) Name() string { return underdogName }

// OnEvent implementa Strategy. Busca el partido del colista en la jornada en
// curso y produce un ticket simple a su victoria.
func (u *Underdog) OnEvent(_ context.Context) ([]*domain.Ticket, error) {
	u.mu.Lock()
	team := u.team
	stake := u.stake
	u.mu.Unlock()
	if team == "" {
		return nil, nil
	}

	round := u.view.CurrentRound()
	fixtures := u.view.FixturesFor(round)
	if fixtures == nil {
		return nil, nil
	}

	var pick domain.Fixture
	oddID := 0
	for _, fx := range fixtures {
		switch team {
		case fx.Home:
			pick, oddID = fx, domain.OddHomeWin
		case fx.Away:
			pick, oddID = fx, domain.OddAwayWin
		default:
			continue
		}
		break
	}
	if oddID == 0 {
		return nil, nil
	}

	info, ok := domain.MarketInfo(oddID)
	if !ok || info.Index >= len(pick.Odds) {
		return nil, nil
	}
	oddValue := pick.Odds[info.Index]
	if oddValue < u.cfg.MinOdd {
		return nil, nil
	}

	ticket := domain.NewTicket(u.view.GameID(), underdogName)
	event := domain.TicketEvent{
		EventID:      pick.EventID,
		League:       u.view.League(),
		Round:        round,
		EventNdx:     pick.Index,
		Participants: pick.Participants,
		Bets: []domain.Bet{{
			OddID:    oddID,
			MarketID: info.MarketID,
			OddName:  info.Name,
			OddValue: oddValue,
			Stake:    stake,
			Status:   domain.TicketOpen,
		}},
	}
	ticket.AddEvent(event)
	ticket.Stake = stake
	ticket.MinWinning = stake * oddValue
	ticket.MaxWinning = stake * oddValue
	ticket.Grouping = 1
	ticket.WinningCount = 1
	ticket.SystemCount = 1

	slog.Info("underdog ticket",
		"game", u.view.GameID(),
		"round", round,
		"team", team,
		"odd", oddValue,
		"stake", stake,
	)
	return []*domain.Ticket{ticket}, nil
}

// OnResult implementa Strategy. Reelige al colista con la clasificación
// actualizada.
func (u *Underdog) OnResult(_ context.Context) error {
	standings := u.view.Standings()
	if len(standings) == 0 {
		return nil
	}
	u.mu.Lock()
	u.team = standings[len(standings)-1].Team
	u.mu.Unlock()
	return nil
}

// RequiredRounds implementa Strategy: necesita las últimas FormSpan jornadas
// para que la clasificación sobre la que elige al colista esté al día.
func (u *Underdog) RequiredRounds() []domain.Round {
	current := u.view.CurrentRound()
	var rounds []domain.Round
	for r := current - domain.Round(u.cfg.FormSpan); r < current; r++ {
		if r >= 1 {
			rounds = append(rounds, r)
		}
	}
	return rounds
}

// OnTicketSettled implementa Strategy. Ajusta la escalera de recuperación.
func (u *Underdog) OnTicketSettled(_ context.Context, ticket *domain.Ticket) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch ticket.Status {
	case domain.TicketWon:
		u.deficit = 0
		u.stake = u.cfg.Stake
	case domain.TicketLost:
		u.deficit += ticket.Stake
		u.stake = u.cfg.Stake + u.deficit
	}
	return nil
}

// Shutdown implementa Strategy. La estrategia no tiene trabajo en vuelo
// propio; marca el cierre y termina.
func (u *Underdog) Shutdown(_ context.Context) error {
	u.mu.Lock()
	u.closing = true
	u.mu.Unlock()
	return nil
}
