package domain

import "github.com/google/uuid"

// Estados de un ticket a lo largo de su vida.
const (
	TicketOpen    = "open"
	TicketPlaced  = "placed"
	TicketWon     = "won"
	TicketLost    = "lost"
	TicketVoided  = "voided"
	TicketSettled = "settled"
)

// Bet es una apuesta individual dentro de un evento de ticket.
type Bet struct {
	OddID      int
	MarketID   int
	OddName    string
	OddValue   float64
	Stake      float64
	Status     string
	ProfitType string
}

// TicketEvent es un evento (partido) dentro de un ticket, con sus apuestas.
type TicketEvent struct {
	EventID      EventID
	GameID       GameID
	League       LeagueID
	Round        Round
	EventNdx     int
	EventTime    *int64
	ExtID        int64
	IsBanker     bool
	FinalOutcome bool
	GameType     string
	Participants []Participant
	Bets         []Bet
}

// Ticket es una apuesta candidata producida por una estrategia. Key es un
// identificador propio, independiente del id que asigne la plataforma al
// registrarlo.
type Ticket struct {
	Key          string
	GameID       GameID
	Strategy     string
	Events       []TicketEvent
	SystemBets   []int
	Mode         string
	Stake        float64
	MinWinning   float64
	MaxWinning   float64
	TotalWon     float64
	Grouping     int
	WinningCount int
	SystemCount  int
	Status       string
}

// NewTicket crea un ticket vacío para una estrategia.
func NewTicket(game GameID, strategy string) *Ticket {
	return &Ticket{
		Key:      uuid.NewString(),
		GameID:   game,
		Strategy: strategy,
		Mode:     "SINGLE",
		Status:   TicketOpen,
	}
}

// AddEvent añade un evento al ticket.
func (t *Ticket) AddEvent(ev TicketEvent) {
	ev.GameID = t.GameID
	t.Events = append(t.Events, ev)
}

// Content serializa el ticket a la forma que espera el feed al registrarlo.
func (t *Ticket) Content() map[string]any {
	events := make([]map[string]any, 0, len(t.Events))
	for _, ev := range t.Events {
		bets := make([]map[string]any, 0, len(ev.Bets))
		for _, b := range ev.Bets {
			bets = append(bets, map[string]any{
				"marketId":   b.MarketID,
				"oddId":      b.OddID,
				"oddName":    b.OddName,
				"oddValue":   b.OddValue,
				"status":     b.Status,
				"profitType": b.ProfitType,
				"stake":      b.Stake,
			})
		}
		events = append(events, map[string]any{
			"eventId":      ev.EventID,
			"gameType":     map[string]any{"val": ev.GameType},
			"playlistId":   ev.GameID,
			"eventTime":    ev.EventTime,
			"extId":        ev.ExtID,
			"isBanker":     ev.IsBanker,
			"finalOutcome": ev.FinalOutcome,
			"bets":         bets,
			"data": map[string]any{
				"classType":    "FootballTicketEventData",
				"participants": ev.Participants,
				"leagueId":     ev.League,
				"matchDay":     ev.Round,
				"eventNdx":     ev.EventNdx,
			},
		})
	}
	return map[string]any{
		"events":     events,
		"systemBets": t.SystemBets,
		"ticketType": t.Mode,
	}
}
