package strategy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/strategy"
)

// fakeView es una vista fija de liga para los tests.
type fakeView struct {
	round     domain.Round
	fixtures  map[domain.Round]domain.FixtureSet
	standings []domain.Standing
}

func (v *fakeView) GameID() domain.GameID { return 41 }

func (v *fakeView) League() domain.LeagueID { return 9 }

func (v *fakeView) CurrentRound() domain.Round { return v.round }

func (v *fakeView) MaxRounds() domain.Round { return 38 }
func (v *fakeView) FixturesFor(round domain.Round) domain.FixtureSet {
	return v.fixtures[round]
}
func (v *fakeView) Standings() []domain.Standing { return v.standings }

func makeView() *fakeView {
	return &fakeView{
		round: 5,
		fixtures: map[domain.Round]domain.FixtureSet{
			5: {
				100: {EventID: 100, Home: "ARS", Away: "WOL", Odds: []float64{1.5, 4.0, 6.5}, Index: 0},
				101: {EventID: 101, Home: "LIV", Away: "MUN", Odds: []float64{2.0, 3.2, 3.8}, Index: 1},
			},
		},
		standings: []domain.Standing{
			{Team: "ARS", Points: 12},
			{Team: "LIV", Points: 9},
			{Team: "MUN", Points: 4},
			{Team: "WOL", Points: 1},
		},
	}
}

func TestUnderdog_NoBetBeforeFirstResult(t *testing.T) {
	u := strategy.NewUnderdog(makeView(), strategy.Config{Stake: 10})

	tickets, err := u.OnEvent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestUnderdog_BetsOnBottomTeam(t *testing.T) {
	view := makeView()
	u := strategy.NewUnderdog(view, strategy.Config{Stake: 10})

	require.NoError(t, u.OnResult(context.Background()))

	tickets, err := u.OnEvent(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	ticket := tickets[0]
	assert.Equal(t, domain.GameID(41), ticket.GameID)
	assert.Equal(t, "underdog", ticket.Strategy)
	require.Len(t, ticket.Events, 1)

	ev := ticket.Events[0]
	assert.Equal(t, domain.EventID(100), ev.EventID)
	require.Len(t, ev.Bets, 1)

	// WOL juega fuera: cuota de visitante.
	bet := ev.Bets[0]
	assert.Equal(t, domain.OddAwayWin, bet.OddID)
	assert.InDelta(t, 6.5, bet.OddValue, 0.001)
	assert.InDelta(t, 10, bet.Stake, 0.001)
	assert.InDelta(t, 65, ticket.MaxWinning, 0.001)
}

func TestUnderdog_NoFixtureForTeam(t *testing.T) {
	view := makeView()
	view.standings[len(view.standings)-1] = domain.Standing{Team: "NEW", Points: 0}
	u := strategy.NewUnderdog(view, strategy.Config{Stake: 10})

	require.NoError(t, u.OnResult(context.Background()))

	tickets, err := u.OnEvent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestUnderdog_MinOddFilter(t *testing.T) {
	view := makeView()
	view.fixtures[5][100] = domain.Fixture{
		EventID: 100, Home: "ARS", Away: "WOL", Odds: []float64{1.5, 4.0, 1.01}, Index: 0,
	}
	u := strategy.NewUnderdog(view, strategy.Config{Stake: 10, MinOdd: 1.02})

	require.NoError(t, u.OnResult(context.Background()))

	tickets, err := u.OnEvent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestUnderdog_RecoveryLadder(t *testing.T) {
	view := makeView()
	u := strategy.NewUnderdog(view, strategy.Config{Stake: 10})
	require.NoError(t, u.OnResult(context.Background()))

	lost := &domain.Ticket{Status: domain.TicketLost, Stake: 10}
	require.NoError(t, u.OnTicketSettled(context.Background(), lost))

	tickets, err := u.OnEvent(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	// Stake base más el déficit acumulado.
	assert.InDelta(t, 20, tickets[0].Stake, 0.001)

	lost = &domain.Ticket{Status: domain.TicketLost, Stake: 20}
	require.NoError(t, u.OnTicketSettled(context.Background(), lost))

	tickets, err = u.OnEvent(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.InDelta(t, 40, tickets[0].Stake, 0.001)

	won := &domain.Ticket{Status: domain.TicketWon, Stake: 40, TotalWon: 260}
	require.NoError(t, u.OnTicketSettled(context.Background(), won))

	tickets, err = u.OnEvent(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.InDelta(t, 10, tickets[0].Stake, 0.001)
}

func TestUnderdog_RequiredRounds(t *testing.T) {
	view := makeView()
	u := strategy.NewUnderdog(view, strategy.Config{Stake: 10, FormSpan: 3})

	assert.Equal(t, []domain.Round{2, 3, 4}, u.RequiredRounds())

	// Al principio de temporada no pide jornadas inexistentes.
	view.round = 2
	assert.Equal(t, []domain.Round{1}, u.RequiredRounds())

	view.round = 1
	assert.Empty(t, u.RequiredRounds())
}

func TestRegistry_BuildUnknown(t *testing.T) {
	reg := strategy.NewRegistry()
	reg.Register("underdog", strategy.NewUnderdog)

	s, err := reg.Build("underdog", makeView(), strategy.Config{})
	require.NoError(t, err)
	assert.Equal(t, "underdog", s.Name())

	_, err = reg.Build("martingale", makeView(), strategy.Config{})
	assert.Error(t, err)
}
