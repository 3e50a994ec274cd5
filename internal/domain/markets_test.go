package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreFromWonMarkets_KnownIDs(t *testing.T) {
	cases := []struct {
		id    string
		score Score
	}{
		{"15", Score{0, 0}},
		{"16", Score{0, 1}},
		{"17", Score{1, 0}},
		{"18", Score{0, 2}},
		{"42", Score{6, 0}},
	}
	for _, tc := range cases {
		score, ok := ScoreFromWonMarkets([]string{tc.id})
		require.True(t, ok, "id %s", tc.id)
		assert.Equal(t, tc.score, score, "id %s", tc.id)
	}
}

func TestScoreFromWonMarkets_IgnoresOtherMarkets(t *testing.T) {
	// La liquidación mezcla 1X2, over/under y el marcador exacto; solo el
	// rango [15, 42] determina el marcador.
	score, ok := ScoreFromWonMarkets([]string{"210", "7", "19"})
	require.True(t, ok)
	assert.Equal(t, Score{1, 1}, score)
}

func TestScoreFromWonMarkets_NoCorrectScore(t *testing.T) {
	_, ok := ScoreFromWonMarkets([]string{"210", "notanumber"})
	assert.False(t, ok)

	_, ok = ScoreFromWonMarkets(nil)
	assert.False(t, ok)
}

func TestWonMarketIDs_DropsGarbage(t *testing.T) {
	ids := WonMarketIDs([]string{"210", "x", "15"})
	assert.Equal(t, []int{210, 15}, ids)
}

func TestMarketInfo_Catalog(t *testing.T) {
	home, ok := MarketInfo(OddHomeWin)
	require.True(t, ok)
	assert.Equal(t, MarketMatchWinner, home.MarketID)
	assert.Equal(t, "1", home.Name)
	assert.Equal(t, 0, home.Index)

	away, ok := MarketInfo(OddAwayWin)
	require.True(t, ok)
	assert.Equal(t, "2", away.Name)
	assert.Equal(t, 2, away.Index)

	_, ok = MarketInfo(999)
	assert.False(t, ok)
}

func TestBatch_Single(t *testing.T) {
	_, err := Batch{}.Single()
	assert.ErrorIs(t, err, ErrInvalidBatch)

	_, err = Batch{{BlockID: 0}}.Single()
	assert.ErrorIs(t, err, ErrInvalidBatch)

	env, err := Batch{{BlockID: 7, Data: BlockData{LeagueID: 1, MatchDay: 3}}}.Single()
	require.NoError(t, err)
	assert.Equal(t, BlockID(7), env.BlockID)
	assert.Equal(t, Round(3), env.Data.MatchDay)
}

func TestTicket_Content(t *testing.T) {
	ticket := NewTicket(41, "underdog")
	require.NotEmpty(t, ticket.Key)
	assert.Equal(t, TicketOpen, ticket.Status)

	ticket.AddEvent(TicketEvent{
		EventID: 100,
		League:  9,
		Round:   4,
		Bets:    []Bet{{OddID: OddHomeWin, MarketID: MarketMatchWinner, OddName: "1", OddValue: 5.2, Stake: 10}},
	})

	content := ticket.Content()
	events, ok := content["events"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, events, 1)

	data, ok := events[0]["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "FootballTicketEventData", data["classType"])
	assert.Equal(t, LeagueID(9), data["leagueId"])
	assert.Equal(t, Round(4), data["matchDay"])

	// AddEvent propaga el game del ticket al evento.
	assert.Equal(t, GameID(41), ticket.Events[0].GameID)
}
