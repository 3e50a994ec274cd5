package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/table"
)

func makeFixtures(base domain.EventID, pairs ...[2]string) domain.FixtureSet {
	fixtures := make(domain.FixtureSet, len(pairs))
	for i, p := range pairs {
		id := base + domain.EventID(i)
		fixtures[id] = domain.Fixture{
			EventID: id,
			Home:    p[0],
			Away:    p[1],
			Odds:    []float64{2.0, 3.0, 4.0},
			Index:   i,
		}
	}
	return fixtures
}

func makeResults(fixtures domain.FixtureSet, home, away int) domain.ResultSet {
	results := make(domain.ResultSet, len(fixtures))
	for id, fx := range fixtures {
		results[id] = domain.Result{
			EventID: id,
			Home:    fx.Home,
			Away:    fx.Away,
			Score:   domain.Score{Home: home, Away: away},
		}
	}
	return results
}

func recordRound(t *table.LeagueTable, league domain.LeagueID, block domain.BlockID, round domain.Round, fixtures domain.FixtureSet, home, away int) {
	t.RecordFixtures(round, fixtures)
	t.RecordResults(block, league, round, makeResults(fixtures, home, away), nil, nil)
}

func TestLeagueTable_MissingRoundsConverge(t *testing.T) {
	lt := table.New(3)
	lt.Reset(10)

	assert.Equal(t, []domain.Round{1, 2, 3}, lt.MissingRounds())
	assert.False(t, lt.IsComplete())

	fx1 := makeFixtures(100, [2]string{"ARS", "CHE"})
	recordRound(lt, 10, 501, 1, fx1, 2, 0)
	assert.Equal(t, []domain.Round{2, 3}, lt.MissingRounds())

	fx3 := makeFixtures(300, [2]string{"LIV", "MUN"})
	recordRound(lt, 10, 503, 3, fx3, 1, 1)
	assert.Equal(t, []domain.Round{2}, lt.MissingRounds())

	fx2 := makeFixtures(200, [2]string{"TOT", "MCI"})
	recordRound(lt, 10, 502, 2, fx2, 0, 3)
	assert.Empty(t, lt.MissingRounds())
	assert.True(t, lt.IsComplete())
}

func TestLeagueTable_FixtureWithoutResultStaysMissing(t *testing.T) {
	lt := table.New(2)
	lt.Reset(10)

	lt.RecordFixtures(1, makeFixtures(100, [2]string{"ARS", "CHE"}))
	assert.Equal(t, []domain.Round{1, 2}, lt.MissingRounds())
}

func TestLeagueTable_PartialResultStaysMissing(t *testing.T) {
	lt := table.New(1)
	lt.Reset(10)

	fx := makeFixtures(100, [2]string{"ARS", "CHE"}, [2]string{"LIV", "MUN"})
	lt.RecordFixtures(1, fx)

	// Solo uno de los dos eventos tiene resultado.
	partial := domain.ResultSet{
		100: {EventID: 100, Home: "ARS", Away: "CHE", Score: domain.Score{Home: 1, Away: 0}},
	}
	lt.RecordResults(501, 10, 1, partial, nil, nil)
	assert.Equal(t, []domain.Round{1}, lt.MissingRounds())
}

func TestLeagueTable_ForeignLeagueDropped(t *testing.T) {
	lt := table.New(1)
	lt.Reset(10)

	fx := makeFixtures(100, [2]string{"ARS", "CHE"})
	lt.RecordFixtures(1, fx)
	lt.RecordResults(501, 99, 1, makeResults(fx, 1, 0), nil, nil)

	assert.Nil(t, lt.ResultsFor(1))
	assert.Equal(t, []domain.Round{1}, lt.MissingRounds())
}

func TestLeagueTable_ResultWithoutFixtureDropped(t *testing.T) {
	lt := table.New(1)
	lt.Reset(10)

	results := domain.ResultSet{100: {EventID: 100, Home: "ARS", Away: "CHE"}}
	lt.RecordResults(501, 10, 1, results, nil, nil)

	assert.Nil(t, lt.ResultsFor(1))
	_, ok := lt.BlockForRound(1)
	assert.False(t, ok)
}

func TestLeagueTable_ResetDropsEverything(t *testing.T) {
	lt := table.New(2)
	lt.Reset(10)

	fx := makeFixtures(100, [2]string{"ARS", "CHE"})
	recordRound(lt, 10, 501, 1, fx, 1, 0)
	lt.RecordStats(10, 1, map[domain.EventID]domain.EventStats{100: {"possession": 60}})

	lt.Reset(11)
	assert.Equal(t, domain.LeagueID(11), lt.League())
	assert.Nil(t, lt.FixturesFor(1))
	assert.Nil(t, lt.ResultsFor(1))
	assert.Nil(t, lt.StatsFor(1))
	assert.Equal(t, []domain.Round{1, 2}, lt.MissingRounds())

	_, ok := lt.MinKnownBlock()
	assert.False(t, ok)
}

func TestLeagueTable_BlockRoundBimap(t *testing.T) {
	lt := table.New(5)
	lt.Reset(10)

	lt.RecordBlock(501, 1)
	lt.RecordBlock(502, 2)

	round, ok := lt.RoundForBlock(501)
	require.True(t, ok)
	assert.Equal(t, domain.Round(1), round)

	block, ok := lt.BlockForRound(2)
	require.True(t, ok)
	assert.Equal(t, domain.BlockID(502), block)

	_, ok = lt.RoundForBlock(999)
	assert.False(t, ok)

	min, ok := lt.MinKnownBlock()
	require.True(t, ok)
	assert.Equal(t, domain.BlockID(501), min)

	max, ok := lt.MaxKnownBlock()
	require.True(t, ok)
	assert.Equal(t, domain.BlockID(502), max)

	assert.Equal(t, []domain.Round{3, 4, 5}, lt.RoundsWithoutBlocks())
}

func TestLeagueTable_WeeksReady(t *testing.T) {
	lt := table.New(5)
	lt.Reset(10)

	fx := makeFixtures(100, [2]string{"ARS", "CHE"})
	recordRound(lt, 10, 501, 2, fx, 1, 0)

	// Fuera de rango y satisfechas se filtran; el resto sale ordenado.
	pending := lt.WeeksReady([]domain.Round{4, 2, 0, 3, 9})
	assert.Equal(t, []domain.Round{3, 4}, pending)

	assert.Empty(t, lt.WeeksReady(nil))
}

func TestLeagueTable_Standings(t *testing.T) {
	lt := table.New(2)
	lt.Reset(10)

	fx1 := domain.FixtureSet{
		100: {EventID: 100, Home: "ARS", Away: "CHE"},
		101: {EventID: 101, Home: "LIV", Away: "MUN"},
	}
	lt.RecordFixtures(1, fx1)
	lt.RecordResults(501, 10, 1, domain.ResultSet{
		100: {EventID: 100, Home: "ARS", Away: "CHE", Score: domain.Score{Home: 2, Away: 0}},
		101: {EventID: 101, Home: "LIV", Away: "MUN", Score: domain.Score{Home: 1, Away: 1}},
	}, nil, nil)

	fx2 := domain.FixtureSet{
		200: {EventID: 200, Home: "CHE", Away: "LIV"},
	}
	lt.RecordFixtures(2, fx2)
	lt.RecordResults(502, 10, 2, domain.ResultSet{
		200: {EventID: 200, Home: "CHE", Away: "LIV", Score: domain.Score{Home: 0, Away: 3}},
	}, nil, nil)

	standings := lt.Standings()
	require.Len(t, standings, 4)

	// LIV 4 pts, ARS 3, MUN 1, CHE 0.
	assert.Equal(t, "LIV", standings[0].Team)
	assert.Equal(t, 4, standings[0].Points)
	assert.Equal(t, "ARS", standings[1].Team)
	assert.Equal(t, "MUN", standings[2].Team)
	assert.Equal(t, "CHE", standings[3].Team)
	assert.Equal(t, 0, standings[3].Points)
	assert.Equal(t, 2, standings[3].Played)
	assert.Equal(t, 5, standings[3].GoalsAgainst)
}

func TestLeagueTable_ValidationPools(t *testing.T) {
	lt := table.New(1)
	lt.Reset(10)

	fx := makeFixtures(100, [2]string{"ARS", "CHE"})
	lt.RecordFixtures(1, fx)
	lt.RecordResults(501, 10, 1, makeResults(fx, 1, 0),
		map[domain.EventID][]int{100: {210, 17}},
		map[domain.EventID]domain.Settlement{100: {WonMarkets: []int{210, 17}}},
	)

	won, settlements := lt.ValidationPools()
	require.Contains(t, won, domain.Round(1))
	assert.Equal(t, []int{210, 17}, won[1][100])
	assert.Equal(t, []int{210, 17}, settlements[1][100].WonMarkets)
}
