package table

import (
	"sort"

	"github.com/alejandrodnm/vbet/internal/domain"
)

// Standings calcula la clasificación acumulada con los resultados conocidos
// hasta ahora: 3 puntos por victoria, 1 por empate. Orden: puntos,
// diferencia de goles, goles a favor, nombre.
func (t *LeagueTable) Standings() []domain.Standing {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make(map[string]*domain.Standing)
	row := func(team string) *domain.Standing {
		if r, ok := rows[team]; ok {
			return r
		}
		r := &domain.Standing{Team: team}
		rows[team] = r
		return r
	}

	for round := domain.Round(1); round <= t.maxRounds; round++ {
		results, ok := t.results[round]
		if !ok {
			continue
		}
		for _, res := range results {
			home, away := row(res.Home), row(res.Away)
			home.Played++
			away.Played++
			home.GoalsFor += res.Score.Home
			home.GoalsAgainst += res.Score.Away
			away.GoalsFor += res.Score.Away
			away.GoalsAgainst += res.Score.Home
			switch {
			case res.Score.Home > res.Score.Away:
				home.Won++
				home.Points += 3
				away.Lost++
			case res.Score.Home < res.Score.Away:
				away.Won++
				away.Points += 3
				home.Lost++
			default:
				home.Drawn++
				away.Drawn++
				home.Points++
				away.Points++
			}
		}
	}

	standings := make([]domain.Standing, 0, len(rows))
	for _, r := range rows {
		standings = append(standings, *r)
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		gdA, gdB := a.GoalsFor-a.GoalsAgainst, b.GoalsFor-b.GoalsAgainst
		if gdA != gdB {
			return gdA > gdB
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})
	return standings
}
