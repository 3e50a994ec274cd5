// Package table mantiene la única fuente de verdad del estado por jornada de
// una liga: fixtures, resultados, stats y el mapeo jornada↔bloque.
package table

import (
	"sort"
	"sync"

	"github.com/alejandrodnm/vbet/internal/domain"
)

// LeagueTable acumula el estado de la temporada en curso. Una jornada está
// "satisfecha" cuando su fixture existe y todos sus eventos tienen resultado.
//
// Los resultados nunca se retractan: una vez satisfecha, una jornada no
// vuelve a aparecer en MissingRounds hasta el siguiente Reset.
type LeagueTable struct {
	mu        sync.RWMutex
	maxRounds domain.Round
	league    domain.LeagueID

	fixtures    map[domain.Round]domain.FixtureSet
	results     map[domain.Round]domain.ResultSet
	stats       map[domain.Round]map[domain.EventID]domain.EventStats
	wonIDs      map[domain.Round]map[domain.EventID][]int
	settlements map[domain.Round]map[domain.EventID]domain.Settlement

	// blocks↔rounds es un bimap: una jornada tiene un bloque vigente y un
	// bloque nunca se reasigna a otra jornada.
	blocks map[domain.BlockID]domain.Round
	rounds map[domain.Round]domain.BlockID
}

// New crea una tabla vacía para una liga de maxRounds jornadas.
func New(maxRounds domain.Round) *LeagueTable {
	t := &LeagueTable{maxRounds: maxRounds}
	t.clear()
	return t
}

func (t *LeagueTable) clear() {
	t.fixtures = make(map[domain.Round]domain.FixtureSet)
	t.results = make(map[domain.Round]domain.ResultSet)
	t.stats = make(map[domain.Round]map[domain.EventID]domain.EventStats)
	t.wonIDs = make(map[domain.Round]map[domain.EventID][]int)
	t.settlements = make(map[domain.Round]map[domain.EventID]domain.Settlement)
	t.blocks = make(map[domain.BlockID]domain.Round)
	t.rounds = make(map[domain.Round]domain.BlockID)
}

// Reset descarta todo el estado acumulado y empieza a seguir la liga dada.
// Se invoca cuando cambia la identidad de liga; nada de la temporada
// anterior sobrevive.
func (t *LeagueTable) Reset(league domain.LeagueID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.league = league
	t.clear()
}

// League devuelve la identidad de liga que la tabla sigue actualmente.
func (t *LeagueTable) League() domain.LeagueID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.league
}

// MaxRounds devuelve el número de jornadas de la liga.
func (t *LeagueTable) MaxRounds() domain.Round {
	return t.maxRounds
}

// HasFixtures informa si la jornada ya tiene fixture registrado. El engine
// la consulta antes de RecordFixtures: las jornadas pobladas no se
// sobreescriben.
func (t *LeagueTable) HasFixtures(round domain.Round) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.fixtures[round]
	return ok
}

// RecordFixtures registra el fixture de una jornada.
func (t *LeagueTable) RecordFixtures(round domain.Round, events domain.FixtureSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fixtures[round] = events
}

// RecordStats registra las estadísticas por evento de una jornada. Las
// respuestas de una liga distinta a la seguida se descartan.
func (t *LeagueTable) RecordStats(league domain.LeagueID, round domain.Round, stats map[domain.EventID]domain.EventStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if league != t.league {
		return
	}
	t.stats[round] = stats
}

// RecordBlock registra el mapeo bloque→jornada.
func (t *LeagueTable) RecordBlock(block domain.BlockID, round domain.Round) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.blocks[block] = round
	t.rounds[round] = block
}

// RecordResults registra el resultado de una jornada junto con su metadata
// de liquidación. Respuestas de una liga distinta a la seguida se descartan
// en silencio: defensa contra respuestas tardías de una liga anterior tras
// un reset. Un resultado sin fixture previo también se descarta.
func (t *LeagueTable) RecordResults(block domain.BlockID, league domain.LeagueID, round domain.Round,
	results domain.ResultSet, won map[domain.EventID][]int, settlements map[domain.EventID]domain.Settlement) {

	t.mu.Lock()
	defer t.mu.Unlock()
	if league != t.league {
		return
	}
	if _, ok := t.fixtures[round]; !ok {
		return
	}
	t.blocks[block] = round
	t.rounds[round] = block
	t.results[round] = results
	t.wonIDs[round] = won
	t.settlements[round] = settlements
}

// satisfied exige fixture presente y un resultado por cada evento del
// fixture. Caller debe tener el lock.
func (t *LeagueTable) satisfied(round domain.Round) bool {
	fixtures, ok := t.fixtures[round]
	if !ok {
		return false
	}
	results, ok := t.results[round]
	if !ok {
		return false
	}
	for eventID := range fixtures {
		if _, ok := results[eventID]; !ok {
			return false
		}
	}
	return true
}

// MissingRounds devuelve, en orden ascendente, las jornadas de [1, maxRounds]
// sin resultado satisfecho.
func (t *LeagueTable) MissingRounds() []domain.Round {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var missing []domain.Round
	for round := domain.Round(1); round <= t.maxRounds; round++ {
		if !t.satisfied(round) {
			missing = append(missing, round)
		}
	}
	return missing
}

// IsComplete informa si todas las jornadas tienen fixture y resultado.
func (t *LeagueTable) IsComplete() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for round := domain.Round(1); round <= t.maxRounds; round++ {
		if !t.satisfied(round) {
			return false
		}
	}
	return true
}

// WeeksReady devuelve el subconjunto de required que aún no está satisfecho,
// en orden ascendente.
func (t *LeagueTable) WeeksReady(required []domain.Round) []domain.Round {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var pending []domain.Round
	for _, round := range required {
		if round < 1 || round > t.maxRounds {
			continue
		}
		if !t.satisfied(round) {
			pending = append(pending, round)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })
	return pending
}

// BlockForRound devuelve el bloque vigente de una jornada; ok false si aún
// no se ha observado.
func (t *LeagueTable) BlockForRound(round domain.Round) (domain.BlockID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	block, ok := t.rounds[round]
	return block, ok
}

// RoundForBlock devuelve la jornada de un bloque; ok false si aún no se ha
// observado.
func (t *LeagueTable) RoundForBlock(block domain.BlockID) (domain.Round, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	round, ok := t.blocks[block]
	return round, ok
}

// MinKnownBlock devuelve el menor bloque mapeado. Es el ancla de backfill
// cuando no hay candidato mejor.
func (t *LeagueTable) MinKnownBlock() (domain.BlockID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var min domain.BlockID
	found := false
	for block := range t.blocks {
		if !found || block < min {
			min = block
			found = true
		}
	}
	return min, found
}

// MaxKnownBlock devuelve el mayor bloque mapeado. Ancla de la pasada de
// caching de eventos futuros.
func (t *LeagueTable) MaxKnownBlock() (domain.BlockID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var max domain.BlockID
	found := false
	for block := range t.blocks {
		if !found || block > max {
			max = block
			found = true
		}
	}
	return max, found
}

// RoundsWithoutBlocks devuelve las jornadas cuyo bloque no se ha observado
// todavía, en orden ascendente. Es el gap a nivel de bloques, no de
// resultados.
func (t *LeagueTable) RoundsWithoutBlocks() []domain.Round {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var missing []domain.Round
	for round := domain.Round(1); round <= t.maxRounds; round++ {
		if _, ok := t.rounds[round]; !ok {
			missing = append(missing, round)
		}
	}
	return missing
}

// FixturesFor devuelve el fixture de una jornada, o nil.
func (t *LeagueTable) FixturesFor(round domain.Round) domain.FixtureSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fixtures[round]
}

// ResultsFor devuelve los resultados de una jornada, o nil.
func (t *LeagueTable) ResultsFor(round domain.Round) domain.ResultSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.results[round]
}

// StatsFor devuelve las estadísticas de una jornada, o nil.
func (t *LeagueTable) StatsFor(round domain.Round) map[domain.EventID]domain.EventStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats[round]
}

// ValidationPools devuelve los pools de mercados ganados y liquidaciones por
// jornada, usados para validar tickets pendientes.
func (t *LeagueTable) ValidationPools() (map[domain.Round]map[domain.EventID][]int, map[domain.Round]map[domain.EventID]domain.Settlement) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.wonIDs, t.settlements
}
