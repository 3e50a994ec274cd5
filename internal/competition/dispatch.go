package competition

import (
	"context"
	"sort"

	"github.com/alejandrodnm/vbet/internal/domain"
)

// dispatch es la cola compartida de los caminos de fixtures y backfill.
// Antes de consultar a las estrategias comprueba dos huecos, en orden: (1)
// jornadas cuyo bloque nunca se ha observado, que pasan a cachear eventos
// futuros; (2) jornadas que las estrategias aún requieren, que pasan al
// prefetch secuencial. Solo sin huecos pendientes se piden tickets.
func (c *Competition) dispatch(ctx context.Context) error {
	if missing := c.table.RoundsWithoutBlocks(); len(missing) > 0 {
		c.mode = domain.ModeBackfillFuture
		c.cached = false
		c.log.Debug("caching league", "league", c.league)
		c.nextHistory(c.blockID, historyPageForward, 0)
		return nil
	}

	if pending := c.table.WeeksReady(c.requiredRounds); c.cfg.FutureResults && len(pending) > 0 {
		c.mode = domain.ModePrefetchRequired
		// Emisor secuencial aparte; las respuestas las sigue procesando en
		// orden el loop de Run.
		go c.prefetchRounds(ctx, pending)
		return nil
	}

	c.backfillIters = 0
	var pool []*domain.Ticket
	for _, s := range c.strategies {
		tickets, err := s.OnEvent(ctx)
		if err != nil {
			c.log.Warn("strategy OnEvent failed", "strategy", s.Name(), "err", err)
			continue
		}
		pool = append(pool, tickets...)
	}

	if len(pool) > 0 {
		c.phase = domain.PhaseAwaitingTickets
		c.log.Debug("processing tickets", "count", len(pool))
		return c.processTickets(ctx, pool)
	}

	c.phase = domain.PhaseAwaitingResults
	c.log.Debug("no tickets available")
	c.requestCurrentResults(ctx)
	return nil
}

// prefetchRounds emite una petición de results por jornada requerida, de la
// más reciente a la más antigua, con un delay fijo entre peticiones.
func (c *Competition) prefetchRounds(ctx context.Context, rounds []domain.Round) {
	sort.Slice(rounds, func(i, j int) bool { return rounds[i] > rounds[j] })
	for _, week := range rounds {
		block, ok := c.table.BlockForRound(week)
		if !ok {
			continue
		}
		if !c.sleep(ctx, c.cfg.PrefetchDelay) {
			return
		}
		c.nextResults(block, 1, 0)
	}
}

// computeRequiredRounds reúne las jornadas que alguna estrategia activa aún
// necesita, sin duplicados y en orden ascendente.
func (c *Competition) computeRequiredRounds() []domain.Round {
	seen := make(map[domain.Round]struct{})
	var rounds []domain.Round
	for _, s := range c.strategies {
		for _, w := range s.RequiredRounds() {
			if w < 1 || w > c.cfg.MaxRounds {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			rounds = append(rounds, w)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i] < rounds[j] })
	return rounds
}

// processTickets registra el pool de tickets en el gestor externo y señala
// la colocación completa; OnTicketsComplete retoma el ciclo en el loop de Run.
func (c *Competition) processTickets(ctx context.Context, pool []*domain.Ticket) error {
	c.activeTickets = c.activeTickets[:0]
	for _, t := range pool {
		if err := c.tickets.RegisterTicket(ctx, t); err != nil {
			c.log.Warn("ticket registration failed", "ticket", t.Key, "err", err)
			continue
		}
		c.activeTickets = append(c.activeTickets, t.Key)
	}
	c.log.Debug("processing tickets complete", "count", len(c.activeTickets))
	c.OnTicketsComplete()
	return nil
}
