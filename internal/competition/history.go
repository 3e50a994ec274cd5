package competition

import (
	"context"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ports"
)

// onHistory procesa un lote histórico. El contador de iteraciones de
// backfill actúa solo como tripwire: superado el máximo se abandona el
// backfill y se fuerza la vuelta a AwaitingEvents, descartando la petición
// en vuelo.
func (c *Competition) onHistory(ctx context.Context, resp ports.Response) error {
	if c.backfillIters > c.cfg.MaxBackfillIterations {
		c.log.Warn("backfill exhausted", "league", c.league, "iterations", c.backfillIters)
		c.latchAutoSkip(domain.ResourceHistory)
		return nil
	}

	entry, err := c.ledger.Resolve(domain.ResourceHistory, resp.RequestID)
	if err != nil {
		return err
	}

	if !resp.Valid {
		c.log.Warn("invalid history response",
			"block", entry.Payload.BlockID,
			"n", entry.Payload.N,
			"league", c.league,
			"retry", entry.Retry,
		)
		if entry.Retry >= c.cfg.MaxResultRetries {
			c.latchAutoSkip(domain.ResourceHistory)
			return nil
		}
		if !c.sleep(ctx, c.cfg.ResultsRetryDelay) {
			return nil
		}
		c.nextHistory(entry.Payload.BlockID, entry.Payload.N, entry.Retry+1)
		return nil
	}

	return c.processHistory(ctx, resp.Body)
}

// processHistory incorpora cada bloque histórico de la liga en curso (las
// entradas de otras ligas se descartan: el feed las intercala) y continúa o
// termina el backfill según el modo.
func (c *Competition) processHistory(ctx context.Context, batch domain.Batch) error {
	for _, env := range batch {
		if env.Data.LeagueID != c.league {
			continue
		}
		week := env.Data.MatchDay
		c.log.Debug("history block", "block", env.BlockID, "league", env.Data.LeagueID, "week", week)
		c.table.RecordBlock(env.BlockID, week)

		fixtures, stats := c.decodeFixtures(env)
		if !c.table.HasFixtures(week) {
			c.table.RecordFixtures(week, fixtures)
			c.table.RecordStats(c.league, week, stats)
		}

		if c.mode == domain.ModeBackfillSingle {
			results, won, settlements := c.decodeResults(env)
			if len(results) > 0 {
				c.table.RecordResults(env.BlockID, c.league, week, results, won, settlements)
			}
		}
	}

	switch c.mode {
	case domain.ModeBackfillSingle:
		missing := c.table.MissingRounds()
		if len(missing) > 0 {
			c.backfillIters++
			c.nextHistory(c.backfillAnchor(missing), historyPageBack, 0)
			return nil
		}
		c.mode = domain.ModeNormal
		c.log.Debug("history completed", "league", c.league)
		return c.dispatch(ctx)

	case domain.ModeBackfillFuture:
		if len(c.table.RoundsWithoutBlocks()) > 0 {
			if anchor, ok := c.table.MaxKnownBlock(); ok {
				c.nextHistory(anchor, historyPageForward, 0)
				return nil
			}
			// Sin bloques conocidos no hay ancla mejor que el actual.
			c.nextHistory(c.blockID, historyPageForward, 0)
			return nil
		}
		c.mode = domain.ModeNormal
		c.cached = true
		c.log.Debug("all events cached", "league", c.league)
		c.requiredRounds = c.computeRequiredRounds()
		return c.dispatch(ctx)
	}
	return nil
}

// backfillAnchor elige el bloque ancla del siguiente fetch histórico. La
// política tiene dos ramas asimétricas que se preservan tal cual del
// comportamiento observado contra el feed real: con la tabla ya cacheada se
// ancla en el bloque de la jornada perdida más reciente; a medio backfill,
// en el mínimo bloque conocido, con el bloque actual como último recurso.
func (c *Competition) backfillAnchor(missing []domain.Round) domain.BlockID {
	if c.cached {
		latest := missing[0]
		for _, w := range missing[1:] {
			if w > latest {
				latest = w
			}
		}
		if block, ok := c.table.BlockForRound(latest); ok {
			return block
		}
	}
	if block, ok := c.table.MinKnownBlock(); ok {
		return block
	}
	return c.blockID
}
