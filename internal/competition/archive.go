package competition

import (
	"context"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ports"
)

// archiveLeague persiste el resumen de la temporada al llegar la última
// jornada, solo si la tabla está completa y consistente.
func (c *Competition) archiveLeague(ctx context.Context) {
	if c.archiver == nil || !c.table.IsComplete() {
		return
	}

	summary := make(domain.LeagueSummary, int(c.cfg.MaxRounds))
	for week := domain.Round(1); week <= c.cfg.MaxRounds; week++ {
		fixtures := c.table.FixturesFor(week)
		results := c.table.ResultsFor(week)
		stats := c.table.StatsFor(week)

		rs := make(domain.RoundSummary, len(fixtures))
		for eventID, fx := range fixtures {
			res, ok := results[eventID]
			if !ok {
				continue
			}
			rs[eventID] = domain.EventSummary{
				TeamA: fx.Home,
				TeamB: fx.Away,
				Odds:  fx.Odds,
				Stats: stats[eventID],
				Score: [2]int{res.Score.Home, res.Score.Away},
			}
		}
		summary[week] = rs
	}

	if err := c.archiver.StoreCompletedLeague(ctx, c.cfg.Game, c.league, summary); err != nil {
		c.log.Warn("league archive failed", "league", c.league, "err", err)
		return
	}
	c.log.Info("league archived", "league", c.league)
}

// onStats registra las estadísticas que llegan por el recurso stats. Las
// stats normalmente viajan embebidas en los fixtures; esta ruta cubre los
// bloques pedidos explícitamente.
func (c *Competition) onStats(_ context.Context, resp ports.Response) error {
	_, err := c.ledger.Resolve(domain.ResourceStats, resp.RequestID)
	if err != nil {
		return err
	}

	env, verr := singleBlock(resp)
	if verr != nil {
		c.log.Warn("invalid stats response")
		return nil
	}
	week, ok := c.table.RoundForBlock(env.BlockID)
	if !ok {
		week = env.Data.MatchDay
	}
	stats := make(map[domain.EventID]domain.EventStats, len(env.Events))
	for _, ev := range env.Events {
		if ev.Data.Stats != nil {
			stats[ev.EventID] = ev.Data.Stats
		}
	}
	c.table.RecordStats(env.Data.LeagueID, week, stats)
	return nil
}
