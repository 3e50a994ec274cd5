package competition

import (
	"context"
	"strconv"
	"strings"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ports"
)

// onResults procesa una respuesta de results. Las respuestas malformadas se
// reintentan con delay fijo hasta MaxResultRetries; después la jornada se
// abandona con auto-skip en vez de atascar el ciclo.
func (c *Competition) onResults(ctx context.Context, resp ports.Response) error {
	entry, err := c.ledger.Resolve(domain.ResourceResults, resp.RequestID)
	if err != nil {
		return err
	}

	env, verr := singleBlock(resp)
	if verr != nil {
		c.log.Warn("invalid results response",
			"block", entry.Payload.BlockID,
			"n", entry.Payload.N,
			"league", c.league,
			"retry", entry.Retry,
		)
		if entry.Retry >= c.cfg.MaxResultRetries {
			c.latchAutoSkip(domain.ResourceResults)
			return nil
		}
		if !c.sleep(ctx, c.cfg.ResultsRetryDelay) {
			return nil
		}
		c.nextResults(entry.Payload.BlockID, entry.Payload.N, entry.Retry+1)
		return nil
	}

	c.processResults(ctx, env)
	return nil
}

// processResults registra el resultado de una jornada y decide el siguiente
// paso según el modo: salida de catch-up/prefetch, o el camino normal con
// notificación a estrategias, liquidación de tickets y avance de jornada.
func (c *Competition) processResults(ctx context.Context, env domain.BlockEnvelope) {
	week, ok := c.table.RoundForBlock(env.BlockID)
	if !ok {
		// El bloque en curso aún no está mapeado: es la jornada actual.
		week = c.round
	}
	c.log.Debug("result block", "block", env.BlockID, "week", week)

	results, won, settlements := c.decodeResults(env)

	if c.mode == domain.ModeAutoSkip {
		c.phase = domain.PhaseAwaitingEvents
		c.log.Debug("auto skipping league", "league", c.league)
		c.nextFixtures(1)
		return
	}

	c.table.RecordResults(env.BlockID, c.league, week, results, won, settlements)

	switch c.mode {
	case domain.ModeBackfillMultiple:
		if len(c.table.MissingRounds()) == 0 {
			c.mode = domain.ModeNormal
			c.dispatch(ctx)
		}
	case domain.ModePrefetchRequired:
		if len(c.table.WeeksReady(c.requiredRounds)) == 0 {
			c.mode = domain.ModeNormal
			c.log.Debug("future results complete", "league", c.league)
			c.dispatch(ctx)
		}
	default:
		for _, s := range c.strategies {
			if err := s.OnResult(ctx); err != nil {
				c.log.Warn("strategy OnResult failed", "strategy", s.Name(), "err", err)
			}
		}
		if c.notifier != nil {
			if err := c.notifier.NotifyStandings(ctx, c.cfg.Game, week, c.table.Standings()); err != nil {
				c.log.Warn("notifier error", "err", err)
			}
		}
		if err := c.tickets.SettleCompetitionTickets(ctx, c.cfg.Game); err != nil {
			c.log.Warn("ticket settlement failed", "err", err)
		}
		if week == c.cfg.MaxRounds {
			c.archiveLeague(ctx)
		}
		if env.BlockID == c.blockID {
			c.phase = domain.PhaseAwaitingEvents
			c.nextFixtures(1)
		}
	}
}

// decodeResults extrae resultados, mercados ganados y liquidaciones de un
// bloque de results. La identidad de los equipos se recupera del par de ids
// embebido en la URL de liquidación cuando el payload no trae participantes.
func (c *Competition) decodeResults(env domain.BlockEnvelope) (domain.ResultSet, map[domain.EventID][]int, map[domain.EventID]domain.Settlement) {
	results := make(domain.ResultSet, len(env.Events))
	won := make(map[domain.EventID][]int, len(env.Events))
	settlements := make(map[domain.EventID]domain.Settlement, len(env.Events))

	for _, ev := range env.Events {
		if ev.Result == nil {
			continue
		}
		score, ok := domain.ScoreFromWonMarkets(ev.Result.WonMarkets)
		if !ok {
			c.log.Warn("result without correct-score market", "event", ev.EventID)
			continue
		}

		home, away := c.resolveTeams(ev)
		if home == "" || away == "" {
			c.log.Warn("unresolvable team labels", "event", ev.EventID)
			continue
		}

		results[ev.EventID] = domain.Result{
			EventID: ev.EventID,
			Home:    home,
			Away:    away,
			Score:   score,
		}
		won[ev.EventID] = domain.WonMarketIDs(ev.Result.WonMarkets)
		settlements[ev.EventID] = domain.Settlement{
			WonMarkets: domain.WonMarketIDs(ev.Result.WonMarkets),
			HalfWon:    ev.Result.Data.HalfWonMarkets,
			HalfLost:   ev.Result.Data.HalfLostMarkets,
			Refund:     ev.Result.Data.RefundMarkets,
		}
	}
	return results, won, settlements
}

// resolveTeams devuelve los códigos de los dos equipos de un evento: de los
// participantes si vienen en el payload, o de los segmentos 4 y 5 del path
// de la URL de liquidación en caso contrario.
func (c *Competition) resolveTeams(ev domain.FeedEvent) (home, away string) {
	if len(ev.Data.Participants) >= 2 {
		return ev.Data.Participants[0].FifaCode, ev.Data.Participants[1].FifaCode
	}
	parts := strings.Split(ev.Result.Data.VideoURL, "/")
	if len(parts) < 6 {
		return "", ""
	}
	homeID, err1 := strconv.ParseInt(parts[4], 10, 64)
	awayID, err2 := strconv.ParseInt(parts[5], 10, 64)
	if err1 != nil || err2 != nil {
		return "", ""
	}
	return c.teamLabels[domain.TeamID(homeID)], c.teamLabels[domain.TeamID(awayID)]
}
