package competition

import (
	"context"
	"errors"
	"strconv"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ports"
)

// onFixtures procesa una respuesta de fixtures. Una respuesta malformada se
// reintenta con delay fijo sin límite de intentos: siempre hay exactamente
// una petición de fixtures "siguiente" que hacer.
func (c *Competition) onFixtures(ctx context.Context, resp ports.Response) error {
	entry, err := c.ledger.Resolve(domain.ResourceFixtures, resp.RequestID)
	if err != nil {
		return err
	}

	env, verr := singleBlock(resp)
	if verr == nil {
		if c.mode == domain.ModeRestoring {
			verr = c.processResume(ctx, env)
		} else {
			verr = c.processFixtures(ctx, env)
		}
	}
	if errors.Is(verr, domain.ErrInvalidBatch) {
		c.log.Warn("invalid fixtures response")
		if !c.sleep(ctx, c.cfg.FixturesRetryDelay) {
			return nil
		}
		c.nextFixtures(entry.Payload.N)
		return nil
	}
	return verr
}

// singleBlock valida la forma de una respuesta de un solo bloque.
func singleBlock(resp ports.Response) (domain.BlockEnvelope, error) {
	if !resp.Valid {
		return domain.BlockEnvelope{}, domain.ErrInvalidBatch
	}
	return resp.Body.Single()
}

// processFixtures incorpora un bloque de fixtures: detecta cambio de liga,
// registra el fixture de la jornada y decide el siguiente paso (dispatch,
// catch-up multi-jornada o backfill histórico).
func (c *Competition) processFixtures(ctx context.Context, env domain.BlockEnvelope) error {
	league, matchDay := env.Data.LeagueID, env.Data.MatchDay
	if env.BlockID == 0 || league == 0 || matchDay == 0 {
		return domain.ErrInvalidBatch
	}
	c.blockID = env.BlockID

	if league != c.league || c.league == 0 {
		// Jornada 1 de una liga nueva desactiva un auto-skip en curso.
		if matchDay == 1 && c.mode == domain.ModeAutoSkip {
			c.mode = domain.ModeNormal
		}
		c.log.Info("league change", "old", c.league, "new", league)
		c.league = league
		c.cached = false
		c.requiredRounds = nil
		c.table.Reset(league)
	}
	c.round = matchDay
	c.log.Debug("event block", "block", c.blockID, "league", c.league, "week", c.round)

	c.processEventTime(env.EventTime)
	fixtures, stats := c.decodeFixtures(env)

	if c.mode == domain.ModeAutoSkip {
		// Jornada abandonada: sin trabajo de tabla, directo a resultados.
		c.phase = domain.PhaseAwaitingResults
		c.log.Debug("auto skipping league", "league", c.league)
		c.requestCurrentResults(ctx)
		return nil
	}

	// Las jornadas ya pobladas no se sobreescriben; el rechazo es del
	// engine, no de la tabla.
	if !c.table.HasFixtures(c.round) {
		c.table.RecordFixtures(c.round, fixtures)
	}
	c.table.RecordStats(c.league, c.round, stats)

	missing := c.table.MissingRounds()
	if len(missing) == 0 {
		return c.dispatch(ctx)
	}
	if c.cached {
		// Catch-up multi-jornada: un results por jornada perdida.
		c.mode = domain.ModeBackfillMultiple
		for _, week := range missing {
			block, ok := c.table.BlockForRound(week)
			if !ok {
				continue
			}
			c.nextResults(block, 1, 0)
		}
		return nil
	}
	c.mode = domain.ModeBackfillSingle
	c.backfillIters = 0
	c.nextHistory(c.backfillAnchor(missing), historyPageBack, 0)
	return nil
}

// processResume reconcilia el primer fixtures tras una reconexión contra el
// último bloque conocido. Si coincide, se retoma donde se esperaban
// resultados; si no, se trata como un reset completo.
func (c *Competition) processResume(ctx context.Context, env domain.BlockEnvelope) error {
	c.mode = domain.ModeNormal
	if env.BlockID == c.blockID {
		c.log.Debug("competition resume success")
		resumed, err := c.tickets.ResumeCompetition(ctx, c.cfg.Game)
		if err != nil {
			c.log.Warn("resume check failed", "err", err)
			resumed = false
		}
		if resumed {
			// Hay un ticket en vuelo: esperar a OnTicketsComplete.
			c.phase = domain.PhaseAwaitingTickets
			c.log.Info("resuming tickets")
			return nil
		}
		c.phase = domain.PhaseAwaitingResults
		c.requestCurrentResults(ctx)
		return nil
	}

	c.log.Debug("competition resume failed")
	if err := c.tickets.ResetCompetitionTickets(ctx, c.cfg.Game); err != nil {
		c.log.Warn("ticket reset failed", "err", err)
	}
	c.activeTickets = nil
	return c.processFixtures(ctx, env)
}

// decodeFixtures extrae el fixture y las stats de un bloque, y aprende las
// etiquetas de equipo que luego recuperan la identidad en los resultados.
func (c *Competition) decodeFixtures(env domain.BlockEnvelope) (domain.FixtureSet, map[domain.EventID]domain.EventStats) {
	fixtures := make(domain.FixtureSet, len(env.Events))
	stats := make(map[domain.EventID]domain.EventStats, len(env.Events))

	for i, ev := range env.Events {
		if len(ev.Data.Participants) < 2 {
			continue
		}
		home, away := ev.Data.Participants[0], ev.Data.Participants[1]
		c.teamLabels[home.ID] = home.FifaCode
		c.teamLabels[away.ID] = away.FifaCode

		odds := make([]float64, 0, len(ev.Data.OddValues))
		for _, raw := range ev.Data.OddValues {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			odds = append(odds, v)
		}

		fixtures[ev.EventID] = domain.Fixture{
			EventID:      ev.EventID,
			Home:         home.FifaCode,
			Away:         away.FifaCode,
			Odds:         odds,
			Index:        i,
			Participants: ev.Data.Participants,
		}
		if ev.Data.Stats != nil {
			stats[ev.EventID] = ev.Data.Stats
		}
	}
	return fixtures, stats
}
