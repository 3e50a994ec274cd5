// Package competition implementa el engine de sincronización de una liga
// virtual: la máquina de estados de fases, la correlación de peticiones
// pendientes, el backfill de jornadas perdidas y la reconciliación tras una
// reconexión.
package competition

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ledger"
	"github.com/alejandrodnm/vbet/internal/ports"
	"github.com/alejandrodnm/vbet/internal/strategy"
	"github.com/alejandrodnm/vbet/internal/table"
)

// Paginación de history: negativa pide un lote hacia atrás desde el ancla,
// positiva hacia adelante.
const (
	historyPageBack    = -10
	historyPageForward = 10
)

// Config controla el comportamiento de una competición.
type Config struct {
	Game         domain.GameID
	MaxRounds    domain.Round // 38, o 34 en ligas cortas
	Profile      string
	OddSettingID int
	UnitID       int

	// FixturesRetryDelay separa los reintentos de fixtures. El retry de
	// fixtures es ilimitado: siempre hay exactamente un "siguiente" fixtures
	// que pedir.
	FixturesRetryDelay time.Duration
	// ResultsRetryDelay separa los reintentos acotados de results/history.
	ResultsRetryDelay time.Duration
	// MaxResultRetries es el número de reintentos antes de abandonar la
	// jornada con auto-skip.
	MaxResultRetries int
	// MaxBackfillIterations limita las iteraciones de backfill histórico.
	MaxBackfillIterations int

	// FutureResults habilita el prefetch de las jornadas que las estrategias
	// requieren antes del dispatch.
	FutureResults bool
	// PrefetchDelay separa las peticiones secuenciales del prefetch.
	PrefetchDelay time.Duration

	EventTimeEnabled  bool
	EventTimeInterval time.Duration
	ShutdownTimeout   time.Duration
	InboxSize         int
}

// DefaultConfig devuelve la configuración de producción para un juego.
func DefaultConfig(game domain.GameID) Config {
	return Config{
		Game:                  game,
		MaxRounds:             38,
		Profile:               "MOBILE",
		FixturesRetryDelay:    2 * time.Second,
		ResultsRetryDelay:     3 * time.Second,
		MaxResultRetries:      3,
		MaxBackfillIterations: 5,
		FutureResults:         true,
		PrefetchDelay:         2 * time.Second,
		ShutdownTimeout:       5 * time.Second,
		InboxSize:             64,
	}
}

// Competition es el participante automático de una liga. Un único goroutine
// (el de Run) procesa las respuestas en orden: la re-entrada se evita por
// construcción, no con locks. Varias competiciones corren en paralelo sin
// compartir estado mutable salvo los colaboradores externos.
type Competition struct {
	cfg       Config
	transport ports.Transport
	tickets   ports.TicketService
	archiver  ports.Archiver
	notifier  ports.Notifier // opcional
	log       *slog.Logger

	table  *table.LeagueTable
	ledger *ledger.Ledger

	inbox      chan ports.Response
	ticketDone chan struct{}
	settled    chan *domain.Ticket
	resync     chan struct{}

	// Estado del ciclo; solo lo toca el goroutine de Run.
	phase          domain.Phase
	mode           domain.Mode
	cached         bool
	league         domain.LeagueID
	round          domain.Round
	blockID        domain.BlockID
	eventTime      time.Time
	requiredRounds []domain.Round
	backfillIters  int
	teamLabels     map[domain.TeamID]string
	strategies     map[string]strategy.Strategy
	activeTickets  []string
}

// New crea una competición con sus colaboradores inyectados. El notifier
// puede ser nil.
func New(cfg Config, transport ports.Transport, tickets ports.TicketService, archiver ports.Archiver, notifier ports.Notifier) *Competition {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 64
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Competition{
		cfg:        cfg,
		transport:  transport,
		tickets:    tickets,
		archiver:   archiver,
		notifier:   notifier,
		log:        slog.With("game", cfg.Game),
		table:      table.New(cfg.MaxRounds),
		ledger:     ledger.New(),
		inbox:      make(chan ports.Response, cfg.InboxSize),
		ticketDone: make(chan struct{}, 1),
		settled:    make(chan *domain.Ticket, cfg.InboxSize),
		resync:     make(chan struct{}, 1),
		phase:      domain.PhaseSleeping,
		teamLabels: make(map[domain.TeamID]string),
		strategies: make(map[string]strategy.Strategy),
	}
}

// InstallStrategies instancia las estrategias del registry y las activa.
func (c *Competition) InstallStrategies(reg strategy.Registry, names []string, cfg strategy.Config) error {
	for _, name := range names {
		s, err := reg.Build(name, c, cfg)
		if err != nil {
			return err
		}
		c.strategies[name] = s
	}
	c.log.Info("competition installed", "strategies", len(c.strategies))
	return nil
}

// Run arranca el ciclo y procesa respuestas hasta que el contexto se
// cancele. Devuelve error solo ante una violación del contrato de transporte
// (ledger corrupto); todo lo demás se recupera localmente.
func (c *Competition) Run(ctx context.Context) error {
	c.log.Info("competition starting", "max_rounds", c.cfg.MaxRounds)
	c.phase = domain.PhaseAwaitingEvents
	c.nextFixtures(1)

	for {
		select {
		case <-ctx.Done():
			return c.shutdown()
		case resp := <-c.inbox:
			if err := c.handle(ctx, resp); err != nil {
				c.log.Error("fatal transport contract violation", "err", err)
				return err
			}
		case <-c.ticketDone:
			c.onTicketsComplete(ctx)
		case t := <-c.settled:
			c.dispatchSettled(ctx, t)
		case <-c.resync:
			c.mode = domain.ModeRestoring
			c.phase = domain.PhaseAwaitingEvents
			c.nextFixtures(1)
		}
	}
}

// Receive entrega una respuesta del transporte. Es el único punto de entrada
// concurrente; el loop de Run la procesa en orden de llegada.
func (c *Competition) Receive(resp ports.Response) {
	c.inbox <- resp
}

// Reconnected señala que el transporte restableció la conexión. El siguiente
// fixtures se procesa en modo Restoring (reconciliación).
func (c *Competition) Reconnected() {
	select {
	case c.resync <- struct{}{}:
	default:
	}
}

// OnTicketsComplete señala que el gestor de tickets terminó de colocar los
// tickets activos; la competición pasa a esperar resultados.
func (c *Competition) OnTicketsComplete() {
	select {
	case c.ticketDone <- struct{}{}:
	default:
	}
}

// OnTicketSettled entrega la liquidación de un ticket a la estrategia que lo
// produjo.
func (c *Competition) OnTicketSettled(t *domain.Ticket) {
	c.settled <- t
}

// ValidationPools expone los pools de mercados ganados y liquidaciones por
// jornada, con los que el gestor de tickets valida los tickets pendientes.
func (c *Competition) ValidationPools() (map[domain.Round]map[domain.EventID][]int, map[domain.Round]map[domain.EventID]domain.Settlement) {
	return c.table.ValidationPools()
}

// Phase devuelve la fase actual. Estado consultivo.
func (c *Competition) Phase() domain.Phase { return c.phase }

// Mode devuelve el modo de sincronización actual.
func (c *Competition) Mode() domain.Mode { return c.mode }

// handle enruta una respuesta a su callback por tipo de recurso. El mapeo es
// fijo: nada de dispatch por nombre.
func (c *Competition) handle(ctx context.Context, resp ports.Response) error {
	switch resp.Resource {
	case domain.ResourceFixtures:
		return c.onFixtures(ctx, resp)
	case domain.ResourceResults:
		return c.onResults(ctx, resp)
	case domain.ResourceHistory:
		return c.onHistory(ctx, resp)
	case domain.ResourceStats:
		return c.onStats(ctx, resp)
	default:
		c.log.Warn("response for unknown resource", "resource", int(resp.Resource))
		return nil
	}
}

// onTicketsComplete retoma el ciclo tras colocar tickets.
func (c *Competition) onTicketsComplete(ctx context.Context) {
	c.log.Debug("tickets completed", "count", len(c.activeTickets))
	c.phase = domain.PhaseAwaitingResults
	c.requestCurrentResults(ctx)
}

// dispatchSettled notifica la liquidación a la estrategia dueña del ticket.
func (c *Competition) dispatchSettled(ctx context.Context, t *domain.Ticket) {
	s, ok := c.strategies[t.Strategy]
	if !ok {
		c.log.Warn("settled ticket for unknown strategy", "strategy", t.Strategy)
		return
	}
	if err := s.OnTicketSettled(ctx, t); err != nil {
		c.log.Warn("strategy settle callback failed", "strategy", t.Strategy, "err", err)
	}
}

// shutdown para todas las estrategias (join-all) y cierra la conexión en
// último lugar.
func (c *Competition) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range c.strategies {
		wg.Add(1)
		go func(s strategy.Strategy) {
			defer wg.Done()
			if err := s.Shutdown(ctx); err != nil {
				c.log.Warn("strategy shutdown failed", "strategy", s.Name(), "err", err)
			}
		}(s)
	}
	wg.Wait()

	c.log.Info("competition stopped")
	return c.transport.Close()
}

// sleep espera d respetando la cancelación. Devuelve false si el contexto
// terminó antes.
func (c *Competition) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// processEventTime fija el timestamp del evento del día a partir del que
// trae el bloque, o lo genera para eventos bajo demanda.
func (c *Competition) processEventTime(eventTime *int64) {
	if eventTime != nil {
		c.eventTime = time.Unix(*eventTime, 0)
		return
	}
	now := time.Now()
	if c.cfg.EventTimeEnabled {
		c.eventTime = now.Add(c.cfg.EventTimeInterval)
		return
	}
	c.eventTime = now
}

// awaitEventTime suspende hasta el timestamp del evento del día.
func (c *Competition) awaitEventTime(ctx context.Context) bool {
	return c.sleep(ctx, time.Until(c.eventTime))
}

// requestCurrentResults espera el timestamp del evento y pide los resultados
// del bloque en curso.
func (c *Competition) requestCurrentResults(ctx context.Context) {
	if !c.awaitEventTime(ctx) {
		return
	}
	c.nextResults(c.blockID, 1, 0)
}

// latchAutoSkip abandona la familia de peticiones dada tras agotar los
// reintentos: vacía su namespace del ledger y fuerza la vuelta a
// AwaitingEvents para la siguiente jornada.
func (c *Competition) latchAutoSkip(resource domain.Resource) {
	c.mode = domain.ModeAutoSkip
	c.ledger.Drop(resource)
	c.phase = domain.PhaseAwaitingEvents
	c.nextFixtures(1)
}

// --- strategy.LeagueView ---

// GameID implementa strategy.LeagueView.
func (c *Competition) GameID() domain.GameID { return c.cfg.Game }

// League implementa strategy.LeagueView.
func (c *Competition) League() domain.LeagueID { return c.table.League() }

// CurrentRound implementa strategy.LeagueView.
func (c *Competition) CurrentRound() domain.Round { return c.round }

// MaxRounds implementa strategy.LeagueView.
func (c *Competition) MaxRounds() domain.Round { return c.cfg.MaxRounds }

// FixturesFor implementa strategy.LeagueView.
func (c *Competition) FixturesFor(round domain.Round) domain.FixtureSet {
	return c.table.FixturesFor(round)
}

// Standings implementa strategy.LeagueView.
func (c *Competition) Standings() []domain.Standing { return c.table.Standings() }
