// Package strategy define el contrato de las estrategias de apuesta y el
// registro explícito de constructores con el que se instancian al arrancar.
package strategy

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/vbet/internal/domain"
)

// LeagueView es la vista de solo lectura de una competición que se entrega a
// cada estrategia. La implementa el engine de sincronización.
type LeagueView interface {
	GameID() domain.GameID
	League() domain.LeagueID
	CurrentRound() domain.Round
	MaxRounds() domain.Round

	// FixturesFor devuelve el fixture de una jornada, o nil si no se conoce.
	FixturesFor(round domain.Round) domain.FixtureSet

	// Standings devuelve la clasificación acumulada con los resultados
	// conocidos hasta ahora.
	Standings() []domain.Standing
}

// Strategy encapsula una lógica de apuesta. El engine invoca OnEvent cuando
// el estado de la liga está completo y consistente, y OnResult tras cada
// resultado registrado.
type Strategy interface {
	// Name devuelve el identificador único de la estrategia.
	Name() string

	// OnEvent produce los tickets candidatos para la jornada en curso.
	// Devolver una lista vacía significa no apostar esta jornada.
	OnEvent(ctx context.Context) ([]*domain.Ticket, error)

	// OnResult notifica que el resultado de la jornada en curso se registró.
	OnResult(ctx context.Context) error

	// RequiredRounds devuelve las jornadas cuyos resultados la estrategia
	// aún necesita antes de poder apostar. El engine las descarga por
	// adelantado si el prefetch está habilitado.
	RequiredRounds() []domain.Round

	// OnTicketSettled notifica la liquidación de un ticket propio.
	OnTicketSettled(ctx context.Context, ticket *domain.Ticket) error

	// Shutdown espera a que el trabajo pendiente de la estrategia termine.
	Shutdown(ctx context.Context) error
}

// Config es la configuración común que reciben los constructores.
type Config struct {
	Stake    float64
	MinOdd   float64
	FormSpan int // jornadas hacia atrás que la estrategia quiere conocer
}

// Constructor crea una estrategia ligada a la vista de una competición.
type Constructor func(view LeagueView, cfg Config) Strategy

// Registry mapea identificador de estrategia a su constructor. Se puebla al
// arrancar; no hay descubrimiento dinámico.
type Registry map[string]Constructor

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// Register añade un constructor al registry.
func (r Registry) Register(name string, c Constructor) {
	r[name] = c
}

// Build instancia la estrategia registrada bajo name.
func (r Registry) Build(name string, view LeagueView, cfg Config) (Strategy, error) {
	c, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("strategy.Build: unknown strategy %q", name)
	}
	return c(view, cfg), nil
}
