package domain

// Phase es el punto del ciclo de competición en el que está el engine. Es
// estado consultivo para el dispatch externo, no una barrera de concurrencia.
type Phase int

const (
	PhaseSleeping Phase = iota
	PhaseAwaitingEvents
	PhaseAwaitingTickets
	PhaseAwaitingResults
)

// String implementa fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseSleeping:
		return "sleeping"
	case PhaseAwaitingEvents:
		return "awaiting_events"
	case PhaseAwaitingTickets:
		return "awaiting_tickets"
	case PhaseAwaitingResults:
		return "awaiting_results"
	default:
		return "unknown"
	}
}

// Mode es el sub-modo de sincronización del engine. Sustituye a la colección
// de flags booleanos (caching, caching_future, caching_multiple,
// fetching_future, auto_skip, restoring) por una enumeración única: en todo
// momento hay exactamente un modo activo y las combinaciones inválidas no son
// representables.
type Mode int

const (
	// ModeNormal: ciclo estándar fixtures → tickets → results.
	ModeNormal Mode = iota
	// ModeBackfillSingle: rellenando jornadas perdidas con lotes históricos.
	ModeBackfillSingle
	// ModeBackfillMultiple: catch-up con una petición de results por jornada
	// perdida, cuando la tabla ya está completamente cacheada.
	ModeBackfillMultiple
	// ModeBackfillFuture: aprendiendo los bloques de jornadas aún no
	// observadas antes de permitir el dispatch.
	ModeBackfillFuture
	// ModePrefetchRequired: descargando por adelantado los results de las
	// jornadas que las estrategias aún necesitan.
	ModePrefetchRequired
	// ModeRestoring: reconciliando estado tras una reconexión.
	ModeRestoring
	// ModeAutoSkip: jornada abandonada tras agotar retries; el engine avanza
	// al siguiente fixtures sin esperar a que converja el backfill.
	ModeAutoSkip
)

// String implementa fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeBackfillSingle:
		return "backfill_single"
	case ModeBackfillMultiple:
		return "backfill_multiple"
	case ModeBackfillFuture:
		return "backfill_future"
	case ModePrefetchRequired:
		return "prefetch_required"
	case ModeRestoring:
		return "restoring"
	case ModeAutoSkip:
		return "auto_skip"
	default:
		return "unknown"
	}
}
