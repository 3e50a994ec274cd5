package domain

// GameID identifica un producto de liga virtual (playlist) en el feed.
type GameID int

// LeagueID identifica una temporada concreta de una liga. El feed recicla el
// mismo GameID para temporadas consecutivas; LeagueID cambia en cada ciclo.
type LeagueID int64

// Round es una jornada dentro del ciclo de la liga, en [1, maxRounds].
type Round int

// BlockID es el identificador opaco de un lote remoto de eventos. Un bloque
// pertenece a exactamente una jornada una vez observado; nunca se reutiliza
// para otra jornada.
type BlockID int64

// EventID identifica un partido dentro de una jornada.
type EventID int64

// TeamID es el identificador numérico de un equipo en el feed.
type TeamID int64

// RequestID es el identificador de correlación que asigna el transporte a
// cada petición saliente.
type RequestID int64

// Fixture es el registro de un partido programado: rivales, cuota y metadata
// de participantes. Inmutable una vez registrado para una jornada (salvo
// reset por cambio de liga).
type Fixture struct {
	EventID      EventID
	Home         string // código del equipo local
	Away         string // código del equipo visitante
	Odds         []float64
	Index        int // posición del evento dentro del bloque
	Participants []Participant
}

// FixtureSet son los partidos de una jornada indexados por evento.
type FixtureSet map[EventID]Fixture

// Score es el marcador final de un partido.
type Score struct {
	Home int
	Away int
}

// Result es el registro del resultado de un partido.
type Result struct {
	EventID EventID
	Home    string
	Away    string
	Score   Score
}

// ResultSet son los resultados de una jornada indexados por evento.
type ResultSet map[EventID]Result

// Settlement es la metadata de liquidación de un evento: mercados ganados y
// los ajustes de handicap (medio ganado / medio perdido / devolución).
type Settlement struct {
	WonMarkets []int
	HalfWon    []int
	HalfLost   []int
	Refund     []int
}

// EventStats son las estadísticas de un partido tal como llegan en el feed.
type EventStats map[string]float64

// EventSummary es el resumen de un partido para el archivo de liga completada.
type EventSummary struct {
	TeamA string     `json:"team_a"`
	TeamB string     `json:"team_b"`
	Odds  []float64  `json:"odds"`
	Stats EventStats `json:"stats,omitempty"`
	Score [2]int     `json:"score"`
}

// Standing es la fila de un equipo en la clasificación acumulada.
type Standing struct {
	Team         string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// RoundSummary agrupa los resúmenes de una jornada.
type RoundSummary map[EventID]EventSummary

// LeagueSummary es el archivo completo de una temporada, por jornada.
type LeagueSummary map[Round]RoundSummary
