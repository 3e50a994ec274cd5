package domain

import "errors"

// ErrInvalidBatch indica una respuesta del feed malformada o vacía.
// El engine la trata con retry local, nunca la propaga al proceso.
var ErrInvalidBatch = errors.New("feed: invalid batch shape")

// Resource es el tipo de recurso que se pide al feed. Cada recurso tiene su
// propio namespace de peticiones pendientes en el ledger.
type Resource int

const (
	ResourceFixtures Resource = iota + 1
	ResourceResults
	ResourceHistory
	ResourceStats
)

// String implementa fmt.Stringer.
func (r Resource) String() string {
	switch r {
	case ResourceFixtures:
		return "fixtures"
	case ResourceResults:
		return "results"
	case ResourceHistory:
		return "history"
	case ResourceStats:
		return "stats"
	default:
		return "unknown"
	}
}

// RequestPayload es el cuerpo de una petición al feed. El snapshot completo
// se guarda en el ledger para poder reemitir la misma petición lógica en los
// retries.
type RequestPayload struct {
	ContentType  string   `json:"contentType"`
	ContentID    GameID   `json:"contentId"`
	CountDown    *float64 `json:"countDown"`
	Offset       *float64 `json:"offset"`
	EventTime    *int64   `json:"eventTime"`
	N            int      `json:"n"`
	BlockID      BlockID  `json:"eBlockId,omitempty"`
	Profile      string   `json:"profile"`
	OddSettingID int      `json:"oddSettingId"`
	UnitID       int      `json:"unitId"`
}

// Batch es el cuerpo de una respuesta del feed: una lista de bloques.
// Fixtures y results llegan como lote de un solo bloque; history trae varios.
type Batch []BlockEnvelope

// Single valida que el lote sea un batch bien formado de un solo elemento y
// lo devuelve. Es la validación de forma de fixtures y results.
func (b Batch) Single() (BlockEnvelope, error) {
	if len(b) == 0 {
		return BlockEnvelope{}, ErrInvalidBatch
	}
	env := b[0]
	if env.BlockID == 0 {
		return BlockEnvelope{}, ErrInvalidBatch
	}
	return env, nil
}

// BlockEnvelope es un bloque de eventos del feed: una jornada de una liga.
type BlockEnvelope struct {
	BlockID   BlockID     `json:"eBlockId"`
	EventTime *int64      `json:"eventTime"`
	Data      BlockData   `json:"data"`
	Events    []FeedEvent `json:"events"`
}

// BlockData identifica la liga y la jornada de un bloque.
type BlockData struct {
	LeagueID LeagueID `json:"leagueId"`
	MatchDay Round    `json:"matchDay"`
}

// FeedEvent es un partido dentro de un bloque. Result es nil mientras el
// partido no se ha jugado.
type FeedEvent struct {
	EventID EventID     `json:"eventId"`
	Data    EventData   `json:"data"`
	Result  *FeedResult `json:"result,omitempty"`
}

// EventData es la parte estática de un evento: participantes, cuotas y stats.
type EventData struct {
	Participants []Participant `json:"participants"`
	OddValues    []string      `json:"oddValues"`
	Stats        EventStats    `json:"stats,omitempty"`
}

// Participant es uno de los dos equipos de un evento.
type Participant struct {
	ID       TeamID `json:"id"`
	FifaCode string `json:"fifaCode"`
	Name     string `json:"name,omitempty"`
}

// FeedResult es el resultado de un evento tal como llega del feed.
type FeedResult struct {
	WonMarkets []string   `json:"wonMarkets"`
	Data       ResultData `json:"data"`
}

// ResultData es la metadata de liquidación del resultado. VideoURL embebe los
// ids de los dos equipos en sus segmentos de path; es la única fuente de
// identidad de equipo cuando el fixture original no la llevaba.
type ResultData struct {
	VideoURL        string `json:"videoURL"`
	HalfLostMarkets []int  `json:"halfLostMarkets"`
	HalfWonMarkets  []int  `json:"halfWonMarkets"`
	RefundMarkets   []int  `json:"refundMarkets"`
}
