package storage

// sqlite.go: tickets y archivo de ligas completadas.
//
// Estrategia:
//   - `tickets`: una fila por ticket con el ticket completo serializado a
//     JSON. El estado (open/won/lost/voided) se actualiza in situ.
//   - `leagues`: una fila por temporada completada (UPSERT por game+league),
//     con el resumen por jornada en JSON.
//   - La liquidación compara las apuestas de cada ticket abierto contra los
//     pools de mercados ganados que expone cada competición registrada.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/vbet/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
    key        TEXT PRIMARY KEY,
    game       INTEGER NOT NULL,
    strategy   TEXT    NOT NULL,
    stake      REAL    NOT NULL DEFAULT 0,
    total_won  REAL    NOT NULL DEFAULT 0,
    status     TEXT    NOT NULL,
    payload    TEXT    NOT NULL,
    created_at DATETIME NOT NULL,
    settled_at DATETIME
);

CREATE TABLE IF NOT EXISTS leagues (
    game         INTEGER NOT NULL,
    league       INTEGER NOT NULL,
    completed_at DATETIME NOT NULL,
    summary      TEXT    NOT NULL,
    PRIMARY KEY (game, league)
);

CREATE INDEX IF NOT EXISTS idx_tickets_game   ON tickets(game, status);
CREATE INDEX IF NOT EXISTS idx_leagues_at     ON leagues(completed_at DESC);
`

// ValidationSource expone los pools de liquidación de una competición. Lo
// implementa el engine de sincronización.
type ValidationSource interface {
	ValidationPools() (map[domain.Round]map[domain.EventID][]int, map[domain.Round]map[domain.EventID]domain.Settlement)
}

// SettleFunc recibe cada ticket recién liquidado.
type SettleFunc func(*domain.Ticket)

type binding struct {
	source    ValidationSource
	onSettled SettleFunc
}

// SQLiteStore implementa ports.TicketService y ports.Archiver usando SQLite
// (pure Go, sin CGo). Compartido entre competiciones; la consistencia
// interna la da el mutex y el single-writer de SQLite.
type SQLiteStore struct {
	db       *sql.DB
	mu       sync.Mutex
	bindings map[domain.GameID]binding
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		bindings: make(map[domain.GameID]binding),
	}, nil
}

// BindCompetition asocia una competición como fuente de validación de sus
// tickets. onSettled puede ser nil.
func (s *SQLiteStore) BindCompetition(game domain.GameID, source ValidationSource, onSettled SettleFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[game] = binding{source: source, onSettled: onSettled}
}

// RegisterTicket implementa ports.TicketService.
func (s *SQLiteStore) RegisterTicket(ctx context.Context, ticket *domain.Ticket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("storage.RegisterTicket: marshal %s: %w", ticket.Key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tickets (key, game, strategy, stake, total_won, status, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.Key, ticket.GameID, ticket.Strategy, ticket.Stake, ticket.TotalWon,
		ticket.Status, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.RegisterTicket: insert %s: %w", ticket.Key, err)
	}
	return nil
}

// SettleCompetitionTickets implementa ports.TicketService. Valida cada
// ticket abierto de la competición contra los pools de mercados ganados; los
// tickets cuyas jornadas aún no tienen resultado quedan abiertos.
func (s *SQLiteStore) SettleCompetitionTickets(ctx context.Context, game domain.GameID) error {
	s.mu.Lock()
	b, bound := s.bindings[game]
	s.mu.Unlock()
	if !bound {
		return nil
	}
	wonPools, _ := b.source.ValidationPools()

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM tickets WHERE game = ? AND status = ?`, game, domain.TicketOpen)
	if err != nil {
		return fmt.Errorf("storage.SettleCompetitionTickets: query: %w", err)
	}
	var open []*domain.Ticket
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			rows.Close()
			return fmt.Errorf("storage.SettleCompetitionTickets: scan: %w", err)
		}
		var t domain.Ticket
		if json.Unmarshal([]byte(payload), &t) == nil {
			open = append(open, &t)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, t := range open {
		status, won := settleTicket(t, wonPools)
		if status == domain.TicketOpen {
			continue
		}
		t.Status = status
		t.TotalWon = won
		payload, _ := json.Marshal(t)
		if _, err := s.db.ExecContext(ctx, `
			UPDATE tickets SET status = ?, total_won = ?, payload = ?, settled_at = ?
			WHERE key = ?`,
			t.Status, t.TotalWon, string(payload), time.Now().UTC(), t.Key,
		); err != nil {
			return fmt.Errorf("storage.SettleCompetitionTickets: update %s: %w", t.Key, err)
		}
		if b.onSettled != nil {
			b.onSettled(t)
		}
	}
	return nil
}

// settleTicket decide el resultado de un ticket. Devuelve TicketOpen si
// alguna de sus jornadas aún no tiene pool de mercados ganados.
func settleTicket(t *domain.Ticket, wonPools map[domain.Round]map[domain.EventID][]int) (string, float64) {
	var payout float64
	for _, ev := range t.Events {
		pool, ok := wonPools[ev.Round]
		if !ok {
			return domain.TicketOpen, 0
		}
		wonIDs, ok := pool[ev.EventID]
		if !ok {
			return domain.TicketOpen, 0
		}
		for _, bet := range ev.Bets {
			if !containsInt(wonIDs, bet.OddID) {
				return domain.TicketLost, 0
			}
			payout += bet.Stake * bet.OddValue
		}
	}
	return domain.TicketWon, payout
}

// ResumeCompetition implementa ports.TicketService: informa si la
// competición tiene tickets abiertos tras una reconexión.
func (s *SQLiteStore) ResumeCompetition(ctx context.Context, game domain.GameID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE game = ? AND status = ?`,
		game, domain.TicketOpen,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("storage.ResumeCompetition: %w", err)
	}
	return count > 0, nil
}

// ResetCompetitionTickets implementa ports.TicketService: anula los tickets
// abiertos de la competición. Se usa cuando la reconciliación detecta un
// cambio de liga.
func (s *SQLiteStore) ResetCompetitionTickets(ctx context.Context, game domain.GameID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tickets SET status = ?, settled_at = ?
		WHERE game = ? AND status = ?`,
		domain.TicketVoided, time.Now().UTC(), game, domain.TicketOpen,
	)
	if err != nil {
		return fmt.Errorf("storage.ResetCompetitionTickets: %w", err)
	}
	return nil
}

// StoreCompletedLeague implementa ports.Archiver.
func (s *SQLiteStore) StoreCompletedLeague(ctx context.Context, game domain.GameID, league domain.LeagueID, summary domain.LeagueSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("storage.StoreCompletedLeague: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leagues (game, league, completed_at, summary)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game, league) DO UPDATE SET
			completed_at = excluded.completed_at,
			summary      = excluded.summary`,
		game, league, time.Now().UTC(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("storage.StoreCompletedLeague: upsert %d/%d: %w", game, league, err)
	}
	return nil
}

// TicketsByStatus devuelve los tickets de una competición en un estado dado,
// los más recientes primero.
func (s *SQLiteStore) TicketsByStatus(ctx context.Context, game domain.GameID, status string) ([]*domain.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM tickets
		WHERE game = ? AND status = ?
		ORDER BY created_at DESC`, game, status)
	if err != nil {
		return nil, fmt.Errorf("storage.TicketsByStatus: query: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage.TicketsByStatus: scan: %w", err)
		}
		var t domain.Ticket
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			continue
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
