// Package ledger correlaciona respuestas asíncronas del feed con la petición
// que las causó, arrastrando el contador de retries.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alejandrodnm/vbet/internal/domain"
)

// ErrUnknownRequest indica que se intentó resolver un id ausente o ya
// resuelto. Bajo un transporte correcto (entrega at-most-once por id) no
// puede ocurrir: es una violación del contrato, no una condición recuperable.
var ErrUnknownRequest = errors.New("ledger: unknown request")

// Entry es el snapshot de una petición pendiente. Retry solo crece cuando se
// reemite la misma petición lógica tras una respuesta inválida; una petición
// nueva arranca en 0.
type Entry struct {
	Payload domain.RequestPayload
	Retry   int
}

// Ledger mantiene cuatro mapas independientes de peticiones pendientes, uno
// por tipo de recurso. Los namespaces separados evitan colisiones cuando el
// transporte emite ids de un espacio plano.
type Ledger struct {
	mu      sync.Mutex
	pending map[domain.Resource]map[domain.RequestID]Entry
}

// New crea un ledger vacío.
func New() *Ledger {
	pending := make(map[domain.Resource]map[domain.RequestID]Entry, 4)
	for _, r := range []domain.Resource{
		domain.ResourceFixtures,
		domain.ResourceResults,
		domain.ResourceHistory,
		domain.ResourceStats,
	} {
		pending[r] = make(map[domain.RequestID]Entry)
	}
	return &Ledger{pending: pending}
}

// Register anota una petición pendiente. Hay exactamente una entrada por
// petición en vuelo.
func (l *Ledger) Register(resource domain.Resource, id domain.RequestID, payload domain.RequestPayload, retry int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending[resource][id] = Entry{Payload: payload, Retry: retry}
}

// Resolve elimina y devuelve la entrada de una petición. Cada entrada se
// resuelve exactamente una vez, por la respuesta que la completa.
func (l *Ledger) Resolve(resource domain.Resource, id domain.RequestID) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ns, ok := l.pending[resource]
	if !ok {
		return Entry{}, fmt.Errorf("ledger.Resolve: %s/%d: %w", resource, id, ErrUnknownRequest)
	}
	entry, ok := ns[id]
	if !ok {
		return Entry{}, fmt.Errorf("ledger.Resolve: %s/%d: %w", resource, id, ErrUnknownRequest)
	}
	delete(ns, id)
	return entry, nil
}

// Drop descarta todas las peticiones pendientes de un recurso. Se usa al
// abandonar una familia de peticiones por auto-skip: el ledger debe quedar
// vacío para esa familia.
func (l *Ledger) Drop(resource domain.Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending[resource] = make(map[domain.RequestID]Entry)
}

// Pending devuelve el número de peticiones en vuelo de un recurso.
func (l *Ledger) Pending(resource domain.Resource) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending[resource])
}
