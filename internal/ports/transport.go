package ports

import "github.com/alejandrodnm/vbet/internal/domain"

// Response es una respuesta del feed correlacionada con la petición que la
// produjo. El transporte la entrega como máximo una vez por RequestID.
type Response struct {
	RequestID domain.RequestID
	Resource  domain.Resource
	Valid     bool
	Body      domain.Batch
}

// Transport es la frontera con el feed remoto. Send es fire-and-forget: el
// id de correlación se devuelve síncronamente y la respuesta llega después
// por el canal de entrega que el transporte tenga configurado.
type Transport interface {
	// Send emite una petición y devuelve su id de correlación.
	Send(game domain.GameID, resource domain.Resource, payload domain.RequestPayload) (domain.RequestID, error)

	// Close cierra la conexión subyacente. Se llama en último lugar durante
	// el shutdown, después de parar las estrategias.
	Close() error
}
