package competition

import "github.com/alejandrodnm/vbet/internal/domain"

// basePayload rellena los campos comunes de toda petición al feed.
func (c *Competition) basePayload(n int) domain.RequestPayload {
	return domain.RequestPayload{
		ContentType:  "PLAYLIST",
		ContentID:    c.cfg.Game,
		N:            n,
		Profile:      c.cfg.Profile,
		OddSettingID: c.cfg.OddSettingID,
		UnitID:       c.cfg.UnitID,
	}
}

// send emite una petición y la anota en el ledger. Fire-and-forget: un fallo
// de envío se registra y el retry natural del ciclo lo absorbe.
func (c *Competition) send(resource domain.Resource, payload domain.RequestPayload, retry int) {
	id, err := c.transport.Send(c.cfg.Game, resource, payload)
	if err != nil {
		c.log.Warn("send failed", "resource", resource.String(), "err", err)
		return
	}
	c.ledger.Register(resource, id, payload, retry)
}

// nextFixtures pide el siguiente lote de fixtures. Siempre arranca con retry
// 0: el contador solo crece al reemitir la misma petición lógica.
func (c *Competition) nextFixtures(n int) {
	c.send(domain.ResourceFixtures, c.basePayload(n), 0)
}

// nextResults pide los resultados del bloque dado.
func (c *Competition) nextResults(block domain.BlockID, n, retry int) {
	payload := c.basePayload(n)
	payload.BlockID = block
	c.send(domain.ResourceResults, payload, retry)
}

// nextHistory pide un lote histórico anclado en el bloque dado. n negativo
// pagina hacia atrás, positivo hacia adelante.
func (c *Competition) nextHistory(block domain.BlockID, n, retry int) {
	payload := c.basePayload(n)
	payload.BlockID = block
	c.send(domain.ResourceHistory, payload, retry)
}

// RequestStats pide las estadísticas del bloque dado. Normalmente las stats
// llegan embebidas en los fixtures; esta petición explícita cubre los huecos.
func (c *Competition) RequestStats(block domain.BlockID, n int) {
	payload := c.basePayload(n)
	payload.BlockID = block
	c.send(domain.ResourceStats, payload, 0)
}
