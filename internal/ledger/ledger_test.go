package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ledger"
)

func TestLedger_RegisterResolve(t *testing.T) {
	l := ledger.New()

	payload := domain.RequestPayload{ContentID: 41, N: 1, BlockID: 500}
	l.Register(domain.ResourceResults, 7, payload, 2)
	assert.Equal(t, 1, l.Pending(domain.ResourceResults))

	entry, err := l.Resolve(domain.ResourceResults, 7)
	require.NoError(t, err)
	assert.Equal(t, payload, entry.Payload)
	assert.Equal(t, 2, entry.Retry)
	assert.Equal(t, 0, l.Pending(domain.ResourceResults))
}

func TestLedger_DoubleResolveFails(t *testing.T) {
	l := ledger.New()
	l.Register(domain.ResourceFixtures, 1, domain.RequestPayload{N: 1}, 0)

	_, err := l.Resolve(domain.ResourceFixtures, 1)
	require.NoError(t, err)

	_, err = l.Resolve(domain.ResourceFixtures, 1)
	assert.ErrorIs(t, err, ledger.ErrUnknownRequest)
}

func TestLedger_UnknownRequest(t *testing.T) {
	l := ledger.New()
	_, err := l.Resolve(domain.ResourceHistory, 99)
	assert.ErrorIs(t, err, ledger.ErrUnknownRequest)
}

func TestLedger_NamespacesAreIndependent(t *testing.T) {
	l := ledger.New()

	// El mismo id en vuelo para dos recursos distintos no colisiona.
	l.Register(domain.ResourceFixtures, 5, domain.RequestPayload{N: 1}, 0)
	l.Register(domain.ResourceResults, 5, domain.RequestPayload{N: 1, BlockID: 500}, 1)

	entry, err := l.Resolve(domain.ResourceFixtures, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Retry)

	entry, err = l.Resolve(domain.ResourceResults, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.BlockID(500), entry.Payload.BlockID)
}

func TestLedger_Drop(t *testing.T) {
	l := ledger.New()
	l.Register(domain.ResourceHistory, 1, domain.RequestPayload{}, 0)
	l.Register(domain.ResourceHistory, 2, domain.RequestPayload{}, 1)
	l.Register(domain.ResourceResults, 3, domain.RequestPayload{}, 0)

	l.Drop(domain.ResourceHistory)

	assert.Equal(t, 0, l.Pending(domain.ResourceHistory))
	assert.Equal(t, 1, l.Pending(domain.ResourceResults))

	_, err := l.Resolve(domain.ResourceHistory, 1)
	assert.ErrorIs(t, err, ledger.ErrUnknownRequest)
}
