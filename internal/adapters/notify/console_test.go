package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/vbet/internal/adapters/notify"
	"github.com/alejandrodnm/vbet/internal/domain"
)

func TestConsole_NotifyStandings(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	standings := []domain.Standing{
		{Team: "LIV", Played: 2, Won: 1, Drawn: 1, GoalsFor: 4, GoalsAgainst: 1, Points: 4},
		{Team: "ARS", Played: 2, Won: 1, Lost: 1, GoalsFor: 2, GoalsAgainst: 3, Points: 3},
	}

	err := n.NotifyStandings(context.Background(), 41, 2, standings)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "game 41")
	assert.Contains(t, out, "round 2")
	assert.Contains(t, out, "LIV")
	assert.Contains(t, out, "ARS")

	// El líder sale antes que el segundo.
	assert.Less(t, strings.Index(out, "LIV"), strings.Index(out, "ARS"))
}

func TestConsole_EmptyStandingsPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	require.NoError(t, n.NotifyStandings(context.Background(), 41, 1, nil))
	assert.Empty(t, buf.String())
}
