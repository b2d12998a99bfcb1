package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitOtel_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}
