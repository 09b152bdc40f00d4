package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vajraedge/vajraedge/internal/telemetry"
)

func TestNewTracerProviderBuildsAndShutsDown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	shutdown, err := telemetry.NewTracerProvider(ctx, telemetry.TracerProviderConfig{
		Endpoint: "localhost:4318",
		Insecure: true,
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	require.NoError(t, shutdown(shutdownCtx))
}

func TestTracerReturnsUsableTracer(t *testing.T) {
	tracer := telemetry.Tracer("vajraedge/test")
	_, span := tracer.Start(context.Background(), "test-span")
	defer span.End()
	require.NotNil(t, span)
}
