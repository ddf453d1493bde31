package trailrunner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner"
)

func TestKeyString(t *testing.T) {
	require.Equal(t, "trailrunner context key: RequestIDKey", trailrunner.RequestIDKey.String())
}

func TestKeyAsContextKey(t *testing.T) {
	// Arrange
	ctx := context.WithValue(context.Background(), trailrunner.DebugRenderKey, true)

	// Act
	val, ok := ctx.Value(trailrunner.DebugRenderKey).(bool)

	// Assert
	require.True(t, ok)
	require.True(t, val)
	require.Nil(t, ctx.Value(trailrunner.Key("DebugRenderKey-other")))
}
