package integrations_test

import (
	"testing"

	"send-to-print/internal/integrations"
	"send-to-print/internal/integrations/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := integrations.NewRegistry()

	_, err := registry.GetActive()
	assert.Error(t, err)

	require.NoError(t, registry.Register(mock.NewProvider(2)))
	assert.Error(t, registry.Register(mock.NewProvider(1)), "повторная регистрация должна падать")

	assert.Error(t, registry.SetActive("yookassa"))
	require.NoError(t, registry.SetActive("mock"))

	active, err := registry.GetActive()
	require.NoError(t, err)
	assert.Equal(t, "mock", active.Name())
}
