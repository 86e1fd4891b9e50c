package composables_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

func TestTenantID_RoundTrip(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)

	got, err := composables.UseTenantID(ctx)
	require.NoError(t, err)
	assert.Equal(t, tenantID, got)
}

func TestUseTenantID_Missing(t *testing.T) {
	t.Parallel()

	_, err := composables.UseTenantID(context.Background())
	assert.ErrorIs(t, err, composables.ErrNoTenantID)
}

func TestUseTenantID_NilUUID(t *testing.T) {
	t.Parallel()

	ctx := composables.WithTenantID(context.Background(), uuid.Nil)
	_, err := composables.UseTenantID(ctx)
	assert.ErrorIs(t, err, composables.ErrNoTenantID)
}

func TestUseLogger_Fallback(t *testing.T) {
	t.Parallel()

	logger := composables.UseLogger(context.Background())
	require.NotNil(t, logger)
}
