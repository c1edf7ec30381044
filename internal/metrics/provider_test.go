package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("fieldvault")
	require.NoError(t, err)
	require.NotNil(t, provider)
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()

	assert.NotNil(t, provider.Handler())
	assert.NotNil(t, provider.MeterProvider())
}

func TestProviderExposesRecordedMetrics(t *testing.T) {
	provider, err := NewProvider("fieldvault")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()

	business, err := NewBusinessMetrics(provider.MeterProvider(), "fieldvault")
	require.NoError(t, err)

	ctx := context.Background()
	business.RecordOperation(ctx, "records", "record_create", "success")
	business.RecordDuration(ctx, "records", "record_create", 25*time.Millisecond, "success")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	provider.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "fieldvault_operations_total"), body)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	m := NewNoOpBusinessMetrics()

	// Must not panic.
	m.RecordOperation(context.Background(), "crypto", "field_decrypt", "error")
	m.RecordDuration(context.Background(), "crypto", "field_decrypt", time.Second, "error")
}
