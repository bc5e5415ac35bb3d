package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotedesk/internal/app"
)

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer

	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)), m)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, app.QuoteSaved{QuoteNumber: "Q-1", Total: "10.00"}))
	require.NoError(t, p.Publish(ctx, app.QuoteSaveFailed{QuoteNumber: "Q-1", Step: "perform"}))
	require.NoError(t, p.Publish(ctx, app.QuoteSent{QuoteNumber: "Q-1"}))

	out := buf.String()
	assert.Contains(t, out, `"event_type":"quote.saved"`)
	assert.Contains(t, out, `"quote_number":"Q-1"`)
	assert.Contains(t, out, `"level":"WARN"`)

	assert.InDelta(t, 1, testutil.ToFloat64(m.saves.WithLabelValues(outcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.saves.WithLabelValues(outcomeFailure)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.published.WithLabelValues(app.EventQuoteSent)), 0)
}

func TestLogPublisher_NilEvent(t *testing.T) {
	require.Error(t, NewLogPublisher(nil, nil).Publish(context.Background(), nil))
}

func TestMetrics_ObserveStep(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.ObserveStep("save_quote", app.StepPerform, 20*time.Millisecond, nil)
	m.ObserveStep("save_quote", app.StepVerify, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.stepDuration))

	_, err = NewMetrics(reg)
	require.Error(t, err, "registering twice fails")
}
