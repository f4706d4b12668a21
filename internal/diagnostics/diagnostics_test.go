package diagnostics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollector_AddAndLog(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	c := NewCollector(zap.New(core))

	c.Add(KindConfiguration, "", "coefficients sum to %.2f, normalizing", 0.4)
	c.Add(KindBackendFailure, "textrank", "pagerank did not converge")

	ws := c.Warnings()
	require.Len(t, ws, 2)
	assert.Equal(t, Warning{Kind: KindConfiguration, Message: "coefficients sum to 0.40, normalizing"}, ws[0])
	assert.Equal(t, "textrank", ws[1].Signal)

	logs := observed.All()
	require.Len(t, logs, 2)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	assert.Equal(t, "backend_failure", logs[1].ContextMap()["warning.kind"])
}

func TestCollector_WarningsIsCopy(t *testing.T) {
	c := NewCollector(nil)
	assert.NotNil(t, c.Warnings())

	c.Add(KindConfiguration, "cnn_prob", "negative probability")
	ws := c.Warnings()
	ws[0].Message = "mutated"

	assert.Equal(t, "negative probability", c.Warnings()[0].Message)
}

func TestCollector_ExtendAndHas(t *testing.T) {
	c := NewCollector(nil)
	c.Extend()
	assert.Equal(t, 0, c.Len())

	c.Extend(Warning{Kind: KindBackendUnavailable, Signal: "embeddings", Message: "no model"})

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has(KindBackendUnavailable, "embeddings"))
	assert.True(t, c.Has(KindBackendUnavailable, ""))
	assert.False(t, c.Has(KindBackendFailure, ""))
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(KindBackendFailure, "tfidf", "boom")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
}

func TestWarning_String(t *testing.T) {
	assert.Equal(t, "configuration: fixed", Warning{Kind: KindConfiguration, Message: "fixed"}.String())
	assert.Equal(t, "backend_failure [tfidf]: empty vocabulary",
		Warning{Kind: KindBackendFailure, Signal: "tfidf", Message: "empty vocabulary"}.String())
}
