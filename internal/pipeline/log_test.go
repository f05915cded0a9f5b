package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPluginCallsNextAndMutatesNothing(t *testing.T) {
	p := NewLogPlugin(NewEventManager())
	rec := NewRecord("조식 시간이 어떻게 되나요?", "josun_palace", nil, nil)
	rec.DetectedCategory = "dining"
	rec.IsValidQuery = true
	rec.EvidencePassed = true
	rec.PolicyReason = "ok"
	rec.TotalElapsed = 5 * time.Millisecond

	called := false
	err := p.OnEvent(context.Background(), Log, rec, func() *NodeError { called = true; return nil })
	require.Nil(t, err)
	assert.True(t, called)
	assert.Equal(t, "josun_palace", rec.Hotel, "LogPlugin must not mutate the record it observes")
}
