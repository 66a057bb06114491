package eventbus

import (
	"testing"

	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_DecodesRegisteredTypes(t *testing.T) {
	in := &events.ProfitDistributed{RunID: "2026-q3", UserID: uuid.New(), Amount: 16000}
	raw, err := encode(in)
	require.NoError(t, err)

	out, err := decode(raw)
	require.NoError(t, err)
	got, ok := out.(*events.ProfitDistributed)
	require.True(t, ok)
	assert.Equal(t, in.RunID, got.RunID)
	assert.Equal(t, in.UserID, got.UserID)
	assert.Equal(t, in.Amount, got.Amount)
}

func TestEnvelope_RejectsUnknownType(t *testing.T) {
	_, err := decode([]byte(`{"type":"Nope.Happened","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "demony.investment.created", topicNameFor("demony", events.EventTypeInvestmentCreated))
	assert.Equal(t, "demony.dlq.profit.distributed", dlqTopicNameFor("demony", events.EventTypeProfitDistributed))
	assert.Equal(t, "demony-events-dlq", dlqStreamName("demony-events"))
}
