//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"agency/pkg/platform/telemetry"
	"agency/pkg/platform/telemetry/publishers/kafka"
	"agency/pkg/testutil/containers"
)

func TestPublisher_ProducesJSONKeyedByVisitor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "telemetry-" + t.Name()
	pub, err := kafka.New(broker.Brokers, topic)
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.EnsureTopic(ctx, 1, 1))
	require.NoError(t, pub.EnsureTopic(ctx, 1, 1), "second create must tolerate an existing topic")

	sent := telemetry.Event{
		Name:       telemetry.EventConsentAccepted,
		VisitorID:  "visitor-1",
		Properties: map[string]string{"consent_id": "analytics-cookies"},
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "visitor-1", string(records[0].Key))
	var got telemetry.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, sent.Name, got.Name)
	assert.Equal(t, sent.Properties, got.Properties)
	assert.True(t, sent.Timestamp.Equal(got.Timestamp))
}
