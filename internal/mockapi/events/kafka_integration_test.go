//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"neoquiz/internal/mockapi/events"
	"neoquiz/internal/mockapi/models"
	"neoquiz/internal/platform/logger"
	"neoquiz/pkg/testutil/containers"
)

func TestKafkaPublisher_Redpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rp := containers.GetManager().GetRedpanda(t)
	const topic = "neoquiz.account-events.test"

	cl, err := events.NewClient([]string{rp.Broker}, topic)
	require.NoError(t, err)
	require.NoError(t, events.EnsureTopic(ctx, cl, topic, 1, 1))
	require.NoError(t, events.EnsureTopic(ctx, cl, topic, 1, 1), "second call must tolerate an existing topic")

	pub, err := events.NewKafkaPublisher(cl, topic, events.NewLogPublisher(logger.Discard(), nil))
	require.NoError(t, err)
	defer pub.Close()

	sent := models.Event{ID: "e-1", Type: models.EventUserRegistered, UserID: "u-1", OccurredAt: time.Now().UTC()}
	require.NoError(t, pub.Publish(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got models.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, "u-1", string(records[0].Key))
}
