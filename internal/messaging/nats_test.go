package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisherWithoutURLIsNoop(t *testing.T) {
	publisher, err := NewPublisher(Config{})
	require.NoError(t, err)

	assert.IsType(t, NoopPublisher{}, publisher)
	assert.NoError(t, publisher.Publish("hold.started", map[string]string{"reservation_id": "res-1"}))
	assert.NoError(t, publisher.Close())
}

func TestNewNATSClientFailsWithoutServer(t *testing.T) {
	_, err := NewNATSClient(Config{URL: "nats://127.0.0.1:1", ClusterID: "test", ClientID: "holdagent"})
	assert.Error(t, err)
}
