package publish_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stroniax/rabbit-eye/internal/publish"
	"github.com/Stroniax/rabbit-eye/internal/table"
)

func TestEncodeProducesTaggedEnvelope(t *testing.T) {
	change := table.Change[string]{Kind: table.KindUpdate, Key: "/var/data/a.txt"}

	b, err := publish.Encode(change)
	require.NoError(t, err)

	var msg publish.Message
	require.NoError(t, json.Unmarshal(b, &msg))
	assert.Equal(t, "update", msg.Kind)
	assert.Equal(t, "/var/data/a.txt", msg.Key)
}

func TestEncodeDistinguishesKinds(t *testing.T) {
	for _, kind := range []table.Kind{table.KindNew, table.KindUpdate, table.KindDelete} {
		b, err := publish.Encode(table.Change[string]{Kind: kind, Key: "k"})
		require.NoError(t, err)
		var msg publish.Message
		require.NoError(t, json.Unmarshal(b, &msg))
		assert.Equal(t, kind.String(), msg.Kind)
	}
}
