package changefeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelName(t *testing.T) {
	assert.Equal(t,
		"changefeed:chat_messages:thread_id=42",
		ChannelName("chat_messages", "thread_id", "42"),
	)

	// Разные фильтры не должны пересекаться по каналам
	assert.NotEqual(t,
		ChannelName("chat_messages", "thread_id", "a"),
		ChannelName("chat_messages", "thread_id", "b"),
	)
}
