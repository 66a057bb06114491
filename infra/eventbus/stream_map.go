package eventbus

import (
	"fmt"
	"strings"

	"github.com/demonyhq/demony/pkg/domain/events"
)

// topicNameFor maps "Investment.Created" to "<prefix>.investment.created".
func topicNameFor(prefix string, eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", prefix, strings.ToLower(eventType.String()))
}

func dlqTopicNameFor(prefix string, eventType events.EventType) string {
	return topicNameFor(prefix+".dlq", eventType)
}

func dlqStreamName(stream string) string {
	return stream + "-dlq"
}
