package event

import "fmt"

// Broker topics, one per event type.
const (
	TopicReservationCreated = "reservation-created"
	TopicPaymentConfirmed   = "payment-confirmed"
	TopicPaymentFailed      = "payment-failed"
)

var topicsByType = map[string]string{
	TypeReservationCreated: TopicReservationCreated,
	TypePaymentConfirmed:   TopicPaymentConfirmed,
	TypePaymentFailed:      TopicPaymentFailed,
}

var typesByTopic = map[string]string{
	TopicReservationCreated: TypeReservationCreated,
	TopicPaymentConfirmed:   TypePaymentConfirmed,
	TopicPaymentFailed:      TypePaymentFailed,
}

// TopicFor returns the broker topic for an event type.
func TopicFor(eventType string) (string, error) {
	t, ok := topicsByType[eventType]
	if !ok {
		return "", fmt.Errorf("no topic for event type %q", eventType)
	}
	return t, nil
}

// TypeForTopic returns the event type carried on a topic.
func TypeForTopic(topic string) (string, error) {
	t, ok := typesByTopic[topic]
	if !ok {
		return "", fmt.Errorf("no event type for topic %q", topic)
	}
	return t, nil
}

// DeadLetterTopic returns the dead-letter topic paired with a topic.
func DeadLetterTopic(topic string) string {
	return topic + ".dlt"
}
