package event

import (
	"encoding/json"
	"fmt"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
)

// DecodeFunc turns a serialized payload back into a typed Event.
type DecodeFunc func(payload []byte) (Event, error)

// Registry maps event type tags to decoders. It is built once at startup and
// read-only afterwards, so lookups need no locking. Resolving decoders
// through an explicit table keeps the wire contract statically checkable;
// there is no runtime type-name lookup anywhere in the pipeline.
type Registry struct {
	decoders map[string]DecodeFunc
}

// NewRegistry returns a registry with all platform events pre-registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]DecodeFunc)}
	r.Register(TypeReservationCreated, decodeJSON[ReservationCreated])
	r.Register(TypePaymentConfirmed, decodeJSON[PaymentConfirmed])
	r.Register(TypePaymentFailed, decodeJSON[PaymentFailed])
	return r
}

// Register adds a decoder for the given event type, replacing any previous
// registration. It must only be called during startup wiring.
func (r *Registry) Register(eventType string, fn DecodeFunc) {
	r.decoders[eventType] = fn
}

// Decode resolves the decoder for eventType and applies it to payload.
// An unregistered type yields ErrUnknownEventType.
func (r *Registry) Decode(eventType string, payload []byte) (Event, error) {
	fn, ok := r.decoders[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrUnknownEventType, eventType)
	}
	return fn(payload)
}

// Known reports whether eventType has a registered decoder.
func (r *Registry) Known(eventType string) bool {
	_, ok := r.decoders[eventType]
	return ok
}

func decodeJSON[T Event](payload []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.EventType(), err)
	}
	return e, nil
}

// Encode serializes an event to its outbox/broker payload.
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.EventType(), err)
	}
	return payload, nil
}
