package webhooks

import "fmt"

type EventType string

const (
	EventLabelCreated               EventType = "shipment.label.created"
	EventLabelFailed                EventType = "shipment.label.failed"
	EventShipmentCancelled          EventType = "shipment.cancelled"
	EventTrackingCheckpointsCreated EventType = "shipment.tracking.checkpoints.created"
	EventTrackingStatusChanged      EventType = "shipment.tracking.status.changed"
	EventWarehouseStateUpdated      EventType = "shipment.warehouse.state.updated"

	// EventWebhookValidated fires for every delivery that passed signature and
	// type checks. It is never a valid event_type in a payload.
	EventWebhookValidated EventType = "webhook.validated"
)

const EventTypeField = "event_type"

// Payload is the decoded JSON object of a delivery.
type Payload map[string]any

var knownEventTypes = []EventType{
	EventLabelCreated,
	EventLabelFailed,
	EventShipmentCancelled,
	EventTrackingCheckpointsCreated,
	EventTrackingStatusChanged,
	EventWarehouseStateUpdated,
}

func KnownEventTypes() []EventType {
	return append([]EventType(nil), knownEventTypes...)
}

func IsKnownEventType(value string) bool {
	for _, known := range knownEventTypes {
		if string(known) == value {
			return true
		}
	}
	return false
}

// ExtractEventType reads event_type from the payload. The value must be a
// string matching one of the known types exactly.
func ExtractEventType(payload Payload) (EventType, error) {
	raw, ok := payload[EventTypeField]
	if !ok {
		return "", &PayloadInvalidError{Reason: "event_type is missing"}
	}
	value, ok := raw.(string)
	if !ok {
		return "", &PayloadInvalidError{
			Reason: fmt.Sprintf("event_type must be a string, got %T", raw),
			Value:  raw,
		}
	}
	if !IsKnownEventType(value) {
		return "", &PayloadInvalidError{
			Reason: fmt.Sprintf("unknown event_type %q", value),
			Value:  value,
		}
	}
	return EventType(value), nil
}
