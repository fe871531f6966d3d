// Package webhooks verifies and dispatches Easyship webhook deliveries.
//
// A delivery moves through received -> signature_checked -> type_extracted ->
// validated_fired -> dispatched. A rejected signature or an unknown event type
// ends the delivery before any listener runs.
package webhooks
