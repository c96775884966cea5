package domain

import "fmt"

// SubscriberID identifies a chat or channel that receives reports.
type SubscriberID string

// Format selects how a notifier renders the text.
type Format int

const (
	FormatPlain Format = iota
	FormatMarkdown
)

// DeliveryError is returned when a notifier fails to deliver a message.
type DeliveryError struct {
	Destination SubscriberID
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Destination, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
