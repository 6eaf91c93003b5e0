package provider

import "context"

// Messenger delivers plain text messages to a phone number
type Messenger interface {
	// SendText sends text to number, which must already carry the country prefix
	SendText(ctx context.Context, number, text string) error

	// Ping checks that the messaging instance is connected
	Ping(ctx context.Context) error
}
