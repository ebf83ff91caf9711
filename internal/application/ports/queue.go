package ports

import "context"

// QueueMessage is a message destined for a named queue.
type QueueMessage struct {
	Target string
	Body   interface{}
}

// Queue publishes messages for asynchronous consumers (receipt mails,
// analytics). Publishing is best-effort from the caller's point of view.
type Queue interface {
	Publish(ctx context.Context, message *QueueMessage) error
	Close() error
}
