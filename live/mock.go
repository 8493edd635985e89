package live

// NoopPublisher discards all events. Used in tests.
type NoopPublisher struct{}

var _ Publisher = (*NoopPublisher)(nil)

func (NoopPublisher) PublishMatchEvent(int, string, interface{}) {}
