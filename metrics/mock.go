package metrics

// Noop is a Metrics implementation that records nothing. Used in tests
// and as a default when no registry is wired.
type Noop struct{}

var _ Metrics = (*Noop)(nil)

func (Noop) IncConfirmation(string) {}
func (Noop) IncPromotion()          {}
func (Noop) IncMatchFinalized()     {}
func (Noop) IncStandingsRequest()   {}
