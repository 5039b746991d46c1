package health

import "context"

// CorpusInfo reports the loaded corpus size.
type CorpusInfo interface {
	Size() int
}

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an upstream dependency (embedding provider, account backend).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
