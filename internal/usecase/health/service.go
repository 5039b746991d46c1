package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot answer questions.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckEmpty indicates the corpus is loaded but has no documents.
	CheckEmpty CheckResult = "empty"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status          Status
	Checks          map[string]CheckResult
	CorpusDocuments int
}

// Service coordinates health checks.
type Service struct {
	corpus   CorpusInfo
	cache    CachePinger
	upstream map[string]Checker
}

// New creates a Service over the loaded corpus.
func New(corpus CorpusInfo) *Service {
	return &Service{corpus: corpus, upstream: make(map[string]Checker)}
}

// WithCache adds the embedding cache check. A nil pinger is ignored.
func (s *Service) WithCache(cache CachePinger) *Service {
	s.cache = cache
	return s
}

// WithChecker adds a named upstream check. A nil checker is ignored.
func (s *Service) WithChecker(name string, c Checker) *Service {
	if c != nil {
		s.upstream[name] = c
	}
	return s
}

// Check runs health checks against all components. A missing corpus is
// unhealthy; any other failure only degrades the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	docs := 0
	switch {
	case s.corpus == nil:
		checks["corpus"] = CheckError
		status = Unhealthy
	case s.corpus.Size() == 0:
		checks["corpus"] = CheckEmpty
		status = Degraded
	default:
		docs = s.corpus.Size()
		checks["corpus"] = CheckOK
	}

	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}

	names := make([]string, 0, len(s.upstream))
	for name := range s.upstream {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		checks[name] = result(s.upstream[name].HealthCheck(ctx))
	}

	if status == Healthy {
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks, CorpusDocuments: docs}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
