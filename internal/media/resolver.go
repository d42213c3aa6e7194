// Package media turns generated textual descriptions into verified playable
// video identifiers. Media is enrichment, not a hard dependency: every
// failure degrades to an unresolved candidate and never blocks or fails the
// primary content path.
package media

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/aura-wellness-engine/internal/resilience"
)

// Candidate is the outcome of resolving one search phrase. ResolvedID is
// empty unless the id passed embeddability verification.
type Candidate struct {
	Query      string `json:"query"`
	ResolvedID string `json:"resolved_id,omitempty"`
	Verified   bool   `json:"verified"`
}

// Broadener rewrites a failed query into a broader one, typically dropping
// the specific generated title and keeping the category and duration
// descriptor. Configured per feature.
type Broadener func(query string) string

// DefaultMaxConcurrent bounds the resolver's fan-out per orchestrator call
const DefaultMaxConcurrent = 4

// Resolver resolves media candidates against a search backend
type Resolver struct {
	api           SearchAPI
	broaden       Broadener
	maxConcurrent int
	breaker       *resilience.CircuitBreaker
	logger        *zap.Logger
}

// ResolverOption customizes a Resolver
type ResolverOption func(*Resolver)

// WithBroadener sets the feature's query-broadening strategy
func WithBroadener(b Broadener) ResolverOption {
	return func(r *Resolver) { r.broaden = b }
}

// WithMaxConcurrent bounds the fan-out of ResolveMany
func WithMaxConcurrent(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxConcurrent = n
		}
	}
}

// WithBreaker guards the search backend with a circuit breaker
func WithBreaker(cb *resilience.CircuitBreaker) ResolverOption {
	return func(r *Resolver) { r.breaker = cb }
}

// WithResolverLogger attaches a logger
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver over the given search backend
func NewResolver(api SearchAPI, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		api:           api,
		broaden:       DefaultBroadener,
		maxConcurrent: DefaultMaxConcurrent,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchFailure decides which errors count against the resolver's circuit
// breaker. A miss is an ordinary outcome; only quota and auth failures
// indicate the backend is unusable.
func SearchFailure(err error) bool {
	switch resilience.KindOf(err) {
	case resilience.KindMediaQuota, resilience.KindMediaAuth:
		return true
	default:
		return false
	}
}

// ResolveOne searches for the query, verifies the top hit is currently
// embeddable and public, and retries once with a broadened query when the
// specific one yields nothing playable. An unresolvable query returns a
// candidate with an empty id rather than an error.
func (r *Resolver) ResolveOne(ctx context.Context, query string) Candidate {
	if id, ok := r.lookup(ctx, query); ok {
		return Candidate{Query: query, ResolvedID: id, Verified: true}
	}

	if r.broaden != nil {
		broadened := r.broaden(query)
		if broadened != "" && broadened != query {
			r.logger.Debug("Retrying with broadened query",
				zap.String("query", query),
				zap.String("broadened", broadened))
			if id, ok := r.lookup(ctx, broadened); ok {
				return Candidate{Query: query, ResolvedID: id, Verified: true}
			}
		}
	}

	return Candidate{Query: query}
}

// ResolveMany resolves all queries concurrently with bounded fan-out. The
// output preserves input order regardless of completion order, and a slow or
// failed query never delays or fails the others.
func (r *Resolver) ResolveMany(ctx context.Context, queries []string) []Candidate {
	results := make([]Candidate, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)

	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			results[i] = r.ResolveOne(gctx, query)
			return nil
		})
	}

	// Workers never return errors; failures are already absorbed into
	// unresolved candidates.
	_ = g.Wait()
	return results
}

// lookup performs one search plus status verification round
func (r *Resolver) lookup(ctx context.Context, query string) (string, bool) {
	var id string
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		found, err := r.api.Search(ctx, query)
		if err != nil {
			return err
		}
		status, err := r.api.Status(ctx, found)
		if err != nil {
			return err
		}
		if !status.Playable() {
			return resilience.NewError(resilience.KindMediaNotFound,
				"top result is not currently playable", nil)
		}
		id = found
		return nil
	})
	if err != nil {
		r.logger.Warn("Media lookup failed",
			zap.String("query", query),
			zap.String("kind", string(resilience.KindOf(err))),
			zap.Error(err))
		return "", false
	}
	return id, true
}

// DefaultBroadener keeps the trailing descriptor words of a query, dropping
// the specific generated title in front. Features with richer structure
// supply their own Broadener.
func DefaultBroadener(query string) string {
	words := strings.Fields(query)
	if len(words) <= 3 {
		return ""
	}
	return strings.Join(words[len(words)-3:], " ")
}
