package dupcheck

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/josegonzalez/dupcheck/pkg/cache"
	"github.com/josegonzalez/dupcheck/pkg/internal/matching"
	"github.com/josegonzalez/dupcheck/pkg/internal/normalization"
)

// ctxCheckInterval is how many pool records are scored between cancellation checks.
const ctxCheckInterval = 256

// Source supplies the existing records of one entity type.
// This is defined here to avoid import cycles between dupcheck and source packages.
type Source interface {
	// Name returns the source name (e.g., "memory", "file").
	Name() string

	// Records returns every existing record of the entity type.
	Records(ctx context.Context, entity EntityType) ([]Record, error)

	// Close releases source resources.
	Close() error
}

// Detector ranks existing records as likely duplicates of a candidate.
// It holds no per-call state and is safe for concurrent use.
type Detector struct {
	config Config
	cache  cache.Cache
	logger *zap.Logger
}

// NewDetector creates a new detector with the given options.
func NewDetector(opts ...Option) (*Detector, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &Detector{
		config: config,
		logger: config.Logger,
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	d.cache = d.initCache()

	return d, nil
}

func (d *Detector) initCache() cache.Cache {
	switch d.config.Cache.Backend {
	case "memory":
		return cache.NewPrefixedCache(cache.NewMemoryCache(
			cache.WithMaxSize(d.config.Cache.MaxSize),
			cache.WithDefaultTTL(time.Duration(d.config.Cache.TTL)*time.Second),
		), "normalize")
	case "null":
		return cache.NewNullCache()
	default:
		return nil
	}
}

// Config returns a copy of the detector configuration.
func (d *Detector) Config() Config {
	return d.config
}

func (d *Detector) scorer(ctx context.Context) *matching.Scorer {
	fold := d.config.FoldDiacritics
	normalize := func(s string) string {
		return normalization.NormalizeString(s, fold)
	}
	if d.cache != nil {
		normalize = cache.Memoize(ctx, d.cache, normalize)
	}
	return matching.NewScorer(normalize)
}

// Detect runs duplicate detection for a candidate against the existing pool.
// The pool must be non-nil; an empty pool yields an empty, low-confidence result.
func (d *Detector) Detect(entity EntityType, candidate Record, pool []Record) (*DuplicateDetectionResult, error) {
	return d.DetectContext(context.Background(), entity, candidate, pool)
}

// DetectContext is Detect with cancellation. Large pools are scored concurrently
// when parallelism is configured; the result is identical to sequential scoring.
func (d *Detector) DetectContext(ctx context.Context, entity EntityType, candidate Record, pool []Record) (*DuplicateDetectionResult, error) {
	start := time.Now()

	rs, err := RulesFor(entity)
	if err != nil {
		return nil, err
	}
	if err := checkInputs(entity, candidate, pool); err != nil {
		return nil, err
	}

	scorer := d.scorer(ctx)

	var matches []DuplicateMatch
	if d.config.ParallelThreshold > 0 && len(pool) >= d.config.ParallelThreshold {
		matches, err = d.scoreParallel(ctx, rs, scorer, candidate, pool)
	} else {
		matches, err = scoreSequential(ctx, rs, scorer, candidate, pool)
	}
	if err != nil {
		return nil, err
	}

	result := Rank(matches, rs, d.config.MaxResults)

	if ce := d.logger.Check(zap.DebugLevel, "duplicate detection complete"); ce != nil {
		top := 0
		if m := result.TopMatch(); m != nil {
			top = m.Score
		}
		ce.Write(
			zap.String("entity", string(entity)),
			zap.Int("pool_size", len(pool)),
			zap.Int("admitted", len(matches)),
			zap.Int("top_score", top),
			zap.String("confidence", string(result.Confidence)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	return result, nil
}

func scoreSequential(ctx context.Context, rs RuleSet, scorer *matching.Scorer, candidate Record, pool []Record) ([]DuplicateMatch, error) {
	var matches []DuplicateMatch
	for i, existing := range pool {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if m, ok := aggregate(NewPair(candidate, existing, scorer), rs); ok {
			matches = append(matches, *m)
		}
	}
	return matches, nil
}

// scoreParallel splits the pool into contiguous chunks. Each slot of results
// belongs to exactly one goroutine, so pool order survives without locking.
func (d *Detector) scoreParallel(ctx context.Context, rs RuleSet, scorer *matching.Scorer, candidate Record, pool []Record) ([]DuplicateMatch, error) {
	results := make([]*DuplicateMatch, len(pool))
	workers := d.config.Workers
	chunk := (len(pool) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < len(pool); lo += chunk {
		lo := lo // per-iteration copy; go directive is 1.21 (pre-1.22 loopvar semantics)
		hi := min(lo+chunk, len(pool))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if m, ok := aggregate(NewPair(candidate, pool[i], scorer), rs); ok {
					results[i] = m
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matches []DuplicateMatch
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	return matches, nil
}

// DetectFromSource loads the pool from a record source and runs detection.
// A source that returns no records is treated as an empty pool.
func (d *Detector) DetectFromSource(ctx context.Context, entity EntityType, candidate Record, src Source) (*DuplicateDetectionResult, error) {
	if src == nil {
		return nil, &ArgumentError{Arg: "source", Details: "must not be nil"}
	}

	pool, err := src.Records(ctx, entity)
	if err != nil {
		d.logger.Warn("record source failed",
			zap.String("source", src.Name()),
			zap.String("entity", string(entity)),
			zap.Error(err),
		)
		return nil, &SourceError{Source: src.Name(), Entity: entity, Err: err}
	}
	if pool == nil {
		pool = []Record{}
	}

	return d.DetectContext(ctx, entity, candidate, pool)
}

// Explain evaluates every rule for one candidate/existing pair and reports
// each rule's outcome alongside a reference Jaro-Winkler similarity.
func (d *Detector) Explain(entity EntityType, candidate, existing Record) (*Explanation, error) {
	rs, err := RulesFor(entity)
	if err != nil {
		return nil, err
	}
	if err := checkRecord(entity, "candidate", candidate, -1); err != nil {
		return nil, err
	}
	if err := checkRecord(entity, "existing", existing, -1); err != nil {
		return nil, err
	}

	scorer := d.scorer(context.Background())
	p := NewPair(candidate, existing, scorer)

	exp := &Explanation{
		Entity:    entity,
		ID:        existing.RecordID(),
		Rules:     make([]RuleOutcome, 0, len(rs.Rules)),
		Threshold: rs.Threshold,
	}
	for _, r := range rs.Rules {
		c, e := candidate.Value(r.Field), existing.Value(r.Field)
		outcome := RuleOutcome{
			Label:               r.Label,
			Field:               r.Field,
			Points:              r.Points,
			Present:             p.Present(r.Field),
			Similarity:          p.Similarity(r.Field),
			ReferenceSimilarity: scorer.ReferenceSimilarity(c, e),
		}
		if p.Fires(r) {
			outcome.Fired = true
			exp.Score += r.Points
		}
		exp.Rules = append(exp.Rules, outcome)
	}
	exp.Admitted = exp.Score >= rs.Threshold

	return exp, nil
}

// Normalize normalizes a value the way the detector does before comparing it.
func (d *Detector) Normalize(s string) string {
	return d.scorer(context.Background()).Normalize(s)
}

// Similarity returns the heuristic similarity of two raw values in [0, 100].
func (d *Detector) Similarity(a, b string) int {
	return d.scorer(context.Background()).Similarity(a, b)
}

// ReferenceSimilarity returns the Jaro-Winkler similarity of two raw values in
// [0, 100]. It is for reviewing rule calibration and never affects detection.
func (d *Detector) ReferenceSimilarity(a, b string) int {
	return d.scorer(context.Background()).ReferenceSimilarity(a, b)
}

// CacheStats returns normalization cache statistics, if a cache is configured.
func (d *Detector) CacheStats(ctx context.Context) (cache.Stats, bool) {
	sp, ok := d.cache.(cache.StatsProvider)
	if !ok {
		return cache.Stats{}, false
	}
	stats, err := sp.Stats(ctx)
	if err != nil {
		return cache.Stats{}, false
	}
	return stats, true
}

// Close releases the detector's cache.
func (d *Detector) Close() error {
	if d.cache != nil {
		return d.cache.Close()
	}
	return nil
}

// defaultDetector backs the package-level Detect. It has no cache and needs no Close.
var defaultDetector = &Detector{config: DefaultConfig(), logger: zap.NewNop()}

// Detect runs duplicate detection with the default configuration.
func Detect(entity EntityType, candidate Record, pool []Record) (*DuplicateDetectionResult, error) {
	return defaultDetector.Detect(entity, candidate, pool)
}

func checkInputs(entity EntityType, candidate Record, pool []Record) error {
	if err := checkRecord(entity, "candidate", candidate, -1); err != nil {
		return err
	}
	if pool == nil {
		return &ArgumentError{Arg: "pool", Details: "must not be nil"}
	}
	for i, r := range pool {
		if err := checkRecord(entity, "pool", r, i); err != nil {
			return err
		}
	}
	return nil
}

// checkRecord rejects nil records and records of another entity type.
// index is the pool position and is ignored for other arguments.
func checkRecord(entity EntityType, arg string, r Record, index int) error {
	if isNilRecord(r) {
		if arg == "pool" {
			return &ArgumentError{Arg: arg, Details: fmt.Sprintf("nil record at index %d", index)}
		}
		return &ArgumentError{Arg: arg, Details: "must not be nil"}
	}
	if got := r.EntityType(); got != entity {
		return &EntityMismatchError{Arg: arg, Expected: entity, Got: got, Index: index}
	}
	return nil
}

func isNilRecord(r Record) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *Lead:
		return v == nil
	case *Account:
		return v == nil
	case *Contact:
		return v == nil
	}
	return false
}
