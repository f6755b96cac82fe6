package compare

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ahmedmhm/bimdiff/internal/config"
	"github.com/ahmedmhm/bimdiff/internal/index"
	"github.com/ahmedmhm/bimdiff/internal/models"
)

// Engine runs complete comparisons between two model versions. An Engine is
// stateless across runs: each run builds its own indices and is safe to
// repeat with different inputs.
type Engine struct {
	cfg *config.Config
	log *zap.Logger
}

// NewEngine validates the configuration and returns an engine. An invalid
// configuration rejects the engine before any comparison can start.
func NewEngine(cfg *config.Config, log *zap.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Run compares two model versions and returns the full comparison result.
// Matching completes before any comparator starts; per-pair comparisons then
// fan out over a bounded worker pool, each writing its verdict to a fixed
// slot so the output ordering is reproducible byte for byte. If the context
// is cancelled, remaining pairs are abandoned and no partial result is
// returned.
func (e *Engine) Run(ctx context.Context, oldModel, newModel *models.Model) (*models.ComparisonResult, error) {
	oldIdx, err := index.Build(oldModel)
	if err != nil {
		return nil, fmt.Errorf("index old version: %w", err)
	}
	newIdx, err := index.Build(newModel)
	if err != nil {
		return nil, fmt.Errorf("index new version: %w", err)
	}

	matches := Match(oldIdx, newIdx)
	e.log.Debug("elements matched",
		zap.Int("total", len(matches)),
		zap.Int("old", oldIdx.Len()),
		zap.Int("new", newIdx.Len()),
	)

	verdicts := make([]models.ElementVerdict, len(matches))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.cfg.WorkerCount(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				verdicts[i] = e.comparePair(matches[i])
			}
		}()
	}

feed:
	for i := range matches {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Partial results are not a valid ComparisonResult.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.ComparisonResult{
		OldVersion: oldModel.Version,
		NewVersion: newModel.Version,
		Verdicts:   verdicts,
	}
	for _, v := range verdicts {
		switch v.Classification {
		case models.ClassAdded:
			result.Summary.Added++
		case models.ClassDeleted:
			result.Summary.Deleted++
		case models.ClassModified:
			result.Summary.Modified++
		case models.ClassUnchanged:
			result.Summary.Unchanged++
		}
	}

	e.log.Info("comparison complete",
		zap.Int("added", result.Summary.Added),
		zap.Int("deleted", result.Summary.Deleted),
		zap.Int("modified", result.Summary.Modified),
		zap.Int("unchanged", result.Summary.Unchanged),
	)
	return result, nil
}

// comparePair evaluates the tiers for one match. The geometric tier's skip
// decision is resolved before the shape tier runs; a failed geometric tier
// never skips the shape tier, since a skip needs positive evidence that the
// summary descriptors are unchanged.
func (e *Engine) comparePair(m models.MatchResult) models.ElementVerdict {
	if m.Kind != models.MatchMatched {
		return Aggregate(m, models.TierDiff{}, models.TierDiff{}, nil)
	}

	semantic := e.safeTier(m.ID, models.TierSemantic, func() models.TierDiff {
		return SemanticDiff(m.Old, m.New, e.cfg.SemanticTolerance)
	})
	geometric := e.safeTier(m.ID, models.TierGeometric, func() models.TierDiff {
		return GeometricDiff(m.Old.Geometry, m.New.Geometry, e.cfg.Geometric)
	})

	var shape *models.TierDiff
	skip := e.cfg.SkipShapeWhenGeometryUnchanged && !geometric.Changed && !geometric.Failed
	if !skip {
		s := e.safeTier(m.ID, models.TierShape, func() models.TierDiff {
			return ShapeDiff(m.Old.Geometry, m.New.Geometry, e.cfg.ShapeGridResolution, e.cfg.ShapeHausdorffThreshold)
		})
		shape = &s
	}

	return Aggregate(m, semantic, geometric, shape)
}

// safeTier downgrades a comparator panic (e.g. a malformed property graph on
// one element) to a failed tier diff so the pair is flagged for manual
// review instead of aborting the run or passing as unchanged.
func (e *Engine) safeTier(id string, tier models.Tier, fn func() models.TierDiff) (diff models.TierDiff) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("tier comparison failed",
				zap.String("element", id),
				zap.String("tier", string(tier)),
				zap.Any("cause", r),
			)
			diff = models.TierDiff{Tier: tier, Failed: true}
		}
	}()
	return fn()
}
