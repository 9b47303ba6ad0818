package graph

import (
	"context"

	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// DefaultHops is the neighborhood radius used when the caller passes hops ≤ 0.
const DefaultHops = 2

// Extractor materializes the neighborhood of a root entity as an induced
// subgraph.  It is a thin policy layer over Store.FetchNeighborhood: the store
// gathers candidate nodes and edges, the extractor enforces the induced-edge
// invariant and the canonical ordering.
type Extractor struct {
	store  Store
	logger logging.Logger
}

// NewExtractor constructs an Extractor.
func NewExtractor(store Store, logger logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{store: store, logger: logger.Named("extractor")}
}

// Extract returns the induced subgraph within hops of rootID.  The root check
// runs first so that a missing entity is reported as CodeEntityNotFound before
// any traversal work happens.  Extraction is read-only and idempotent: two
// calls against an unchanged snapshot return equal subgraphs.
func (e *Extractor) Extract(ctx context.Context, rootID string, hops int) (*Subgraph, error) {
	if rootID == "" {
		return nil, errors.InvalidParam("root entity id must not be empty")
	}
	if hops <= 0 {
		hops = DefaultHops
	}

	ok, err := e.store.HasCompany(ctx, rootID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNeighborhoodExtraction, "root existence check failed")
	}
	if !ok {
		return nil, errors.EntityNotFound(rootID)
	}

	sub, err := e.store.FetchNeighborhood(ctx, rootID, hops)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNeighborhoodExtraction, "neighborhood fetch failed")
	}

	sub.RootID = rootID
	sub.Hops = hops
	sub.Normalize()

	e.logger.Debug("neighborhood extracted",
		logging.String("root", rootID),
		logging.Int("hops", hops),
		logging.Int("nodes", len(sub.Nodes)),
		logging.Int("edges", len(sub.Edges)))

	return sub, nil
}
