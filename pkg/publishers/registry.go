package publishers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Builder constructs a Publisher from one publishers-file entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Registry maps a publisher type to its Builder.
type Registry map[string]Builder

// DefaultRegistry knows every sink a digest can be announced on.
func DefaultRegistry() Registry {
	return Registry{
		TypeHTTP:   newHTTPPublisher,
		TypeSQS:    newSQSPublisher,
		TypeSNS:    newSNSPublisher,
		TypePubSub: newPubSubPublisher,
	}
}

// Types lists the registered publisher types in sorted order.
func (r Registry) Types() []string {
	out := make([]string, 0, len(r))
	for typ := range r {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Build constructs the publisher for a single entry.
func (r Registry) Build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	builder, ok := r[typ]
	if !ok {
		return nil, fmt.Errorf("publisher %q: unsupported type %q (known: %s)", cfg.ID, cfg.Type, strings.Join(r.Types(), ", "))
	}
	pub, err := builder(ctx, cfg, ensureLogger(log))
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}
	return pub, nil
}

// BuildAll constructs a publisher per entry. When one entry fails, the
// publishers already built are closed before the error is returned.
func (r Registry) BuildAll(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := r.Build(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(err, NewFanout(pubs).Close())
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}
