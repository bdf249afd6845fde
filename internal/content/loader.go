package content

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds each section fetch of the home page.
const DefaultFetchTimeout = 5 * time.Second

// Section is the load state of one collection on the home page.
type Section[T any] struct {
	Items   []T
	Loading bool
	Failed  bool
}

// Empty reports whether the section finished loading with no items.
func (s Section[T]) Empty() bool {
	return !s.Loading && len(s.Items) == 0
}

// Home holds the four collections of the landing page.
type Home struct {
	Skills       Section[Skill]
	Projects     Section[Project]
	Services     Section[Service]
	Testimonials Section[Testimonial]
}

// LoadHome fetches every collection concurrently. A failing fetch is
// logged and leaves its section empty; the other sections are unaffected.
func LoadHome(ctx context.Context, src Source, timeout time.Duration, logger *zap.Logger) Home {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	var home Home
	// Errors never propagate out of a fetch, so the group is used only for
	// fan-out and joining.
	var g errgroup.Group
	g.Go(func() error {
		home.Skills = fetch(ctx, timeout, logger, "skills", src.Skills)
		return nil
	})
	g.Go(func() error {
		home.Projects = fetch(ctx, timeout, logger, "projects", src.Projects)
		return nil
	})
	g.Go(func() error {
		home.Services = fetch(ctx, timeout, logger, "services", src.Services)
		return nil
	})
	g.Go(func() error {
		home.Testimonials = fetch(ctx, timeout, logger, "testimonials", src.Testimonials)
		return nil
	})
	_ = g.Wait()
	return home
}

func fetch[T any](ctx context.Context, timeout time.Duration, logger *zap.Logger, name string, fn func(context.Context) ([]T, error)) Section[T] {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	items, err := fn(ctx)
	if err != nil {
		logger.Error("content fetch failed",
			zap.String("section", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Section[T]{Failed: true}
	}
	logger.Debug("content fetched",
		zap.String("section", name),
		zap.Int("items", len(items)),
		zap.Duration("elapsed", time.Since(start)))
	return Section[T]{Items: items}
}
