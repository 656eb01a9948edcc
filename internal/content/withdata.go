package content

import "context"

// Handler produces a page's data from its runtime props.
type Handler[P, R any] func(ctx context.Context, props P) (R, error)

// FetchFunc receives the loaded content and returns the page's Handler.
type FetchFunc[P, R any] func(data Mapping) Handler[P, R]

// WithData loads every file named by specifiers once and returns a Handler
// that hands the mapping to fetch on each call, then runs the handler fetch
// returns with the caller's props. Load errors surface here, not at call time.
func WithData[P, R any](l *Loader, fetch FetchFunc[P, R], specifiers ...string) (Handler[P, R], error) {
	data, err := l.Load(specifiers...)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, props P) (R, error) {
		return fetch(data)(ctx, props)
	}, nil
}
