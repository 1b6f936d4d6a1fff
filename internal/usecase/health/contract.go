package health

import "context"

// StorePinger checks search store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the product index has been provisioned.
type IndexChecker interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}
