package usecase

import "context"

// UserDirectory answers whether a user id refers to a real account.
type UserDirectory interface {
	EnsureUserExists(ctx context.Context, userID string) error
}

// ProductCatalog answers whether a product id refers to a real listing.
type ProductCatalog interface {
	EnsureProductExists(ctx context.Context, productID string) error
}

// TransactionManager exposes the store's transactional capability. Whether
// multi-document transactions are available depends on the deployment
// topology, probed at runtime and cached by the implementation.
type TransactionManager interface {
	SupportsTransactions(ctx context.Context) bool
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
