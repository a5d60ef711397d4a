// Package mocks provides shared test doubles for the store, mail and auth
// interfaces.
//
// Each mock keeps a small in-memory implementation as its default behavior,
// and every method can be overridden through a function field:
//
//	users := mocks.NewMockUserStore()
//	users.GetByTokenFn = func(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
//	    return nil, store.ErrUserNotFound
//	}
package mocks
