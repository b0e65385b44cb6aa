package services

import (
	"context"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// ChartOfAccountsSvcFacade resolves account codes and logical roles. It is
// read-only from the posting engine's perspective.
type ChartOfAccountsSvcFacade interface {
	// Resolve returns the account for a code, or ErrAccountNotFound.
	Resolve(ctx context.Context, accountCode string) (*domain.Account, error)
	// ResolveMany resolves a set of codes in one round trip.
	ResolveMany(ctx context.Context, accountCodes []string) (map[string]domain.Account, error)
	// ResolveRole maps a logical role key (e.g. "cash") to a concrete account
	// code, preferring active leaf accounts and falling back to the
	// conventional default code for the role.
	ResolveRole(ctx context.Context, role domain.AccountRole) (string, error)
	// Validate returns nil only if the account exists, is active, and is a leaf.
	Validate(ctx context.Context, accountCode string) error
	ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error)
}
