package dto

import (
	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// AccountResponse is the API shape of a chart-of-accounts node.
type AccountResponse struct {
	AccountID   string  `json:"accountID"`
	AccountCode string  `json:"accountCode"`
	Name        string  `json:"name"`
	AccountType string  `json:"accountType"`
	ParentID    *string `json:"parentAccountID,omitempty"`
	IsLeaf      bool    `json:"isLeaf"`
	IsActive    bool    `json:"isActive"`
}

// ResolveRoleResponse maps a logical role key to a concrete account code.
type ResolveRoleResponse struct {
	Role        string `json:"role"`
	AccountCode string `json:"accountCode"`
}

// ToAccountResponse converts a domain Account to its API shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		AccountCode: a.AccountCode,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		ParentID:    a.ParentAccountID,
		IsLeaf:      a.IsLeaf,
		IsActive:    a.IsActive,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}
