// Package searches keeps a local log of the user's recent product searches.
package searches

import (
	"context"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
)

type Repository interface {
	// Add records s and fills in its ID.
	Add(ctx context.Context, s *models.RecentSearch) error
	// Recent returns at most limit searches, newest first.
	Recent(ctx context.Context, limit int) ([]*models.RecentSearch, error)
	Clear(ctx context.Context) error
}
