package searches

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, s *models.RecentSearch) error {
	if s.SearchedAt.IsZero() {
		s.SearchedAt = time.Now()
	}

	var productID sql.NullInt64
	if s.ProductID != nil {
		productID = sql.NullInt64{Int64: *s.ProductID, Valid: true}
	}
	var lowest sql.NullFloat64
	if s.Lowest != nil {
		lowest = sql.NullFloat64{Float64: *s.Lowest, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO searches (query, product_id, offers, lowest, searched_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.Query, productID, s.Offers, lowest, s.SearchedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("add search %q: %w", s.Query, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add search %q: %w", s.Query, err)
	}
	s.ID = id
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]*models.RecentSearch, error) {
	if limit <= 0 {
		return []*models.RecentSearch{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, query, product_id, offers, lowest, searched_at
		FROM searches
		ORDER BY searched_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	result := make([]*models.RecentSearch, 0, limit)
	for rows.Next() {
		var (
			s         models.RecentSearch
			productID sql.NullInt64
			lowest    sql.NullFloat64
			at        int64
		)
		if err := rows.Scan(&s.ID, &s.Query, &productID, &s.Offers, &lowest, &at); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		if productID.Valid {
			s.ProductID = &productID.Int64
		}
		if lowest.Valid {
			s.Lowest = &lowest.Float64
		}
		s.SearchedAt = time.Unix(0, at)
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM searches`); err != nil {
		return fmt.Errorf("clear searches: %w", err)
	}
	return nil
}
