package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/grocerycompare/internal/client/client"
	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/pricing"
	"github.com/dmitrijs2005/grocerycompare/internal/client/repositories/searches"
	"github.com/dmitrijs2005/grocerycompare/internal/common"
	"github.com/dmitrijs2005/grocerycompare/internal/logging"
)

// ErrStale is returned when a newer request of the same kind was issued
// while this one was in flight.
var ErrStale = errors.New("response superseded by a newer request")

// SearchView is a search result with its prices ranked.
type SearchView struct {
	Query   string
	Result  *models.SearchResult
	Ranking pricing.Ranking
}

type ProductView struct {
	Product *models.Product
	Ranking pricing.Ranking
}

type CatalogService interface {
	Search(ctx context.Context, productName string) (*SearchView, error)
	Product(ctx context.Context, id int64) (*ProductView, error)
	// Predict returns the backend's failure variant (Prediction.Failure)
	// instead of an error when there is too little price history.
	Predict(ctx context.Context, params models.PredictionParams) (*models.Prediction, error)
	History(ctx context.Context) ([]models.SearchHistoryItem, error)
	Recent(ctx context.Context, limit int) ([]*models.RecentSearch, error)
	// Close fences out every in-flight request.
	Close()
}

type catalogService struct {
	client  client.Client
	recent  searches.Repository
	log     logging.Logger
	search  Fence
	product Fence
	predict Fence
	history Fence
}

func NewCatalogService(c client.Client, recent searches.Repository, log logging.Logger) CatalogService {
	if log == nil {
		log = logging.Nop()
	}
	return &catalogService{client: c, recent: recent, log: log}
}

func (s *catalogService) Search(ctx context.Context, productName string) (*SearchView, error) {
	query := strings.TrimSpace(productName)
	if query == "" {
		return nil, fmt.Errorf("%w: product name is required", common.ErrValidation)
	}

	gen := s.search.Next()
	res, err := s.client.Search(ctx, query)
	if !s.search.IsCurrent(gen) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}

	prices := res.Prices
	if prices == nil && res.Product != nil {
		prices = res.Product.Prices
	}
	view := &SearchView{Query: query, Result: res, Ranking: pricing.Rank(prices)}
	if view.Ranking.Dropped > 0 {
		s.log.Debug(ctx, "dropped malformed price records", "query", query, "dropped", view.Ranking.Dropped)
	}

	s.remember(ctx, view)
	return view, nil
}

func (s *catalogService) remember(ctx context.Context, v *SearchView) {
	if s.recent == nil {
		return
	}
	rs := &models.RecentSearch{Query: v.Query, Offers: len(v.Ranking.Offers), Lowest: v.Ranking.Lowest}
	if v.Result.Product != nil {
		id := v.Result.Product.ID
		rs.ProductID = &id
	}
	if err := s.recent.Add(ctx, rs); err != nil {
		s.log.Warn(ctx, "record recent search", "error", err)
	}
}

func (s *catalogService) Product(ctx context.Context, id int64) (*ProductView, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: product id must be positive", common.ErrValidation)
	}

	gen := s.product.Next()
	p, err := s.client.Product(ctx, id)
	if !s.product.IsCurrent(gen) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return &ProductView{Product: p, Ranking: pricing.Rank(p.Prices)}, nil
}

func (s *catalogService) Predict(ctx context.Context, params models.PredictionParams) (*models.Prediction, error) {
	params.ProductName = strings.TrimSpace(params.ProductName)
	params.StoreName = strings.TrimSpace(params.StoreName)
	if params.ProductID <= 0 && params.ProductName == "" {
		return nil, fmt.Errorf("%w: product id or name is required", common.ErrValidation)
	}

	gen := s.predict.Next()
	p, err := s.client.Predict(ctx, params)
	if !s.predict.IsCurrent(gen) {
		return nil, ErrStale
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.AvailableRecords != nil {
		return &models.Prediction{
			ProductID:        params.ProductID,
			ProductName:      params.ProductName,
			StoreName:        params.StoreName,
			Error:            apiErr.Message,
			AvailableRecords: apiErr.AvailableRecords,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) History(ctx context.Context) ([]models.SearchHistoryItem, error) {
	gen := s.history.Next()
	h, err := s.client.SearchHistory(ctx)
	if !s.history.IsCurrent(gen) {
		return nil, ErrStale
	}
	return h, err
}

func (s *catalogService) Recent(ctx context.Context, limit int) ([]*models.RecentSearch, error) {
	if s.recent == nil {
		return []*models.RecentSearch{}, nil
	}
	return s.recent.Recent(ctx, limit)
}

func (s *catalogService) Close() {
	s.search.Close()
	s.product.Close()
	s.predict.Close()
	s.history.Close()
}
