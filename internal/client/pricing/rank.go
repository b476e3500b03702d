package pricing

import (
	"sort"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
)

// Offer is a normalized price record. Store and StoreName always hold the
// same resolved identifier, Link and ProductURL the same resolved URL.
type Offer struct {
	Store      string
	StoreName  string
	Price      float64
	Currency   string
	InStock    bool
	Link       string
	ProductURL string
	Cached     bool
	BestPrice  bool
}

// Ranking is the result of Rank. Lowest and Highest are nil iff Offers is empty.
type Ranking struct {
	Offers  []Offer
	Lowest  *float64
	Highest *float64
	Dropped int
}

// Empty reports whether no valid offer survived normalization.
func (r Ranking) Empty() bool {
	return len(r.Offers) == 0
}

// Rank deduplicates records by store, drops invalid ones and sorts the rest
// by ascending price. The input is not modified.
func Rank(records []*models.PriceRecord) Ranking {
	offers := make([]Offer, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0

	for _, r := range records {
		if r == nil {
			dropped++
			continue
		}
		store := r.StoreID()
		price, ok := r.Price.Float()
		if store == "" || !ok || price <= 0 {
			dropped++
			continue
		}
		if _, dup := seen[store]; dup {
			dropped++
			continue
		}
		seen[store] = struct{}{}

		url := r.URL()
		offers = append(offers, Offer{
			Store:      store,
			StoreName:  store,
			Price:      price,
			Currency:   r.CurrencyCode(),
			InStock:    r.InStock,
			Link:       url,
			ProductURL: url,
			Cached:     r.Cached,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})

	res := Ranking{Offers: offers, Dropped: dropped}
	if len(offers) == 0 {
		return res
	}

	lowest := offers[0].Price
	highest := offers[len(offers)-1].Price
	res.Lowest = &lowest
	res.Highest = &highest

	for i := range offers {
		offers[i].BestPrice = offers[i].Price == lowest
	}
	return res
}
