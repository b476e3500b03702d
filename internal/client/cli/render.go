package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/pricing"
	"github.com/dmitrijs2005/grocerycompare/internal/client/services"
)

const rupee = "₹"

// money formats v with two decimals, prefixed by the rupee sign for INR.
func money(v float64, currency string) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	if currency == "" || currency == models.DefaultCurrency {
		return rupee + s
	}
	return s + " " + currency
}

func renderPrices(w io.Writer, name string, r pricing.Ranking) {
	fmt.Fprintf(w, "Price Comparison for %q\n", name)
	if r.Empty() {
		fmt.Fprintln(w, "No prices found for this product.")
		return
	}

	lo, hi := r.Offers[0], r.Offers[len(r.Offers)-1]
	fmt.Fprintf(w, "Lowest: %s  Highest: %s\n", money(*r.Lowest, lo.Currency), money(*r.Highest, hi.Currency))
	for i, o := range r.Offers {
		var b strings.Builder
		fmt.Fprintf(&b, "%2d. %-14s %10s", i+1, o.Store, money(o.Price, o.Currency))
		if o.InStock {
			b.WriteString("  In Stock")
		} else {
			b.WriteString("  Out of Stock")
		}
		if o.BestPrice {
			b.WriteString("  [Best Price]")
		}
		if o.Cached {
			b.WriteString("  (cached)")
		}
		fmt.Fprintln(w, b.String())
		if o.Link != "" {
			fmt.Fprintf(w, "    View on %s → %s\n", o.Store, o.Link)
		}
	}
}

func renderSearch(w io.Writer, v *services.SearchView) {
	if v.Result != nil {
		if v.Result.Warning != "" {
			fmt.Fprintf(w, "Warning: %s\n", v.Result.Warning)
		}
		if v.Result.Message != "" {
			fmt.Fprintln(w, v.Result.Message)
		}
	}
	name := v.Query
	if v.Result != nil && v.Result.Product != nil && v.Result.Product.Name != "" {
		name = v.Result.Product.Name
	}
	renderPrices(w, name, v.Ranking)
}

func renderProduct(w io.Writer, v *services.ProductView) {
	p := v.Product
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Name)
	if p.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", p.Category)
	}
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	renderPrices(w, p.Name, v.Ranking)
}

func renderPrediction(w io.Writer, p *models.Prediction) {
	title := p.ProductName
	if p.StoreName != "" {
		title += " @ " + p.StoreName
	}
	fmt.Fprintf(w, "Price Prediction: %s\n", title)

	if msg, available, failed := p.Failure(); failed {
		fmt.Fprintf(w, "Error: %s\n", msg)
		if available != nil {
			fmt.Fprintf(w, "Available records: %d\n", *available)
		}
		return
	}
	d := p.Prediction
	if d == nil {
		fmt.Fprintln(w, "No prediction available.")
		return
	}

	fmt.Fprintf(w, "Current Price: %s\n", money(d.CurrentPrice, ""))
	fmt.Fprintf(w, "Tomorrow: %s\n", money(d.PredictedPrice1Day, ""))
	fmt.Fprintf(w, "Next Week: %s\n", money(d.PredictedPrice7Days, ""))
	fmt.Fprintf(w, "Trend: %s  Confidence: %s%%\n",
		strings.ToUpper(string(d.Trend)), decimal.NewFromFloat(d.Confidence).Round(0).String())
	if d.Explanation != "" {
		fmt.Fprintf(w, "Analysis: %s\n", d.Explanation)
	}
	if d.Recommendation != "" {
		fmt.Fprintf(w, "Recommendation: %s\n", d.Recommendation)
	}
	if d.HistoricalDataPoints > 0 {
		fmt.Fprintf(w, "Based on %d historical price points\n", d.HistoricalDataPoints)
	}
}

func renderSuggestions(w io.Writer, s services.Snapshot) {
	if !s.Visible {
		return
	}
	if len(s.Items) == 0 {
		fmt.Fprintf(w, "No suggestions for %q\n", s.Query)
		return
	}
	for i, it := range s.Items {
		mark := "  "
		if i == s.Index {
			mark = "> "
		}
		fmt.Fprintf(w, "%s%s\n", mark, it.Name)
	}
}

func renderHistory(w io.Writer, items []models.SearchHistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No search history yet.")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%-20s %-30s %d results\n", it.SearchedAt, it.Query, it.ResultsCount)
	}
}

func renderRecent(w io.Writer, items []*models.RecentSearch) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No recent searches.")
		return
	}
	for _, it := range items {
		line := fmt.Sprintf("%s  %-30s %d offers", it.SearchedAt.Local().Format("2006-01-02 15:04"), it.Query, it.Offers)
		if it.Lowest != nil {
			line += ", from " + money(*it.Lowest, "")
		}
		fmt.Fprintln(w, line)
	}
}
