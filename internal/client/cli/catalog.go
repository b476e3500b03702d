package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
)

const recentLimit = 10

var errNoProduct = errors.New("no product selected")

// Search compares prices for query. Without an argument the product name is
// asked for.
func (a *App) Search(ctx context.Context, query string) error {
	if query == "" {
		var err error
		if query, err = getSimpleText(a.reader, "Enter product name", a.out); err != nil {
			return err
		}
	}
	if query == "" {
		fmt.Fprintln(a.out, "Please enter a product name.")
		return nil
	}

	fmt.Fprintln(a.out, "Searching...")
	v, err := a.catalog.Search(ctx, query)
	if err != nil {
		return a.fail(ctx, "search", err)
	}

	if v.Result != nil && v.Result.Product != nil {
		a.setCurrent(v.Result.Product)
	}
	renderSearch(a.out, v)
	return nil
}

func (a *App) Product(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err == nil && id <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		fmt.Fprintf(a.out, "Invalid product id %q\n", arg)
		return fmt.Errorf("product id %q: %w", arg, err)
	}

	v, err := a.catalog.Product(ctx, id)
	if err != nil {
		return a.fail(ctx, "product", err)
	}

	a.setCurrent(v.Product)
	renderProduct(a.out, v)
	return nil
}

// Predict requests a price prediction for the product last searched or
// viewed, optionally for one store.
func (a *App) Predict(ctx context.Context, store string) error {
	p := a.currentProduct()
	if p == nil {
		fmt.Fprintln(a.out, "Search for a product first.")
		return errNoProduct
	}

	fmt.Fprintln(a.out, "Getting prediction...")
	pred, err := a.catalog.Predict(ctx, models.PredictionParams{
		ProductID:   p.ID,
		ProductName: p.Name,
		StoreName:   store,
	})
	if err != nil {
		return a.fail(ctx, "predict", err)
	}

	renderPrediction(a.out, pred)
	return nil
}

func (a *App) History(ctx context.Context) error {
	items, err := a.catalog.History(ctx)
	if err != nil {
		return a.fail(ctx, "history", err)
	}
	renderHistory(a.out, items)
	return nil
}

func (a *App) Recent(ctx context.Context) error {
	items, err := a.catalog.Recent(ctx, recentLimit)
	if err != nil {
		return a.fail(ctx, "recent", err)
	}
	renderRecent(a.out, items)
	return nil
}
