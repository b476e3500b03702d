package cli

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/services"
)

type fakeFetcher struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (f *fakeFetcher) Suggest(_ context.Context, q string) ([]models.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Suggestion
	for i, name := range []string{"Milk Bikis", "Amul Milk", "Milk Powder", "Bread"} {
		if strings.Contains(strings.ToLower(name), strings.ToLower(q)) {
			out = append(out, models.Suggestion{ID: int64(i + 1), Name: name})
		}
	}
	return out, nil
}

func withSuggester(a *App, f *fakeFetcher) {
	a.newSuggester = func(onChange func(services.Snapshot)) *services.Suggester {
		return services.NewSuggester(f, services.SuggesterOptions{Delay: time.Millisecond, OnChange: onChange})
	}
}

func searchRecorder(cat *fakeCatalog) {
	cat.searchFn = func(q string) (*services.SearchView, error) {
		return &services.SearchView{Query: q, Result: &models.SearchResult{}}, nil
	}
}

func TestSuggest_PickHighlighted(t *testing.T) {
	a, out, _, cat, _ := newTestApp("n\nn\np\nn\n\n")
	f := &fakeFetcher{}
	withSuggester(a, f)
	searchRecorder(cat)

	require.NoError(t, a.Suggest(context.Background(), "milk"))

	assert.Equal(t, []string{"milk"}, f.queries)
	assert.Equal(t, []string{"Amul Milk"}, cat.searched)
	assert.Contains(t, out.String(), "  Milk Bikis\n> Amul Milk\n  Milk Powder\n")
}

func TestSuggest_EnterWithoutHighlightSearchesTypedText(t *testing.T) {
	a, _, _, cat, _ := newTestApp("powder\n\n")
	f := &fakeFetcher{}
	withSuggester(a, f)
	searchRecorder(cat)

	require.NoError(t, a.Suggest(context.Background(), "mi"))

	assert.Equal(t, []string{"mi", "powder"}, f.queries)
	assert.Equal(t, []string{"powder"}, cat.searched)
}

func TestSuggest_PrevFromFirstClearsHighlight(t *testing.T) {
	a, _, _, cat, _ := newTestApp("n\np\n\n")
	withSuggester(a, &fakeFetcher{})
	searchRecorder(cat)

	require.NoError(t, a.Suggest(context.Background(), "milk"))
	assert.Equal(t, []string{"milk"}, cat.searched)
}

func TestSuggest_EscapeCloses(t *testing.T) {
	a, _, _, cat, _ := newTestApp("n\nesc\n")
	withSuggester(a, &fakeFetcher{})

	require.NoError(t, a.Suggest(context.Background(), "milk"))
	assert.Empty(t, cat.searched)
}

func TestSuggest_ShortQueryDoesNotFetch(t *testing.T) {
	a, out, _, _, _ := newTestApp("q\n")
	f := &fakeFetcher{}
	withSuggester(a, f)

	require.NoError(t, a.Suggest(context.Background(), "m"))
	assert.Empty(t, f.queries)
	assert.Contains(t, out.String(), "Type at least 2 characters.")
}

func TestSuggest_FetchErrorShowsNothing(t *testing.T) {
	a, out, _, _, _ := newTestApp("q\n")
	withSuggester(a, &fakeFetcher{err: errors.New("boom")})

	require.NoError(t, a.Suggest(context.Background(), "milk"))
	assert.Contains(t, out.String(), "No suggestions.")
}

func TestSuggest_NoMatches(t *testing.T) {
	a, out, _, _, _ := newTestApp("q\n")
	withSuggester(a, &fakeFetcher{})

	require.NoError(t, a.Suggest(context.Background(), "zzz"))
	assert.Contains(t, out.String(), `No suggestions for "zzz"`)
}

func TestSuggest_EOFEndsPicker(t *testing.T) {
	a, _, _, cat, _ := newTestApp("")
	withSuggester(a, &fakeFetcher{})

	require.Error(t, a.Suggest(context.Background(), "milk"))
	assert.Empty(t, cat.searched)
}
