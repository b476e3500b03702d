package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/grocerycompare/internal/client/services"
)

// suggestWait bounds how long the picker waits for a suggestion list.
var suggestWait = 5 * time.Second

// Suggest runs the autocomplete picker starting from partial.
//
// Keys, one per line:
//
//	n        highlight the next suggestion
//	p        highlight the previous one
//	(empty)  search the highlighted suggestion, or the typed text
//	esc | q  close the list
//	other    replace the typed text and fetch again
func (a *App) Suggest(ctx context.Context, partial string) error {
	updates := make(chan services.Snapshot, 16)
	sg := a.newSuggester(func(s services.Snapshot) {
		select {
		case updates <- s:
		default:
		}
	})
	defer sg.Close()

	query := partial
	if query == "" {
		var err error
		if query, err = getSimpleText(a.reader, "Start typing a product name", a.out); err != nil {
			return err
		}
	}

	a.refreshSuggestions(ctx, sg, updates, query)

	for {
		fmt.Fprint(a.out, "[n]ext [p]rev [enter] search [q]uit, or type to refine\n> ")
		line, err := readLine(a.reader)
		if err != nil {
			sg.Reset()
			return err
		}

		switch line {
		case "n":
			sg.Next()
			renderSuggestions(a.out, sg.Snapshot())
		case "p":
			sg.Prev()
			renderSuggestions(a.out, sg.Snapshot())
		case "":
			target := query
			if it, ok := sg.Selected(); ok {
				target = it.Name
			}
			sg.Reset()
			return a.Search(ctx, target)
		case "q", "esc":
			sg.Reset()
			return nil
		default:
			query = line
			a.refreshSuggestions(ctx, sg, updates, query)
		}
	}
}

// refreshSuggestions feeds query to the suggester and prints the first
// list that arrives for it.
func (a *App) refreshSuggestions(ctx context.Context, sg *services.Suggester, updates <-chan services.Snapshot, query string) {
drain:
	for {
		select {
		case <-updates:
		default:
			break drain
		}
	}

	q := strings.TrimSpace(query)
	sg.Update(q)
	if utf8.RuneCountInString(q) < a.suggestMinLength {
		fmt.Fprintf(a.out, "Type at least %d characters.\n", a.suggestMinLength)
		return
	}

	timeout := time.NewTimer(suggestWait)
	defer timeout.Stop()

	for {
		select {
		case s := <-updates:
			if s.Query != q {
				continue
			}
			if !s.Visible {
				fmt.Fprintln(a.out, "No suggestions.")
				return
			}
			renderSuggestions(a.out, s)
			return
		case <-timeout.C:
			fmt.Fprintln(a.out, "No suggestions yet.")
			return
		case <-ctx.Done():
			return
		}
	}
}
