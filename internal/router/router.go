// Package router holds the dashboard's page selection state.
package router

import "fmt"

// Page is one of the dashboard views a visitor can switch between.
type Page int

const (
	Home Page = iota
	BarView
	MapView
	PieView
)

var labels = [...]string{
	Home:    "Home",
	BarView: "Top Cities Chart",
	MapView: "Map",
	PieView: "Most Popular Materials",
}

// Pages returns every page in sidebar order.
func Pages() []Page {
	return []Page{Home, BarView, MapView, PieView}
}

// Label is the sidebar text for p.
func (p Page) Label() string {
	if p < Home || p > PieView {
		return fmt.Sprintf("Page(%d)", int(p))
	}
	return labels[p]
}

func (p Page) String() string {
	return p.Label()
}

// ParsePage maps a sidebar label to its page. An empty label selects Home.
func ParsePage(label string) (Page, error) {
	if label == "" {
		return Home, nil
	}
	for _, p := range Pages() {
		if labels[p] == label {
			return p, nil
		}
	}
	return Home, fmt.Errorf("unknown page: %q", label)
}
