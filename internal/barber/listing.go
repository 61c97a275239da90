package barber

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case SortAsc:
		return SortAsc
	case SortDesc:
		return SortDesc
	}
	return SortNone
}

type ActiveFilter string

const (
	FilterAll      ActiveFilter = "todos"
	FilterActive   ActiveFilter = "activos"
	FilterInactive ActiveFilter = "inactivos"
)

func ParseActiveFilter(raw string) ActiveFilter {
	switch ActiveFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case FilterActive:
		return FilterActive
	case FilterInactive:
		return FilterInactive
	}
	return FilterAll
}

// Listable is satisfied by every entity a list page can sort and partition.
type Listable interface {
	DisplayName() string
	IsActive() bool
}

// SortByName returns a sorted copy using Spanish collation, so "Álvaro"
// sorts next to "Alberto". SortNone keeps the input order.
func SortByName[T Listable](items []T, order SortOrder) []T {
	out := make([]T, len(items))
	copy(out, items)
	if order == SortNone {
		return out
	}
	coll := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		cmp := coll.CompareString(out[i].DisplayName(), out[j].DisplayName())
		if order == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func FilterByActive[T Listable](items []T, filter ActiveFilter) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		switch filter {
		case FilterActive:
			if !item.IsActive() {
				continue
			}
		case FilterInactive:
			if item.IsActive() {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}
