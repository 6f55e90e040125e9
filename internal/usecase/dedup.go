package usecase

import (
	"fmt"

	"newsingest/internal/domain"
)

// DedupRawItems removes in-batch duplicates before normalization so no
// work is wasted on copies. Items are keyed on link::title; the first
// occurrence wins. Returns the surviving items and the number removed.
func DedupRawItems(items []domain.RawItem) ([]domain.RawItem, int) {
	seen := make(map[string]struct{}, len(items))
	unique := make([]domain.RawItem, 0, len(items))

	for _, item := range items {
		key := fmt.Sprintf("%s::%s", item.Link, item.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}

	return unique, len(items) - len(unique)
}
