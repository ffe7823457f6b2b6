package core

import "testing"

func TestFilter(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Title: "Coffee beans", Category: CategoryFood},
		{ID: "2", Title: "Bus pass", Category: CategoryTransport},
		{ID: "3", Title: "COFFEE shop", Category: CategoryEntertainment},
	}

	cases := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"no filter", FilterOptions{}, []string{"1", "2", "3"}},
		{"all category", FilterOptions{Category: AllCategories}, []string{"1", "2", "3"}},
		{"search is case insensitive", FilterOptions{Search: "coffee"}, []string{"1", "3"}},
		{"category", FilterOptions{Category: CategoryTransport}, []string{"2"}},
		{"search and category", FilterOptions{Search: "coffee", Category: CategoryFood}, []string{"1"}},
		{"no match", FilterOptions{Search: "rent"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(txs, tc.opts)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %d items", tc.want, len(got))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}
