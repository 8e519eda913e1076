// Package reconcile folds transactions that describe the same real-world
// event into one. The pairwise predicate lives in package compare; this
// package only partitions a batch and merges each group.
package reconcile

import (
	"unicode/utf8"

	"github.com/yurifrl/kakeibu/pkg/compare"
	"github.com/yurifrl/kakeibu/pkg/models"
)

// Predicate decides whether two transactions are duplicates.
type Predicate func(a, b *models.Transaction) bool

// Group is an anchor and the later transactions that duplicate it, in input order.
type Group []*models.Transaction

// Partition groups txs with an explicit disjoint set. Each still unclaimed
// transaction becomes an anchor and claims every later unclaimed transaction
// the predicate pairs with it. Groups come back in anchor order.
func Partition(txs []*models.Transaction, same Predicate) []Group {
	set := newDisjointSet(len(txs))
	claimed := make([]bool, len(txs))
	for i := range txs {
		if claimed[i] {
			continue
		}
		for j := i + 1; j < len(txs); j++ {
			if !claimed[j] && same(txs[i], txs[j]) {
				set.union(i, j)
				claimed[j] = true
			}
		}
	}

	var groups []Group
	index := make(map[int]int)
	for i, tx := range txs {
		root := set.find(i)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], tx)
	}
	return groups
}

// Merge collapses a group into one transaction. The anchor keeps its id,
// date, amount, type, category and provenance; the longest description and
// shop name win, earlier members breaking ties. A single-member group is
// returned unchanged.
func Merge(g Group) *models.Transaction {
	if len(g) == 0 {
		return nil
	}
	anchor := g[0]
	if len(g) == 1 {
		return anchor
	}

	description, shopName := anchor.Description(), anchor.ShopName()
	count := 0
	var ids []string
	for _, tx := range g {
		if utf8.RuneCountInString(tx.Description()) > utf8.RuneCountInString(description) {
			description = tx.Description()
		}
		if utf8.RuneCountInString(tx.ShopName()) > utf8.RuneCountInString(shopName) {
			shopName = tx.ShopName()
		}
		count += tx.DuplicateCount()
		if merged := tx.Original().MergedIDs; len(merged) > 0 {
			ids = append(ids, merged...)
		} else {
			ids = append(ids, tx.ID())
		}
	}
	return anchor.Merged(description, shopName, count, ids)
}

// Deduplicate merges duplicates until a pass finds nothing left to merge, so
// applying it twice gives the same result as applying it once. Output keeps
// the input order of the anchors.
func Deduplicate(txs []*models.Transaction) []*models.Transaction {
	out := txs
	for {
		groups := Partition(out, compare.IsDuplicate)
		if len(groups) == len(out) {
			return out
		}
		next := make([]*models.Transaction, 0, len(groups))
		for _, g := range groups {
			next = append(next, Merge(g))
		}
		out = next
	}
}

type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent}
}

func (s *disjointSet) find(i int) int {
	for s.parent[i] != i {
		s.parent[i] = s.parent[s.parent[i]]
		i = s.parent[i]
	}
	return i
}

// union attaches b's root under a's root so the earlier index stays the root.
func (s *disjointSet) union(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra != rb {
		s.parent[rb] = ra
	}
}
