package validate

import (
	"math"
	"sort"

	"github.com/Tsinling0525/flowsmith/model"
)

// DefaultRowTolerance is the vertical distance within which two nodes count
// as being on the same row.
const DefaultRowTolerance = 100.0

// neighbours lists the indexes of nodes on the same row as doc.Nodes[i],
// before (x smaller) or after it, nearest first. Ties break on vertical
// distance, then node order.
func neighbours(doc *model.Document, i int, tol float64, after bool) []int {
	me := doc.Nodes[i].Position
	var out []int
	for j, n := range doc.Nodes {
		if j == i || math.Abs(n.Position.Y-me.Y) > tol {
			continue
		}
		if (after && n.Position.X > me.X) || (!after && n.Position.X < me.X) {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		pa, pb := doc.Nodes[out[a]].Position, doc.Nodes[out[b]].Position
		da, db := math.Abs(pa.X-me.X), math.Abs(pb.X-me.X)
		if da != db {
			return da < db
		}
		return math.Abs(pa.Y-me.Y) < math.Abs(pb.Y-me.Y)
	})
	return out
}

// nextInRow returns the nearest following row neighbour of doc.Nodes[i].
func nextInRow(doc *model.Document, i int, tol float64) (int, bool) {
	if ns := neighbours(doc, i, tol, true); len(ns) > 0 {
		return ns[0], true
	}
	return -1, false
}

// byX returns node indexes ordered left to right, keeping document order for
// equal x.
func byX(doc *model.Document) []int {
	idx := make([]int, len(doc.Nodes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return doc.Nodes[idx[a]].Position.X < doc.Nodes[idx[b]].Position.X
	})
	return idx
}

// reaches reports whether to is reachable from from over any connection.
func reaches(c model.Connections, from, to string) bool {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == to {
			return true
		}
		for _, next := range c.Targets(v) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// topo orders the nodes with Kahn's algorithm. Nodes left over sit on or
// behind a cycle and are returned sorted in cyclic.
func topo(doc *model.Document) (order []string, cyclic []string) {
	indeg := map[string]int{}
	out := map[string][]string{}
	for _, n := range doc.Nodes {
		indeg[n.Name] = 0
	}
	for _, src := range doc.Connections.Sources() {
		if _, ok := indeg[src]; !ok {
			continue
		}
		for _, t := range doc.Connections.Targets(src) {
			if _, ok := indeg[t]; !ok {
				continue
			}
			out[src] = append(out[src], t)
			indeg[t]++
		}
	}
	var q []string
	for _, n := range doc.Nodes {
		if indeg[n.Name] == 0 {
			q = append(q, n.Name)
		}
	}
	for len(q) > 0 {
		v := q[0]
		q = q[1:]
		order = append(order, v)
		for _, u := range out[v] {
			indeg[u]--
			if indeg[u] == 0 {
				q = append(q, u)
			}
		}
	}
	if len(order) == len(indeg) {
		return order, nil
	}
	done := make(map[string]bool, len(order))
	for _, n := range order {
		done[n] = true
	}
	for name := range indeg {
		if !done[name] {
			cyclic = append(cyclic, name)
		}
	}
	sort.Strings(cyclic)
	return order, cyclic
}
