package network

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph links subreddits co-observed under the same poster. Edge weights
// count the distinct posters seen in both endpoints.
type Graph struct {
	g       *simple.WeightedUndirectedGraph
	ids     map[string]int64
	names   map[int64]string
	posters map[string]int
}

// BuildGraph builds the association graph from each poster's set of
// observed subreddits.
func BuildGraph(observed map[string]map[string]struct{}) *Graph {
	gr := &Graph{
		g:       simple.NewWeightedUndirectedGraph(0, 0),
		ids:     make(map[string]int64),
		names:   make(map[int64]string),
		posters: make(map[string]int),
	}

	// Sorted iteration keeps node IDs deterministic.
	users := make([]string, 0, len(observed))
	for u := range observed {
		users = append(users, u)
	}
	slices.Sort(users)

	for _, u := range users {
		subs := make([]string, 0, len(observed[u]))
		for s := range observed[u] {
			subs = append(subs, s)
		}
		slices.Sort(subs)

		for _, s := range subs {
			gr.node(s)
			gr.posters[s]++
		}
		for i := range subs {
			for j := i + 1; j < len(subs); j++ {
				gr.increment(subs[i], subs[j])
			}
		}
	}
	return gr
}

func (gr *Graph) node(name string) graph.Node {
	if id, ok := gr.ids[name]; ok {
		return gr.g.Node(id)
	}
	n := gr.g.NewNode()
	gr.g.AddNode(n)
	gr.ids[name] = n.ID()
	gr.names[n.ID()] = name
	return n
}

func (gr *Graph) increment(a, b string) {
	u, v := gr.node(a), gr.node(b)
	w, _ := gr.g.Weight(u.ID(), v.ID())
	gr.g.SetWeightedEdge(gr.g.NewWeightedEdge(u, v, w+1))
}

// association returns the number of posters observed in both a and b.
func (gr *Graph) association(a, b string) int {
	ua, okA := gr.ids[a]
	ub, okB := gr.ids[b]
	if !okA || !okB || ua == ub {
		return 0
	}
	w, _ := gr.g.Weight(ua, ub)
	return int(w)
}

// Total returns the sum of name's association counts with every other
// subreddit.
func (gr *Graph) Total(name string) int {
	id, ok := gr.ids[name]
	if !ok {
		return 0
	}
	total := 0.0
	nodes := gr.g.From(id)
	for nodes.Next() {
		w, _ := gr.g.Weight(id, nodes.Node().ID())
		total += w
	}
	return int(total)
}

// posterCount returns how many posters were observed in name.
func (gr *Graph) posterCount(name string) int {
	return gr.posters[name]
}

// Candidates returns every subreddit with its total association count and
// poster count, unordered.
func (gr *Graph) Candidates() []Candidate {
	out := make([]Candidate, 0, len(gr.ids))
	for name := range gr.ids {
		out = append(out, Candidate{
			Subreddit:        name,
			AssociationCount: gr.Total(name),
			Posters:          gr.posterCount(name),
		})
	}
	return out
}
