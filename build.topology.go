package merit

// TopoGraph maps a reach id to the set of its direct upstream reach ids.
// Built once per run; read-only thereafter. Duplicate and even cyclic edges
// from source-data defects are tolerated by the traversal.
type TopoGraph map[int]map[int]bool

// addEdge records u as a direct upstream of d, creating the set on first
// touch. Kept explicit rather than relying on insertion-on-read.
func (g TopoGraph) addEdge(d, u int) {
	s, ok := g[d]
	if !ok {
		s = make(map[int]bool)
		g[d] = s
	}
	s[u] = true
}

// BuildUpstreamGraph derives the upstream adjacency from the network's
// topology fields. A NextDownID d on reach c inserts d→c (c drains to d, so
// c is upstream of d); an up-slot value u on reach d inserts d→u directly.
// Values that are not strictly positive integers are silently skipped.
// With neither field family present the graph cannot be built and the whole
// batch must abort.
func BuildUpstreamGraph(rt *ReachTable) (TopoGraph, error) {
	if !rt.HasDown && !rt.HasUp {
		return nil, &ConfigurationError{Msg: "river network lacks topology fields (NextDownID or up1..up4)"}
	}

	g := make(TopoGraph, len(rt.Reaches))
	if rt.HasDown {
		for _, r := range rt.Reaches {
			if r.ID > 0 && r.Down > 0 {
				g.addEdge(r.Down, r.ID)
			}
		}
	}
	if rt.HasUp {
		for _, r := range rt.Reaches {
			if r.ID <= 0 {
				continue
			}
			for _, u := range r.Up {
				if u > 0 {
					g.addEdge(r.ID, u)
				}
			}
		}
	}
	return g, nil
}
