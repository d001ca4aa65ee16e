package merit

// TraceUpstream collects the outlet and every reach draining to it by
// breadth-first traversal. An outlet absent from the graph simply has no
// upstream. The visited set makes the walk terminate over cyclic defect
// edges; each node expands at most once. No size cap is applied here; the
// caller inspects the returned set (see Extractor).
func TraceUpstream(g TopoGraph, outlet int) map[int]bool {
	visited := map[int]bool{outlet: true}
	queue := []int{outlet}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for u := range g[cur] {
			if !visited[u] {
				visited[u] = true
				queue = append(queue, u)
			}
		}
	}
	return visited
}
