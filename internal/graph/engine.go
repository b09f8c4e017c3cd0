package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/lineagehub/lineage/internal/cache"
	"github.com/lineagehub/lineage/internal/model"
)

// Engine is the built table-level lineage index. Every field is populated
// once by Build and never mutated again, so all query methods are safe for
// concurrent use.
type Engine struct {
	objects   map[string]*model.Object
	forward   map[string]map[string]bool
	backward  map[string]map[string]bool
	edgeIndex map[[2]string]model.TableDependency
	bySchema  map[string]map[string]bool
	byKind    map[model.ObjectKind]map[string]bool
	loadedAt  time.Time

	column *columnIndex
}

// Build constructs an Engine from a loaded cache in O(V+E). Dependency
// endpoints with no matching object get a synthetic external-table
// placeholder inserted rather than producing a dangling edge.
func Build(c *cache.Cache) *Engine {
	e := &Engine{
		objects:   make(map[string]*model.Object, len(c.Objects)),
		forward:   map[string]map[string]bool{},
		backward:  map[string]map[string]bool{},
		edgeIndex: map[[2]string]model.TableDependency{},
		bySchema:  map[string]map[string]bool{},
		byKind:    map[model.ObjectKind]map[string]bool{},
		loadedAt:  time.Now().UTC(),
	}
	for id, obj := range c.Objects {
		e.objects[id] = obj
		e.index(obj)
	}
	for _, dep := range c.TableDeps {
		e.ensurePlaceholder(dep.SourceID)
		e.ensurePlaceholder(dep.TargetID)

		key := dep.Key()
		if _, exists := e.edgeIndex[key]; !exists {
			e.edgeIndex[key] = dep
		}
		addAdj(e.forward, dep.SourceID, dep.TargetID)
		addAdj(e.backward, dep.TargetID, dep.SourceID)
	}
	e.column = buildColumnIndex(c)
	return e
}

func (e *Engine) index(obj *model.Object) {
	if e.bySchema[obj.Schema] == nil {
		e.bySchema[obj.Schema] = map[string]bool{}
	}
	e.bySchema[obj.Schema][obj.ID] = true
	if e.byKind[obj.Kind] == nil {
		e.byKind[obj.Kind] = map[string]bool{}
	}
	e.byKind[obj.Kind][obj.ID] = true
}

// ensurePlaceholder inserts a synthetic external-table object for a
// dependency endpoint that has no matching object, so a traversal never
// surfaces an edge whose endpoint is absent.
func (e *Engine) ensurePlaceholder(id string) {
	if _, ok := e.objects[id]; ok {
		return
	}
	schema, name := splitID(id)
	placeholder := &model.Object{
		ID:     id,
		Schema: schema,
		Name:   name,
		Kind:   model.KindExternalTable,
		Owner:  "EXTERNAL",
	}
	e.objects[id] = placeholder
	e.index(placeholder)
}

func splitID(id string) (schema, name string) {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

func addAdj(idx map[string]map[string]bool, from, to string) {
	if idx[from] == nil {
		idx[from] = map[string]bool{}
	}
	idx[from][to] = true
}

// Get returns an object by id, or nil if absent.
func (e *Engine) Get(id string) (*model.Object, bool) {
	obj, ok := e.objects[id]
	return obj, ok
}

// ForwardLineage / BackwardLineage BFS from id along forward / backward
// adjacency up to depth hops. Cycle-safe: the visited set is seeded with id
// itself.
func (e *Engine) ForwardLineage(id string, depth int) (LineageResult, bool) {
	return e.directionalLineage(id, depth, true)
}

func (e *Engine) BackwardLineage(id string, depth int) (LineageResult, bool) {
	return e.directionalLineage(id, depth, false)
}

// queuedNode is one pending BFS entry: the id to visit and the hop count at
// which it was reached.
type queuedNode struct {
	id  string
	hop int
}

// directionalLineage walks forward (downstream=true) or backward adjacency
// from id up to depth hops. has_more_upstream/has_more_downstream are
// computed for every visited node by checking its forward and backward
// neighbors against the visited set after the whole walk has finished,
// regardless of which adjacency the walk itself expands along, so a client
// knows which specific nodes still have unexpanded neighbors past the depth
// cut. Checking against the final state matters: at the moment a node is
// dequeued its own neighbors are not yet marked, and a node whose every
// neighbor ends up in the result must report false.
func (e *Engine) directionalLineage(id string, depth int, downstream bool) (LineageResult, bool) {
	if _, ok := e.objects[id]; !ok {
		return LineageResult{}, false
	}
	adj := e.forward
	if !downstream {
		adj = e.backward
	}

	visited := map[string]bool{id: true}
	queue := []queuedNode{{id: id, hop: 0}}
	var nodes []*model.Object
	var edges []model.TableDependency

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		obj, ok := e.objects[cur.id]
		if !ok {
			continue
		}
		nodes = append(nodes, obj)

		if cur.hop >= depth {
			continue
		}
		for neighbor := range adj[cur.id] {
			var key [2]string
			if downstream {
				key = [2]string{cur.id, neighbor}
			} else {
				key = [2]string{neighbor, cur.id}
			}
			if dep, ok := e.edgeIndex[key]; ok {
				edges = append(edges, dep)
			}
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			queue = append(queue, queuedNode{id: neighbor, hop: cur.hop + 1})
		}
	}

	hasMoreUpstream := make(map[string]bool, len(nodes))
	hasMoreDownstream := make(map[string]bool, len(nodes))
	for _, obj := range nodes {
		hasMoreDownstream[obj.ID] = anyUnvisited(e.forward[obj.ID], visited)
		hasMoreUpstream[obj.ID] = anyUnvisited(e.backward[obj.ID], visited)
	}

	sortObjects(nodes)
	return LineageResult{
		Nodes:             nodes,
		Edges:             edges,
		HasMoreUpstream:   hasMoreUpstream,
		HasMoreDownstream: hasMoreDownstream,
	}, true
}

// anyUnvisited reports whether neighbors contains an id not yet in visited.
func anyUnvisited(neighbors map[string]bool, visited map[string]bool) bool {
	for n := range neighbors {
		if !visited[n] {
			return true
		}
	}
	return false
}

// FullLineage unions the upstream and downstream traversals rooted at id,
// de-duplicating edges by (source_id, target_id).
func (e *Engine) FullLineage(id string, upDepth, downDepth int) (LineageResult, bool) {
	if _, ok := e.objects[id]; !ok {
		return LineageResult{}, false
	}
	up, _ := e.BackwardLineage(id, upDepth)
	down, _ := e.ForwardLineage(id, downDepth)

	nodeSeen := map[string]bool{}
	var nodes []*model.Object
	for _, n := range append(append([]*model.Object{}, up.Nodes...), down.Nodes...) {
		if nodeSeen[n.ID] {
			continue
		}
		nodeSeen[n.ID] = true
		nodes = append(nodes, n)
	}

	edgeSeen := map[[2]string]bool{}
	var edges []model.TableDependency
	for _, edge := range append(append([]model.TableDependency{}, up.Edges...), down.Edges...) {
		key := edge.Key()
		if edgeSeen[key] {
			continue
		}
		edgeSeen[key] = true
		edges = append(edges, edge)
	}
	sortObjects(nodes)

	return LineageResult{
		Nodes:             nodes,
		Edges:             edges,
		HasMoreUpstream:   mergeHasMore(up.HasMoreUpstream, down.HasMoreUpstream),
		HasMoreDownstream: mergeHasMore(up.HasMoreDownstream, down.HasMoreDownstream),
	}, true
}

// mergeHasMore unions two per-node has-more maps from the upstream and
// downstream halves of a full-lineage traversal; a node visited by both
// halves keeps true if either half saw an unexpanded neighbor.
func mergeHasMore(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for id, v := range a {
		out[id] = v
	}
	for id, v := range b {
		out[id] = out[id] || v
	}
	return out
}

// Search matches q case-insensitively against name, schema, and id over
// the objects selected by schemaFilter/kindFilter, stopping after limit
// hits.
func (e *Engine) Search(q string, limit int, schemaFilter, kindFilter string) []*model.Object {
	q = strings.ToUpper(q)
	var out []*model.Object
	for _, id := range e.candidateIDs(schemaFilter, kindFilter) {
		obj := e.objects[id]
		if strings.Contains(strings.ToUpper(obj.Name), q) ||
			strings.Contains(strings.ToUpper(obj.Schema), q) ||
			strings.Contains(strings.ToUpper(obj.ID), q) {
			out = append(out, obj)
			if len(out) >= limit {
				break
			}
		}
	}
	sortObjects(out)
	return out
}

// ObjectsPaginated returns a lexicographically-sorted-by-id page of the
// objects selected by schema/kind.
func (e *Engine) ObjectsPaginated(page, pageSize int, schemaFilter, kindFilter string) Page {
	ids := e.candidateIDs(schemaFilter, kindFilter)
	sort.Strings(ids)
	total := len(ids)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]*model.Object, 0, end-start)
	for _, id := range ids[start:end] {
		items = append(items, e.objects[id])
	}

	totalPages := (total + pageSize - 1) / pageSize
	return Page{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}

func (e *Engine) candidateIDs(schemaFilter, kindFilter string) []string {
	var base map[string]bool
	switch {
	case schemaFilter != "" && kindFilter != "":
		base = intersect(e.bySchema[schemaFilter], e.byKind[model.ObjectKind(kindFilter)])
	case schemaFilter != "":
		base = e.bySchema[schemaFilter]
	case kindFilter != "":
		base = e.byKind[model.ObjectKind(kindFilter)]
	default:
		base = make(map[string]bool, len(e.objects))
		for id := range e.objects {
			base[id] = true
		}
	}
	ids := make([]string, 0, len(base))
	for id := range base {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func intersect(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for id := range a {
		if b[id] {
			out[id] = true
		}
	}
	return out
}

func sortObjects(objs []*model.Object) {
	sort.Slice(objs, func(i, j int) bool { return objs[i].ID < objs[j].ID })
}

// Schemas returns the sorted list of distinct schemas present in the
// engine.
func (e *Engine) Schemas() []string {
	out := make([]string, 0, len(e.bySchema))
	for s := range e.bySchema {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Kinds returns the sorted list of distinct kinds present in the engine.
func (e *Engine) Kinds() []string {
	out := make([]string, 0, len(e.byKind))
	for k := range e.byKind {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// Stats reports object counts by kind.
func (e *Engine) Stats() map[string]int {
	out := make(map[string]int, len(e.byKind))
	for k, ids := range e.byKind {
		out[string(k)] = len(ids)
	}
	return out
}

// ObjectCount returns the number of objects indexed, placeholders included.
func (e *Engine) ObjectCount() int { return len(e.objects) }

// TableDependencyCount returns the number of distinct table-level edges.
func (e *Engine) TableDependencyCount() int { return len(e.edgeIndex) }

// ColumnDependencyCount returns the number of distinct column-level edges.
func (e *Engine) ColumnDependencyCount() int { return len(e.column.edgeIndex) }

// LoadedAt returns the instant this engine was built. Clients compare it
// across calls to detect that the cache was swapped between them.
func (e *Engine) LoadedAt() time.Time { return e.loadedAt }
