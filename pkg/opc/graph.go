package opc

// walkRelationships performs a pre-order depth-first walk of the
// relationship graph reachable from roots, using an explicit stack of
// pending-sibling slices rather than recursion so a deep relationship chain
// cannot overflow the call stack. visit is called once for every
// relationship encountered, in document order; firstVisit reports whether
// this is the first time the relationship's target part has been reached —
// also the moment its own relationships are pushed onto the stack for
// traversal. External or unresolved (dangling) relationships are visited
// but never descended into.
func walkRelationships(roots []*Relationship, visit func(rel *Relationship, firstVisit bool)) {
	visited := make(map[Part]bool)
	stack := [][]*Relationship{roots}

	for len(stack) > 0 {
		top := len(stack) - 1
		rels := stack[top]

		if len(rels) == 0 {
			stack = stack[:top]
			continue
		}
		rel := rels[0]
		stack[top] = rels[1:]

		if rel.IsExternal || rel.TargetPart == nil {
			visit(rel, false)
			continue
		}

		part := rel.TargetPart
		first := !visited[part]
		if first {
			visited[part] = true
		}
		visit(rel, first)
		if first {
			stack = append(stack, part.Rels().All())
		}
	}
}

// IterParts generates all parts reachable via the relationship graph.
// Uses walkRelationships to avoid unbounded call-stack growth on deep
// relationship chains.
func (p *OpcPackage) IterParts() []Part {
	var result []Part
	walkRelationships(p.rels.All(), func(rel *Relationship, firstVisit bool) {
		if firstVisit {
			result = append(result, rel.TargetPart)
		}
	})
	return result
}

// IterRels yields every relationship in the package exactly once via a
// depth-first traversal of the relationship graph. Mirrors Python
// OpcPackage.iter_rels.
func (p *OpcPackage) IterRels() []*Relationship {
	var result []*Relationship
	walkRelationships(p.rels.All(), func(rel *Relationship, firstVisit bool) {
		result = append(result, rel)
	})
	return result
}
