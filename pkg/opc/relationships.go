package opc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Relationship target modes, as they appear in the TargetMode attribute of
// a <Relationship> element in a .rels part.
const (
	TargetModeInternal = "Internal"
	TargetModeExternal = "External"
)

// Relationship is a single edge in the package relationship graph: either to
// another part (internal) or to an external resource referenced by URI.
//
// Mirrors Python docx.opc.package._Relationship.
type Relationship struct {
	RID        string
	RelType    string
	TargetPart Part   // nil for external or dangling (unresolved) relationships
	TargetRef  string // external URI, or the original TargetPartname for dangling rels
	IsExternal bool
}

// Relationships is the ordered collection of relationships sourced from one
// part (or the package root). Order of insertion is preserved so that
// serialization is deterministic.
//
// Mirrors Python docx.opc.package._Relationships.
type Relationships struct {
	baseURI string
	byRID   map[string]*Relationship
	order   []string // RIDs in insertion order
}

// NewRelationships creates an empty Relationships collection rooted at baseURI
// (the directory the owning part lives in, used to resolve relative targets).
func NewRelationships(baseURI string) *Relationships {
	return &Relationships{
		baseURI: baseURI,
		byRID:   make(map[string]*Relationship),
	}
}

// BaseURI returns the base directory this collection resolves relative
// targets against.
func (r *Relationships) BaseURI() string {
	return r.baseURI
}

// Load registers a relationship read from a .rels file during package
// opening. Unlike GetOrAdd, it does not allocate a new RID — rid is taken
// verbatim from the serialized relationship.
func (r *Relationships) Load(rid, relType, targetRef string, targetPart Part, isExternal bool) {
	rel := &Relationship{
		RID:        rid,
		RelType:    relType,
		TargetPart: targetPart,
		TargetRef:  targetRef,
		IsExternal: isExternal,
	}
	if _, exists := r.byRID[rid]; !exists {
		r.order = append(r.order, rid)
	}
	r.byRID[rid] = rel
}

// GetOrAdd returns the existing relationship of relType targeting part,
// or creates one with a freshly allocated RID.
//
// Mirrors Python BaseStoryPart / OpcPackage.relate_to (the "get or add"
// half of Python's relate_to which dedups identical internal relationships).
func (r *Relationships) GetOrAdd(relType string, part Part) *Relationship {
	for _, rid := range r.order {
		rel := r.byRID[rid]
		if !rel.IsExternal && rel.RelType == relType && rel.TargetPart == part {
			return rel
		}
	}
	rid := r.nextRID()
	rel := &Relationship{RID: rid, RelType: relType, TargetPart: part}
	r.byRID[rid] = rel
	r.order = append(r.order, rid)
	return rel
}

// AddExternal creates a new relationship to an external URI and returns it.
func (r *Relationships) AddExternal(relType, targetRef string) *Relationship {
	rid := r.nextRID()
	rel := &Relationship{RID: rid, RelType: relType, TargetRef: targetRef, IsExternal: true}
	r.byRID[rid] = rel
	r.order = append(r.order, rid)
	return rel
}

// nextRID allocates the next unused "rIdN" identifier.
func (r *Relationships) nextRID() string {
	max := 0
	for rid := range r.byRID {
		if n, ok := ridNumber(rid); ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("rId%d", max+1)
}

func ridNumber(rid string) (int, bool) {
	if !strings.HasPrefix(rid, "rId") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(rid, "rId"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetByRID returns the relationship with the given id, or nil.
func (r *Relationships) GetByRID(rid string) *Relationship {
	return r.byRID[rid]
}

// GetByRelType returns the first relationship of the given type, in
// insertion order. Returns an error if none exists.
func (r *Relationships) GetByRelType(relType string) (*Relationship, error) {
	for _, rid := range r.order {
		rel := r.byRID[rid]
		if rel.RelType == relType {
			return rel, nil
		}
	}
	return nil, fmt.Errorf("opc: no relationship of type %q", relType)
}

// HasRelType reports whether any relationship of the given type exists.
func (r *Relationships) HasRelType(relType string) bool {
	_, err := r.GetByRelType(relType)
	return err == nil
}

// DropRel removes the relationship with the given RID, if present.
func (r *Relationships) DropRel(rid string) {
	if _, ok := r.byRID[rid]; !ok {
		return
	}
	delete(r.byRID, rid)
	for i, existing := range r.order {
		if existing == rid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// All returns every relationship in insertion order.
func (r *Relationships) All() []*Relationship {
	result := make([]*Relationship, 0, len(r.order))
	for _, rid := range r.order {
		result = append(result, r.byRID[rid])
	}
	return result
}

// sortedRIDs returns the RIDs sorted numerically, used for deterministic
// .rels serialization independent of insertion order.
func (r *Relationships) sortedRIDs() []string {
	rids := make([]string, len(r.order))
	copy(rids, r.order)
	sort.Slice(rids, func(i, j int) bool {
		ni, oki := ridNumber(rids[i])
		nj, okj := ridNumber(rids[j])
		if oki && okj {
			return ni < nj
		}
		return rids[i] < rids[j]
	})
	return rids
}
