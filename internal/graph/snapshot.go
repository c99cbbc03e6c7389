package graph

// Snapshot is a materialized analysis result: every declared function and
// every resolved call edge of one source snapshot.
type Snapshot struct {
	Decls []Decl     `json:"decls"`
	Edges []CallEdge `json:"edges"`

	declIndex map[string]int
	edgeIndex map[[2]string]bool
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		declIndex: make(map[string]int),
		edgeIndex: make(map[[2]string]bool),
	}
}

func (s *Snapshot) Declarations() []Decl {
	return s.Decls
}

func (s *Snapshot) CallEdges() []CallEdge {
	return s.Edges
}

// AddDecl records a declaration; a second declaration with the same ID is
// ignored. It has the signature of the analyzer's declFn callback.
func (s *Snapshot) AddDecl(d Decl) error {
	s.ensureIndex()
	if _, ok := s.declIndex[d.ID]; ok {
		return nil
	}
	s.declIndex[d.ID] = len(s.Decls)
	s.Decls = append(s.Decls, d)
	return nil
}

// AddEdge records a call edge once per (caller, callee) pair
func (s *Snapshot) AddEdge(e CallEdge) error {
	s.ensureIndex()
	key := [2]string{e.Caller, e.Callee}
	if s.edgeIndex[key] {
		return nil
	}
	s.edgeIndex[key] = true
	s.Edges = append(s.Edges, e)
	return nil
}

// Merge folds other into s
func (s *Snapshot) Merge(other *Snapshot) {
	for _, d := range other.Decls {
		_ = s.AddDecl(d)
	}
	for _, e := range other.Edges {
		_ = s.AddEdge(e)
	}
}

// Decl looks up a declaration by ID
func (s *Snapshot) Decl(id string) (Decl, bool) {
	s.ensureIndex()
	i, ok := s.declIndex[id]
	if !ok {
		return Decl{}, false
	}
	return s.Decls[i], true
}

// ensureIndex rebuilds the lookup tables of a snapshot built by literal
func (s *Snapshot) ensureIndex() {
	if s.declIndex != nil && s.edgeIndex != nil {
		return
	}
	s.declIndex = make(map[string]int, len(s.Decls))
	for i, d := range s.Decls {
		s.declIndex[d.ID] = i
	}
	s.edgeIndex = make(map[[2]string]bool, len(s.Edges))
	for _, e := range s.Edges {
		s.edgeIndex[[2]string{e.Caller, e.Callee}] = true
	}
}
