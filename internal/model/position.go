package model

// Positioned is the transient projection of a PeptideIdentification onto
// (run index, RT, m/z) used by the correspondence matcher. It shares the
// identification by pointer and never copies it.
type Positioned struct {
	RunIndex int
	RT       float64
	MZ       float64
	Ident    *PeptideIdentification
}

// Project converts an identification into its matcher projection. It fails
// with MissingPositionError when RT or m/z is absent.
func Project(runIndex int, ident *PeptideIdentification) (Positioned, error) {
	if !ident.HasRT || !ident.HasMZ {
		return Positioned{}, &MissingPositionError{RunID: ident.RunID}
	}
	return Positioned{
		RunIndex: runIndex,
		RT:       ident.RT,
		MZ:       ident.MZ,
		Ident:    ident,
	}, nil
}

// Group is a cluster of identifications from different runs believed to
// represent the same physical spectrum. RT and MZ hold the representative
// position (member centroid).
type Group struct {
	RT      float64
	MZ      float64
	Members []Positioned
}

// Centroid recomputes the representative position from the members.
func (g *Group) Centroid() {
	if len(g.Members) == 0 {
		return
	}
	var rt, mz float64
	for _, m := range g.Members {
		rt += m.RT
		mz += m.MZ
	}
	n := float64(len(g.Members))
	g.RT = rt / n
	g.MZ = mz / n
}

// Identifications returns cloned copies of the member identifications, in
// member order, ready to be handed to a consensus algorithm.
func (g *Group) Identifications() []PeptideIdentification {
	ids := make([]PeptideIdentification, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.Ident.Clone()
	}
	return ids
}
