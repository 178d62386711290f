package consensus

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SubstitutionMatrix scores residue substitutions for sequence alignment.
type SubstitutionMatrix struct {
	name     string
	scores   [128][128]float64
	residues string
}

// Name returns the matrix identifier.
func (m *SubstitutionMatrix) Name() string { return m.name }

// Residues returns the matrix alphabet.
func (m *SubstitutionMatrix) Residues() string { return m.residues }

// Score returns the substitution score for a residue pair. Residues outside
// the matrix alphabet score 0.
func (m *SubstitutionMatrix) Score(a, b byte) float64 {
	return m.scores[a&127][b&127]
}

// SelfScore returns the gapless self-alignment score of a sequence (the sum
// of its diagonal entries).
func (m *SubstitutionMatrix) SelfScore(seq string) float64 {
	var s float64
	for i := 0; i < len(seq); i++ {
		s += m.Score(seq[i], seq[i])
	}
	return s
}

// pam30Residues is the row/column order of the embedded PAM30 data.
const pam30Residues = "ARNDCQEGHILKMFPSTWYV"

// pam30Rows is the PAM30 substitution matrix (NCBI scaling), one row per
// residue in pam30Residues order.
var pam30Rows = [20][20]int{
	{6, -7, -4, -3, -6, -4, -2, -2, -7, -5, -6, -7, -5, -8, -2, 0, -1, -13, -8, -2},
	{-7, 8, -6, -10, -8, -2, -9, -9, -2, -5, -8, 0, -4, -9, -4, -3, -6, -2, -10, -8},
	{-4, -6, 8, 2, -11, -3, -2, -3, 0, -5, -7, -1, -9, -9, -6, 0, -2, -8, -4, -8},
	{-3, -10, 2, 8, -14, -2, 2, -3, -4, -7, -12, -4, -11, -15, -8, -4, -5, -15, -11, -8},
	{-6, -8, -11, -14, 10, -14, -14, -9, -7, -6, -15, -14, -13, -13, -8, -3, -8, -15, -4, -6},
	{-4, -2, -3, -2, -14, 8, 1, -7, 1, -8, -5, -3, -4, -13, -3, -5, -5, -13, -12, -7},
	{-2, -9, -2, 2, -14, 1, 8, -4, -5, -5, -9, -4, -7, -14, -5, -4, -6, -17, -8, -6},
	{-2, -9, -3, -3, -9, -7, -4, 6, -9, -11, -10, -7, -8, -9, -6, -2, -6, -15, -14, -5},
	{-7, -2, 0, -4, -7, 1, -5, -9, 9, -9, -6, -6, -10, -6, -4, -6, -7, -7, -3, -6},
	{-5, -5, -5, -7, -6, -8, -5, -11, -9, 8, -1, -6, -1, -2, -8, -7, -2, -14, -6, 2},
	{-6, -8, -7, -12, -15, -5, -9, -10, -6, -1, 7, -8, 1, -3, -7, -8, -7, -6, -7, -2},
	{-7, 0, -1, -4, -14, -3, -4, -7, -6, -6, -8, 7, -2, -14, -6, -4, -3, -12, -9, -9},
	{-5, -4, -9, -11, -13, -4, -7, -8, -10, -1, 1, -2, 11, -4, -8, -5, -4, -13, -11, -1},
	{-8, -9, -9, -15, -13, -13, -14, -9, -6, -2, -3, -14, -4, 9, -10, -6, -9, -4, 2, -8},
	{-2, -4, -6, -8, -8, -3, -5, -6, -4, -8, -7, -6, -8, -10, 8, -2, -4, -14, -13, -6},
	{0, -3, 0, -4, -3, -5, -4, -2, -6, -7, -8, -4, -5, -6, -2, 6, 0, -5, -7, -6},
	{-1, -6, -2, -5, -8, -5, -6, -6, -7, -2, -7, -3, -4, -9, -4, 0, 7, -13, -6, -3},
	{-13, -2, -8, -15, -15, -13, -17, -15, -7, -14, -6, -12, -13, -4, -14, -5, -13, 13, -5, -15},
	{-8, -10, -4, -11, -4, -12, -8, -14, -3, -6, -7, -9, -11, 2, -13, -7, -6, -5, 10, -7},
	{-2, -8, -8, -8, -6, -7, -6, -5, -6, 2, -2, -9, -1, -8, -6, -6, -3, -15, -7, 7},
}

// BuiltinMatrix returns one of the embedded matrices:
//
//   - "identity": 1 on the diagonal, 0 elsewhere; normalized similarity then
//     equals fractional sequence identity.
//   - "pam30ms": PAM30 with the Gln/Lys substitution score raised to +2, so
//     the near-isobaric Q<->K swaps common between search engines are not
//     punished as mismatches.
func BuiltinMatrix(name string) (*SubstitutionMatrix, error) {
	switch name {
	case "identity":
		m := &SubstitutionMatrix{name: name, residues: pam30Residues}
		for i := 0; i < len(pam30Residues); i++ {
			r := pam30Residues[i]
			m.scores[r][r] = 1
		}
		return m, nil
	case "pam30ms":
		m := &SubstitutionMatrix{name: name, residues: pam30Residues}
		for i := 0; i < len(pam30Residues); i++ {
			for j := 0; j < len(pam30Residues); j++ {
				m.scores[pam30Residues[i]][pam30Residues[j]] = float64(pam30Rows[i][j])
			}
		}
		m.scores['Q']['K'] = 2
		m.scores['K']['Q'] = 2
		return m, nil
	default:
		return nil, eris.Errorf("consensus: unknown substitution matrix %q", name)
	}
}

// matrixFile is the YAML shape of a user-supplied substitution matrix.
type matrixFile struct {
	Name     string  `yaml:"name"`
	Residues string  `yaml:"residues"`
	Rows     [][]int `yaml:"rows"`
}

// LoadMatrixFile reads a substitution matrix from a YAML file. Rows must form
// a square matrix matching the residue alphabet.
func LoadMatrixFile(path string) (*SubstitutionMatrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "consensus: read matrix file")
	}

	var mf matrixFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, eris.Wrap(err, "consensus: parse matrix file")
	}

	n := len(mf.Residues)
	if n == 0 {
		return nil, eris.New("consensus: matrix file has no residues")
	}
	if len(mf.Rows) != n {
		return nil, eris.Errorf("consensus: matrix file has %d rows for %d residues", len(mf.Rows), n)
	}

	m := &SubstitutionMatrix{name: mf.Name, residues: mf.Residues}
	if m.name == "" {
		m.name = "custom"
	}
	for i := 0; i < n; i++ {
		if len(mf.Rows[i]) != n {
			return nil, eris.Errorf("consensus: matrix row %d has %d columns, want %d", i, len(mf.Rows[i]), n)
		}
		for j := 0; j < n; j++ {
			m.scores[mf.Residues[i]&127][mf.Residues[j]&127] = float64(mf.Rows[i][j])
		}
	}
	return m, nil
}
