package consensus

import "sort"

// Monoisotopic masses (Da).
const (
	massProton = 1.007276466879
	massH2O    = 18.0105647
)

// residueMass holds the monoisotopic masses of the 20 standard amino-acid
// residues (peptide-bonded, i.e. minus water).
var residueMass = map[byte]float64{
	'G': 57.02146, 'A': 71.03711, 'S': 87.03203, 'P': 97.05276,
	'V': 99.06841, 'T': 101.04768, 'C': 103.00919, 'L': 113.08406,
	'I': 113.08406, 'N': 114.04293, 'D': 115.02694, 'Q': 128.05858,
	'K': 128.09496, 'E': 129.04259, 'M': 131.04049, 'H': 137.05891,
	'F': 147.06841, 'R': 156.10111, 'Y': 163.06333, 'W': 186.07931,
}

// theoreticalIons returns the m/z values of the singly charged b- and y-ion
// series of a peptide sequence, sorted ascending. Unknown residues contribute
// zero mass, so degenerate sequences still yield a usable (if poor) pattern.
func theoreticalIons(sequence string) []float64 {
	n := len(sequence)
	if n < 2 {
		return nil
	}

	prefix := make([]float64, n+1)
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i] + residueMass[sequence[i]]
	}
	total := prefix[n]

	ions := make([]float64, 0, 2*(n-1))
	for i := 1; i < n; i++ {
		b := prefix[i] + massProton
		y := total - prefix[i] + massH2O + massProton
		ions = append(ions, b, y)
	}
	sort.Float64s(ions)
	return ions
}

// sharedIons counts peaks common to two ascending m/z lists within the given
// absolute tolerance, consuming each peak at most once.
func sharedIons(a, b []float64, tolerance float64) int {
	shared, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		d := a[i] - b[j]
		switch {
		case d < -tolerance:
			i++
		case d > tolerance:
			j++
		default:
			shared++
			i++
			j++
		}
	}
	return shared
}
