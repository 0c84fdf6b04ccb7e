package grid

// Fields holds per-component field arrays. The second index is the copy
// (0 real, 1 imaginary/second copy). A nil array means the component is not
// stored by this chunk.
type Fields [NumComponents][2][]float64

// NewFields allocates copy 0 of every listed component with v.Ntot() points.
func NewFields(v Volume, components ...Component) *Fields {
	f := new(Fields)
	for _, c := range components {
		f[c][0] = make([]float64, v.Ntot())
	}
	return f
}

// Has reports whether copy cmp of c is stored.
func (f *Fields) Has(c Component, cmp int) bool {
	return f != nil && f[c][cmp] != nil
}

// Fill sets every point of every stored copy of c to val.
func (f *Fields) Fill(c Component, val float64) {
	for cmp := 0; cmp < 2; cmp++ {
		for i := range f[c][cmp] {
			f[c][cmp][i] = val
		}
	}
}

// CopyFrom copies src into f for every array present in both.
func (f *Fields) CopyFrom(src *Fields) {
	for c := Component(0); c < NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if f[c][cmp] != nil && src[c][cmp] != nil {
				copy(f[c][cmp], src[c][cmp])
			}
		}
	}
}

// Clone returns a deep copy.
func (f *Fields) Clone() *Fields {
	out := new(Fields)
	for c := Component(0); c < NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if f[c][cmp] != nil {
				out[c][cmp] = append([]float64(nil), f[c][cmp]...)
			}
		}
	}
	return out
}

// CopyComponent copies src's copy cmp of c onto dst's copy cmp of c', e.g.
// E onto D before a polarization is subtracted.
func CopyComponent(dst *Fields, dc Component, src *Fields, sc Component, cmp int) {
	if dst[dc][cmp] != nil && src[sc][cmp] != nil {
		copy(dst[dc][cmp], src[sc][cmp])
	}
}
