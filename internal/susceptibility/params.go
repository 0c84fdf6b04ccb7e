package susceptibility

import "fmt"

// Kind is the type tag written at the head of every parameter record.
type Kind int

const (
	KindLorentzian      Kind = 4
	KindNoisyLorentzian Kind = 5
	KindGyrotropic      Kind = 8
)

func (k Kind) String() string {
	switch k {
	case KindLorentzian:
		return "lorentzian"
	case KindNoisyLorentzian:
		return "noisy_lorentzian"
	case KindGyrotropic:
		return "gyrotropic"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// RecordLen is the number of values in a record of kind k, or 0 if k is
// unknown.
func (k Kind) RecordLen() int {
	switch k {
	case KindLorentzian:
		return 5
	case KindNoisyLorentzian:
		return 6
	case KindGyrotropic:
		return 9
	}
	return 0
}

// ParamWriter is an append-only numeric dataset. WriteChunk stores data at
// offsets [start, start+len(data)).
type ParamWriter interface {
	WriteChunk(start int, data []float64) error
}

func writeRecord(w ParamWriter, start *int, rec []float64) error {
	if err := w.WriteChunk(*start, rec); err != nil {
		return fmt.Errorf("write %s params at %d: %w", Kind(rec[0]), *start, err)
	}
	*start += len(rec)
	return nil
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ParamRecord is one decoded parameter record.
type ParamRecord struct {
	Kind                Kind
	ID                  int
	Omega0              float64
	Gamma               float64
	NoOmega0Denominator bool
	NoiseAmp            float64
	Bias                [3]float64
	Alpha               float64
}

// DecodeParams splits a concatenated record stream into records.
func DecodeParams(data []float64) ([]ParamRecord, error) {
	var recs []ParamRecord
	for off := 0; off < len(data); {
		tag := data[off]
		k := Kind(tag)
		n := k.RecordLen()
		if n == 0 || float64(int(tag)) != tag {
			return nil, fmt.Errorf("%w: unknown tag %v at %d", ErrBadRecord, tag, off)
		}
		if off+n > len(data) {
			return nil, fmt.Errorf("%w: %s record at %d truncated", ErrBadRecord, k, off)
		}
		v := data[off : off+n]
		r := ParamRecord{Kind: k, ID: int(v[1])}
		switch k {
		case KindLorentzian:
			r.Omega0, r.Gamma, r.NoOmega0Denominator = v[2], v[3], v[4] != 0
		case KindNoisyLorentzian:
			r.NoiseAmp, r.Omega0, r.Gamma, r.NoOmega0Denominator = v[2], v[3], v[4], v[5] != 0
		case KindGyrotropic:
			r.Bias = [3]float64{v[2], v[3], v[4]}
			r.Alpha, r.Omega0, r.Gamma, r.NoOmega0Denominator = v[5], v[6], v[7], v[8] != 0
		}
		recs = append(recs, r)
		off += n
	}
	return recs, nil
}

// Response rebuilds a response with the record's parameters and ID. The
// coupling profile is not part of the record and starts empty.
func (r ParamRecord) Response(sampler Sampler) (Response, error) {
	switch r.Kind {
	case KindLorentzian:
		l := NewLorentzian(r.Omega0, r.Gamma, r.NoOmega0Denominator)
		l.id = r.ID
		return l, nil
	case KindNoisyLorentzian:
		n := NewNoisyLorentzian(r.NoiseAmp, r.Omega0, r.Gamma, r.NoOmega0Denominator, sampler)
		n.id = r.ID
		return n, nil
	case KindGyrotropic:
		g := NewGyrotropic(r.Bias, r.Alpha, r.Omega0, r.Gamma)
		g.NoOmega0Denominator = r.NoOmega0Denominator
		g.id = r.ID
		return g, nil
	}
	return nil, fmt.Errorf("%w: kind %d", ErrBadRecord, int(r.Kind))
}
