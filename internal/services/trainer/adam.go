package trainer

import "math"

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

type adam struct {
	lr   float64
	t    int
	m, v [][]float64
}

func newAdam(lr float64, p *params) *adam {
	ps := p.slices()
	a := &adam{lr: lr, m: make([][]float64, len(ps)), v: make([][]float64, len(ps))}
	for i, s := range ps {
		a.m[i] = make([]float64, len(s))
		a.v[i] = make([]float64, len(s))
	}
	return a
}

// step applies one bias-corrected update of p along g.
func (a *adam) step(p, g *params) {
	a.t++
	t := float64(a.t)
	lrT := a.lr * math.Sqrt(1-math.Pow(adamBeta2, t)) / (1 - math.Pow(adamBeta1, t))
	ps, gs := p.slices(), g.slices()
	for i := range ps {
		w, grad, m, v := ps[i], gs[i], a.m[i], a.v[i]
		for j := range w {
			m[j] = adamBeta1*m[j] + (1-adamBeta1)*grad[j]
			v[j] = adamBeta2*v[j] + (1-adamBeta2)*grad[j]*grad[j]
			w[j] -= lrT * m[j] / (math.Sqrt(v[j]) + adamEpsilon)
		}
	}
}
