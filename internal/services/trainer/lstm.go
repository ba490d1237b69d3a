package trainer

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// params holds the weights of one LSTM layer (input dim 1, gates ordered
// input, forget, cell, output) and a dense scalar head. The same shape is
// used for gradients.
type params struct {
	wx *mat.VecDense // input kernel, 4H
	u  *mat.Dense    // recurrent kernel, 4H x H
	b  *mat.VecDense // gate bias, 4H
	wd *mat.VecDense // dense kernel, H
	bd []float64     // dense bias, 1
}

func newParams(hidden int) *params {
	return &params{
		wx: mat.NewVecDense(4*hidden, nil),
		u:  mat.NewDense(4*hidden, hidden, nil),
		b:  mat.NewVecDense(4*hidden, nil),
		wd: mat.NewVecDense(hidden, nil),
		bd: make([]float64, 1),
	}
}

// slices exposes the backing arrays in a fixed order.
func (p *params) slices() [][]float64 {
	return [][]float64{
		p.wx.RawVector().Data,
		p.u.RawMatrix().Data,
		p.b.RawVector().Data,
		p.wd.RawVector().Data,
		p.bd,
	}
}

func (p *params) zero() {
	for _, s := range p.slices() {
		for i := range s {
			s[i] = 0
		}
	}
}

// initParams uses Glorot-uniform kernels, an orthogonal recurrent kernel and
// a forget-gate bias of one.
func initParams(p *params, hidden int, rng *rand.Rand) {
	lim := math.Sqrt(6 / float64(1+4*hidden))
	wx := p.wx.RawVector().Data
	for i := range wx {
		wx[i] = (2*rng.Float64() - 1) * lim
	}
	orthogonal(p.u, rng)
	b := p.b.RawVector().Data
	for k := hidden; k < 2*hidden; k++ {
		b[k] = 1
	}
	limD := math.Sqrt(6 / float64(hidden+1))
	wd := p.wd.RawVector().Data
	for i := range wd {
		wd[i] = (2*rng.Float64() - 1) * limD
	}
}

// orthogonal fills dst (rows >= cols) with orthonormal columns taken from
// the QR factorization of a Gaussian matrix.
func orthogonal(dst *mat.Dense, rng *rand.Rand) {
	r, c := dst.Dims()
	a := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}
	var qr mat.QR
	qr.Factorize(a)
	var q, rr mat.Dense
	qr.QTo(&q)
	qr.RTo(&rr)
	for j := 0; j < c; j++ {
		s := 1.0
		if rr.At(j, j) < 0 {
			s = -1
		}
		for i := 0; i < r; i++ {
			dst.Set(i, j, s*q.At(i, j))
		}
	}
}

// workspace caches activations of one forward pass for backpropagation.
// Index t in 1..L refers to time step t; index 0 holds the zero state.
type workspace struct {
	hs     []*mat.VecDense
	cs     [][]float64
	tcs    [][]float64
	gates  [][]float64
	z      *mat.VecDense
	dz     *mat.VecDense
	dh     *mat.VecDense
	dc     []float64
	steps  int
	hidden int
}

func newWorkspace(hidden, steps int) *workspace {
	ws := &workspace{
		hs:     make([]*mat.VecDense, steps+1),
		cs:     make([][]float64, steps+1),
		tcs:    make([][]float64, steps+1),
		gates:  make([][]float64, steps+1),
		z:      mat.NewVecDense(4*hidden, nil),
		dz:     mat.NewVecDense(4*hidden, nil),
		dh:     mat.NewVecDense(hidden, nil),
		dc:     make([]float64, hidden),
		steps:  steps,
		hidden: hidden,
	}
	for t := 0; t <= steps; t++ {
		ws.hs[t] = mat.NewVecDense(hidden, nil)
		ws.cs[t] = make([]float64, hidden)
		ws.tcs[t] = make([]float64, hidden)
		ws.gates[t] = make([]float64, 4*hidden)
	}
	return ws
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// forward runs the window through the network and returns the scalar output.
func forward(p *params, ws *workspace, window []float64) float64 {
	h := ws.hidden
	for t := 1; t <= len(window); t++ {
		x := window[t-1]
		ws.z.MulVec(p.u, ws.hs[t-1])
		ws.z.AddScaledVec(ws.z, x, p.wx)
		ws.z.AddVec(ws.z, p.b)
		zd := ws.z.RawVector().Data

		a := ws.gates[t]
		cPrev, c, tc := ws.cs[t-1], ws.cs[t], ws.tcs[t]
		hd := ws.hs[t].RawVector().Data
		for k := 0; k < h; k++ {
			ig := sigmoid(zd[k])
			fg := sigmoid(zd[h+k])
			gg := math.Tanh(zd[2*h+k])
			og := sigmoid(zd[3*h+k])
			a[k], a[h+k], a[2*h+k], a[3*h+k] = ig, fg, gg, og
			c[k] = fg*cPrev[k] + ig*gg
			tc[k] = math.Tanh(c[k])
			hd[k] = og * tc[k]
		}
	}
	return mat.Dot(p.wd, ws.hs[len(window)]) + p.bd[0]
}

// backward accumulates into g the gradient of the loss given dy = dLoss/dOutput,
// using the activations left in ws by the preceding forward call.
func backward(p *params, ws *workspace, window []float64, dy float64, g *params) {
	h := ws.hidden
	steps := len(window)

	g.wd.AddScaledVec(g.wd, dy, ws.hs[steps])
	g.bd[0] += dy
	ws.dh.ScaleVec(dy, p.wd)
	for k := range ws.dc {
		ws.dc[k] = 0
	}

	for t := steps; t >= 1; t-- {
		a := ws.gates[t]
		cPrev, tc := ws.cs[t-1], ws.tcs[t]
		dh := ws.dh.RawVector().Data
		dz := ws.dz.RawVector().Data
		for k := 0; k < h; k++ {
			ig, fg, gg, og := a[k], a[h+k], a[2*h+k], a[3*h+k]
			dc := ws.dc[k] + dh[k]*og*(1-tc[k]*tc[k])
			dz[k] = dc * gg * ig * (1 - ig)
			dz[h+k] = dc * cPrev[k] * fg * (1 - fg)
			dz[2*h+k] = dc * ig * (1 - gg*gg)
			dz[3*h+k] = dh[k] * tc[k] * og * (1 - og)
			ws.dc[k] = dc * fg
		}
		g.wx.AddScaledVec(g.wx, window[t-1], ws.dz)
		g.u.RankOne(g.u, 1, ws.dz, ws.hs[t-1])
		g.b.AddVec(g.b, ws.dz)
		ws.dh.MulVec(p.u.T(), ws.dz)
	}
}

// accumulate computes gradients of the mean squared error over the samples
// selected by idx into g and returns their summed squared error.
func accumulate(p *params, ws *workspace, inputs [][]float64, targets []float64, idx []int, g *params) float64 {
	g.zero()
	n := float64(len(idx))
	var sse float64
	for _, j := range idx {
		e := forward(p, ws, inputs[j]) - targets[j]
		sse += e * e
		backward(p, ws, inputs[j], 2*e/n, g)
	}
	return sse
}
