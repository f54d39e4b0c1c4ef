package regression

import (
	"math"
	"math/rand"
)

// Adam hyper-parameters (Keras defaults)
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

// dense is a fully connected layer with optional ReLU
type dense struct {
	in, out int
	relu    bool

	w, b   []float64 // w is row-major [out][in]
	gw, gb []float64
	mw, vw []float64
	mb, vb []float64
}

func newDense(rng *rand.Rand, in, out int, relu bool) *dense {
	l := &dense{
		in:   in,
		out:  out,
		relu: relu,
		w:    make([]float64, in*out),
		b:    make([]float64, out),
		gw:   make([]float64, in*out),
		gb:   make([]float64, out),
		mw:   make([]float64, in*out),
		vw:   make([]float64, in*out),
		mb:   make([]float64, out),
		vb:   make([]float64, out),
	}

	// Glorot uniform
	limit := math.Sqrt(6.0 / float64(in+out))
	for i := range l.w {
		l.w[i] = (rng.Float64()*2 - 1) * limit
	}
	return l
}

// forward returns pre-activation z and activation a
func (l *dense) forward(x []float64) (z, a []float64) {
	z = make([]float64, l.out)
	a = make([]float64, l.out)
	for j := 0; j < l.out; j++ {
		sum := l.b[j]
		row := l.w[j*l.in : (j+1)*l.in]
		for i, v := range x {
			sum += row[i] * v
		}
		z[j] = sum
		if l.relu && sum < 0 {
			a[j] = 0
		} else {
			a[j] = sum
		}
	}
	return z, a
}

// backward accumulates gradients for one sample and returns dL/dx
func (l *dense) backward(x, z, dA []float64) []float64 {
	dX := make([]float64, l.in)
	for j := 0; j < l.out; j++ {
		dz := dA[j]
		if l.relu && z[j] <= 0 {
			dz = 0
		}
		if dz == 0 {
			continue
		}
		l.gb[j] += dz
		row := l.w[j*l.in : (j+1)*l.in]
		grow := l.gw[j*l.in : (j+1)*l.in]
		for i := range row {
			grow[i] += dz * x[i]
			dX[i] += row[i] * dz
		}
	}
	return dX
}

func (l *dense) zeroGrad() {
	for i := range l.gw {
		l.gw[i] = 0
	}
	for i := range l.gb {
		l.gb[i] = 0
	}
}

func (l *dense) adamStep(lr float64, step int) {
	c1 := 1 - math.Pow(adamBeta1, float64(step))
	c2 := 1 - math.Pow(adamBeta2, float64(step))
	update := func(p, g, m, v []float64) {
		for i := range p {
			m[i] = adamBeta1*m[i] + (1-adamBeta1)*g[i]
			v[i] = adamBeta2*v[i] + (1-adamBeta2)*g[i]*g[i]
			mHat := m[i] / c1
			vHat := v[i] / c2
			p[i] -= lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
		}
	}
	update(l.w, l.gw, l.mw, l.vw)
	update(l.b, l.gb, l.mb, l.vb)
}

// network is a small feed-forward regressor: in → hidden... → 1
type network struct {
	layers []*dense
	step   int
}

func newNetwork(rng *rand.Rand, in int, hidden []int) *network {
	n := &network{}
	prev := in
	for _, h := range hidden {
		n.layers = append(n.layers, newDense(rng, prev, h, true))
		prev = h
	}
	n.layers = append(n.layers, newDense(rng, prev, 1, false))
	return n
}

// predict runs a forward pass for one input
func (n *network) predict(x []float64) float64 {
	a := x
	for _, l := range n.layers {
		_, a = l.forward(a)
	}
	return a[0]
}

// trainBatch performs one Adam update on the batch and returns its MSE before the update
func (n *network) trainBatch(xs [][]float64, ys []float64, lr float64) float64 {
	for _, l := range n.layers {
		l.zeroGrad()
	}

	batch := float64(len(xs))
	inputs := make([][]float64, len(n.layers))
	pre := make([][]float64, len(n.layers))

	var loss float64
	for s, x := range xs {
		a := x
		for k, l := range n.layers {
			inputs[k] = a
			pre[k], a = l.forward(a)
		}

		diff := a[0] - ys[s]
		loss += diff * diff

		grad := []float64{2 * diff / batch}
		for k := len(n.layers) - 1; k >= 0; k-- {
			grad = n.layers[k].backward(inputs[k], pre[k], grad)
		}
	}

	n.step++
	for _, l := range n.layers {
		l.adamStep(lr, n.step)
	}
	return loss / batch
}

// mse evaluates mean squared error without updating parameters
func (n *network) mse(xs [][]float64, ys []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for i, x := range xs {
		d := n.predict(x) - ys[i]
		sum += d * d
	}
	return sum / float64(len(xs))
}
