// Package filter designs pulse-shaping prototypes and runs them as polyphase
// interpolators.
package filter

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Prototype is a pulse-shaping filter family
type Prototype int

const (
	// Kaiser is an approximate square-root Nyquist pulse: a Kaiser-windowed
	// lowpass whose cutoff is tuned so the matched response has minimal
	// inter-symbol interference
	Kaiser Prototype = iota
	// RRC is a square-root raised-cosine pulse
	RRC
	// HammingRRC is a square-root raised-cosine pulse tapered by a Hamming window
	HammingRRC
)

var prototypeNames = map[Prototype]string{
	Kaiser:     "kaiser",
	RRC:        "rrc",
	HammingRRC: "hamming-rrc",
}

func (p Prototype) String() string {
	if name, ok := prototypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Prototype(%d)", int(p))
}

// ParsePrototype parses a prototype name such as "rrc"
func ParsePrototype(name string) (Prototype, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range prototypeNames {
		if n == name {
			return p, nil
		}
	}
	return Kaiser, fmt.Errorf("unknown filter prototype %q", name)
}

// Design returns the 2*k*m+1 prototype taps for k samples/symbol, a delay of
// m symbols, excess bandwidth beta and fractional sample offset dt. Taps are
// scaled to a DC gain of k.
func Design(p Prototype, k, m int, beta, dt float64) ([]float64, error) {
	if k < 2 {
		return nil, fmt.Errorf("invalid interpolation factor: %d", k)
	}
	if m < 1 {
		return nil, fmt.Errorf("invalid filter delay: %d", m)
	}
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("invalid excess bandwidth: %.3f", beta)
	}
	if dt < -0.5 || dt > 0.5 {
		return nil, fmt.Errorf("invalid fractional offset: %.3f", dt)
	}

	n := 2*k*m + 1
	var h []float64
	switch p {
	case Kaiser:
		rho := rootKaiserRho(k, m, beta)
		h = rootKaiser(k, m, beta, rho, dt)
	case RRC, HammingRRC:
		h = make([]float64, n)
		for i := range h {
			t := (float64(i) - float64(n-1)/2 + dt) / float64(k)
			h[i] = rootRaisedCosine(t, beta)
		}
		if p == HammingRRC {
			window.Hamming(h)
		}
	default:
		return nil, fmt.Errorf("unknown filter prototype %d", int(p))
	}

	sum := floats.Sum(h)
	if sum == 0 {
		return nil, fmt.Errorf("degenerate %s prototype", p)
	}
	floats.Scale(float64(k)/sum, h)
	return h, nil
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// rootKaiser is a Kaiser-windowed lowpass of 2km+1 taps. rho in (0,1) trades
// the transition width (beta*rho) against the cutoff 0.5*(1+beta*(1-rho))/k.
func rootKaiser(k, m int, beta, rho, dt float64) []float64 {
	n := 2*k*m + 1
	df := beta * rho / float64(k)
	fc := 0.5 * (1 + beta*(1-rho)) / float64(k)
	as := 14.26*df*float64(n-1) + 7.95

	h := kaiserWindow(n, kaiserAlpha(as))
	for i := range h {
		t := float64(i) - float64(n-1)/2 + dt
		h[i] *= 2 * fc * sinc(2*fc*t)
	}
	return h
}

// rootKaiserRho finds the bandwidth split minimizing MatchedISI: a coarse grid
// followed by a golden-section search around the best grid point.
func rootKaiserRho(k, m int, beta float64) float64 {
	cost := func(rho float64) float64 {
		return MatchedISI(rootKaiser(k, m, beta, rho, 0), k)
	}

	const steps = 50
	best, bestCost := 0.5, math.Inf(1)
	for i := 1; i < steps; i++ {
		rho := float64(i) / steps
		if c := cost(rho); c < bestCost {
			best, bestCost = rho, c
		}
	}

	lo, hi := best-1.0/steps, best+1.0/steps
	phi := (math.Sqrt(5) - 1) / 2
	x1, x2 := hi-phi*(hi-lo), lo+phi*(hi-lo)
	c1, c2 := cost(x1), cost(x2)
	for i := 0; i < 30; i++ {
		if c1 < c2 {
			hi, x2, c2 = x2, x1, c1
			x1 = hi - phi*(hi-lo)
			c1 = cost(x1)
		} else {
			lo, x1, c1 = x1, x2, c2
			x2 = lo + phi*(hi-lo)
			c2 = cost(x2)
		}
	}
	if rho := (lo + hi) / 2; cost(rho) < bestCost {
		return rho
	}
	return best
}

// MatchedISI returns the largest magnitude of the autocorrelation of h at a
// non-zero multiple of k samples, relative to its peak. It is zero for an
// exact square-root Nyquist pulse.
func MatchedISI(h []float64, k int) float64 {
	peak := floats.Dot(h, h)
	if peak == 0 {
		return 0
	}
	isi := 0.0
	for lag := k; lag < len(h); lag += k {
		isi = math.Max(isi, math.Abs(floats.Dot(h[:len(h)-lag], h[lag:]))/peak)
	}
	return isi
}

// kaiserAlpha is the window shape for a stop-band attenuation of as dB
func kaiserAlpha(as float64) float64 {
	switch {
	case as > 50:
		return 0.1102 * (as - 8.7)
	case as > 21:
		return 0.5842*math.Pow(as-21, 0.4) + 0.07886*(as-21)
	default:
		return 0
	}
}

func rootRaisedCosine(t, beta float64) float64 {
	if t == 0 {
		return 1 - beta + 4*beta/math.Pi
	}
	if math.Abs(math.Abs(t)-1/(4*beta)) < 1e-9 {
		a := math.Pi / (4 * beta)
		return beta / math.Sqrt2 * ((1+2/math.Pi)*math.Sin(a) + (1-2/math.Pi)*math.Cos(a))
	}
	num := math.Sin(math.Pi*t*(1-beta)) + 4*beta*t*math.Cos(math.Pi*t*(1+beta))
	den := math.Pi * t * (1 - 16*beta*beta*t*t)
	return num / den
}

func kaiserWindow(n int, alpha float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	den := besselI0(alpha)
	for i := range w {
		r := 2*float64(i)/float64(n-1) - 1
		w[i] = besselI0(alpha*math.Sqrt(1-r*r)) / den
	}
	return w
}

// besselI0 evaluates the zeroth-order modified Bessel function of the first kind
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 64; k++ {
		term *= half / float64(k)
		t2 := term * term
		sum += t2
		if t2 < sum*1e-16 {
			break
		}
	}
	return sum
}
