// Package spectrum measures generated bursts: power spectral density,
// occupied bandwidth and peak-to-average power ratio.
package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Report summarizes a block of samples
type Report struct {
	MeanPower         float64 // linear
	PeakPower         float64 // linear
	PAPR              float64 // dB
	OccupiedBandwidth float64 // fraction of the sample rate
}

func (r Report) String() string {
	return fmt.Sprintf("mean=%.3f peak=%.3f papr=%.2f dB obw=%.3f fs",
		r.MeanPower, r.PeakPower, r.PAPR, r.OccupiedBandwidth)
}

// Analyzer estimates spectra with Welch's method: Hann-windowed segments of
// nfft samples with 50% overlap.
type Analyzer struct {
	nfft   int
	window []float64
	wpow   float64
	fft    *fourier.CmplxFFT
	seg    []complex128
	coeffs []complex128
}

// NewAnalyzer creates an analyzer with nfft-point segments
func NewAnalyzer(nfft int) (*Analyzer, error) {
	if nfft < 8 {
		return nil, fmt.Errorf("invalid FFT size: %d", nfft)
	}

	w := make([]float64, nfft)
	for i := range w {
		w[i] = 1
	}
	window.Hann(w)

	return &Analyzer{
		nfft:   nfft,
		window: w,
		wpow:   floats.Dot(w, w),
		fft:    fourier.NewCmplxFFT(nfft),
		seg:    make([]complex128, nfft),
		coeffs: make([]complex128, nfft),
	}, nil
}

// PSD returns the power spectral density of x with DC in the center bin.
// The bins sum to the mean power of x.
func (a *Analyzer) PSD(x []complex64) ([]float64, error) {
	if len(x) < a.nfft {
		return nil, fmt.Errorf("need at least %d samples, got %d", a.nfft, len(x))
	}

	psd := make([]float64, a.nfft)
	hop := a.nfft / 2
	segments := 0
	for start := 0; start+a.nfft <= len(x); start += hop {
		for i := range a.seg {
			a.seg[i] = complex128(x[start+i]) * complex(a.window[i], 0)
		}
		a.coeffs = a.fft.Coefficients(a.coeffs, a.seg)
		for k, c := range a.coeffs {
			psd[(k+a.nfft/2)%a.nfft] += real(c)*real(c) + imag(c)*imag(c)
		}
		segments++
	}

	floats.Scale(1/(float64(segments)*float64(a.nfft)*a.wpow), psd)
	return psd, nil
}

// Analyze computes a Report for x
func (a *Analyzer) Analyze(x []complex64, fraction float64) (Report, error) {
	psd, err := a.PSD(x)
	if err != nil {
		return Report{}, err
	}
	mean, peak := Power(x)
	return Report{
		MeanPower:         mean,
		PeakPower:         peak,
		PAPR:              PAPR(x),
		OccupiedBandwidth: OccupiedBandwidth(psd, fraction),
	}, nil
}

// OccupiedBandwidth returns the width, as a fraction of the sample rate, of
// the band holding the given fraction of the power in a centered PSD. The
// excluded power is split evenly between the two band edges.
func OccupiedBandwidth(psd []float64, fraction float64) float64 {
	total := floats.Sum(psd)
	if total <= 0 || len(psd) == 0 {
		return 0
	}
	// tolerance keeps a tail landing exactly on a bin edge from rounding a bin in
	tail := (1 - fraction) / 2 * total * (1 + 1e-9)

	lo, acc := 0, 0.0
	for ; lo < len(psd)-1; lo++ {
		if acc+psd[lo] > tail {
			break
		}
		acc += psd[lo]
	}
	hi, acc := len(psd)-1, 0.0
	for ; hi > lo; hi-- {
		if acc+psd[hi] > tail {
			break
		}
		acc += psd[hi]
	}
	return float64(hi-lo+1) / float64(len(psd))
}

// Power returns the mean and peak instantaneous power of x
func Power(x []complex64) (mean, peak float64) {
	if len(x) == 0 {
		return 0, 0
	}
	for _, s := range x {
		p := float64(real(s))*float64(real(s)) + float64(imag(s))*float64(imag(s))
		mean += p
		peak = math.Max(peak, p)
	}
	return mean / float64(len(x)), peak
}

// PAPR returns the peak-to-average power ratio of x in dB
func PAPR(x []complex64) float64 {
	mean, peak := Power(x)
	if mean == 0 {
		return 0
	}
	return 10 * math.Log10(peak/mean)
}
