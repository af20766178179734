package experiment

import (
	"math"
)

// Hand-rolled hypothesis tests. Degenerate inputs (empty or zero-variance
// samples) return the neutral result instead of failing: small experiments
// hit those cases routinely and the caller just keeps collecting.

type TestResult struct {
	PValue             float64
	EffectSize         float64
	ConfidenceInterval [2]float64
	Significant        bool
}

func neutralResult() TestResult {
	return TestResult{
		PValue:      1.0,
		EffectSize:  0.0,
		Significant: false,
	}
}

// TwoProportionZTest compares treatment conversions against control.
// EffectSize is the rate difference (treatment - control).
func TwoProportionZTest(controlConv, controlN, treatConv, treatN int64, confidence float64) TestResult {
	if controlN <= 0 || treatN <= 0 {
		return neutralResult()
	}

	pc := float64(controlConv) / float64(controlN)
	pt := float64(treatConv) / float64(treatN)

	pooled := float64(controlConv+treatConv) / float64(controlN+treatN)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(controlN) + 1/float64(treatN)))
	if se == 0 {
		return neutralResult()
	}

	z := (pt - pc) / se
	p := 2 * (1 - normalCDF(math.Abs(z)))

	// CI on the rate difference uses the unpooled standard error.
	seDiff := math.Sqrt(pc*(1-pc)/float64(controlN) + pt*(1-pt)/float64(treatN))
	zCrit := normalQuantile(1 - alpha(confidence)/2)
	diff := pt - pc

	return TestResult{
		PValue:             p,
		EffectSize:         diff,
		ConfidenceInterval: [2]float64{diff - zCrit*seDiff, diff + zCrit*seDiff},
		Significant:        p < alpha(confidence),
	}
}

// WelchTTest compares two continuous samples by mean and variance.
// EffectSize is the mean difference (treatment - control).
func WelchTTest(controlMean, controlVar float64, controlN int64, treatMean, treatVar float64, treatN int64, confidence float64) TestResult {
	if controlN < 2 || treatN < 2 {
		return neutralResult()
	}

	vc := controlVar / float64(controlN)
	vt := treatVar / float64(treatN)
	se := math.Sqrt(vc + vt)
	if se == 0 {
		return neutralResult()
	}

	t := (treatMean - controlMean) / se

	// Welch-Satterthwaite degrees of freedom.
	df := (vc + vt) * (vc + vt) /
		(vc*vc/float64(controlN-1) + vt*vt/float64(treatN-1))
	if df < 1 {
		df = 1
	}

	p := 2 * (1 - studentTCDF(math.Abs(t), df))
	diff := treatMean - controlMean
	tCrit := studentTQuantile(1-alpha(confidence)/2, df)

	return TestResult{
		PValue:             p,
		EffectSize:         diff,
		ConfidenceInterval: [2]float64{diff - tCrit*se, diff + tCrit*se},
		Significant:        p < alpha(confidence),
	}
}

func alpha(confidence float64) float64 {
	if confidence <= 0 || confidence >= 1 {
		return 0.05
	}
	return 1 - confidence
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// normalQuantile is the inverse standard normal CDF (Acklam's rational
// approximation, |error| < 1.15e-9).
func normalQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}

	a := []float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := []float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	c := []float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := []float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}

	const pLow = 0.02425
	const pHigh = 1 - pLow

	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= pHigh:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
}

// studentTCDF evaluates the Student t CDF through the regularized
// incomplete beta function.
func studentTCDF(t, df float64) float64 {
	if math.IsInf(t, 1) {
		return 1
	}
	if math.IsInf(t, -1) {
		return 0
	}
	x := df / (df + t*t)
	ib := regIncBeta(df/2, 0.5, x)
	if t > 0 {
		return 1 - 0.5*ib
	}
	return 0.5 * ib
}

// studentTQuantile inverts studentTCDF by bisection; precision is ample for
// confidence intervals.
func studentTQuantile(p, df float64) float64 {
	if p <= 0.5 {
		return 0
	}
	lo, hi := 0.0, 100.0
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if studentTCDF(mid, df) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// regIncBeta computes the regularized incomplete beta I_x(a, b) with the
// standard continued-fraction expansion.
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lgA, _ := math.Lgamma(a)
	lgB, _ := math.Lgamma(b)
	lgAB, _ := math.Lgamma(a + b)
	front := math.Exp(lgAB - lgA - lgB + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

func betaCF(a, b, x float64) float64 {
	const maxIter = 200
	const eps = 3e-14
	const fpMin = 1e-300

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpMin {
		d = fpMin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
