package gonudg

import (
	"math"
)

// JacobiP evaluates the orthonormal Jacobi polynomial P_n^(alpha,beta) at x
func JacobiP(x []float64, alpha, beta float64, n int) []float64 {
	Np := len(x)

	// P_0
	gamma0 := Gamma0(alpha, beta)
	Pprev := make([]float64, Np)
	for i := range Pprev {
		Pprev[i] = 1.0 / math.Sqrt(gamma0)
	}
	if n == 0 {
		return Pprev
	}

	// P_1
	gamma1 := (alpha + 1) * (beta + 1) / (alpha + beta + 3) * gamma0
	P := make([]float64, Np)
	for i := range P {
		P[i] = ((alpha+beta+2)*x[i]/2 + (alpha-beta)/2) / math.Sqrt(gamma1)
	}
	if n == 1 {
		return P
	}

	// Three term recurrence
	// P_{i+1} = ((x - b_i) P_i - a_i P_{i-1}) / a_{i+1}
	aold := 2.0 / (2.0 + alpha + beta) * math.Sqrt((alpha+1)*(beta+1)/(alpha+beta+3))
	next := make([]float64, Np)
	for i := 1; i < n; i++ {
		fi := float64(i)
		h1 := 2*fi + alpha + beta
		anew := 2.0 / (h1 + 2) * math.Sqrt((fi+1)*(fi+1+alpha+beta)*
			(fi+1+alpha)*(fi+1+beta)/(h1+1)/(h1+3))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2)
		for j := range next {
			next[j] = (-aold*Pprev[j] + (x[j]-bnew)*P[j]) / anew
		}
		Pprev, P, next = P, next, Pprev
		aold = anew
	}
	return P
}

// GradJacobiP evaluates d/dx P_n^(alpha,beta) at x
func GradJacobiP(x []float64, alpha, beta float64, n int) []float64 {
	dP := make([]float64, len(x))
	if n == 0 {
		return dP
	}
	// d/dx P_n^(a,b) = sqrt(n(n+a+b+1)) P_{n-1}^(a+1,b+1)
	P := JacobiP(x, alpha+1, beta+1, n-1)
	fac := math.Sqrt(float64(n) * (float64(n) + alpha + beta + 1))
	for i := range dP {
		dP[i] = fac * P[i]
	}
	return dP
}
