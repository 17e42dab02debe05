package nifs

var (
	// ParamsLogN10 is a parameters set folding witnesses of length 2^10
	// with 128-bit coefficients bounded by 2^7.
	ParamsLogN10 = ParametersLiteral{
		RingDegree: 1 << 10,
		LogQ:       []int{55, 55},

		Kappa:      8,
		WitnessLen: 1 << 10,
		Bound:      1 << 7,

		DecompBase:      1 << 16,
		MaxNestingDepth: 4,
	}

	// ParamsLogN12 is a parameters set folding witnesses of length 2^12
	// with 165-bit coefficients bounded by 2^9.
	ParamsLogN12 = ParametersLiteral{
		RingDegree: 1 << 11,
		LogQ:       []int{55, 55, 55},

		Kappa:      10,
		WitnessLen: 1 << 12,
		Bound:      1 << 9,

		DecompBase:      1 << 16,
		MaxNestingDepth: 4,
	}
)
