package ndarray

import "github.com/born-ml/ndcore/internal/kernel"

// binaryEntry is the shared facade path for the arithmetic ops.
func binaryEntry(symbol string, op kernel.BinOp, a, b Handle, outHandle *Handle) Status {
	return guard(symbol, func() error {
		if err := checkOut(symbol, outHandle); err != nil {
			return err
		}
		aa, err := getArray(a)
		if err != nil {
			return err
		}
		bb, err := getArray(b)
		if err != nil {
			return err
		}
		out, err := kernel.Binary(op, aa, bb)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// Add computes a + b with broadcasting and dtype promotion.
func Add(a, b Handle, outHandle *Handle) Status {
	return binaryEntry("nd_add", kernel.OpAdd, a, b, outHandle)
}

// Sub computes a - b with broadcasting and dtype promotion.
func Sub(a, b Handle, outHandle *Handle) Status {
	return binaryEntry("nd_sub", kernel.OpSub, a, b, outHandle)
}

// Mul computes a * b with broadcasting and dtype promotion.
func Mul(a, b Handle, outHandle *Handle) Status {
	return binaryEntry("nd_mul", kernel.OpMul, a, b, outHandle)
}

// Div computes a / b. Floats follow IEEE-754; integer division truncates
// toward zero and a zero divisor fails the whole op with INVALID_ARG.
func Div(a, b Handle, outHandle *Handle) Status {
	return binaryEntry("nd_div", kernel.OpDiv, a, b, outHandle)
}

// compareEntry is the shared facade path for the comparisons.
func compareEntry(symbol string, op kernel.CmpOp, a, b Handle, outHandle *Handle) Status {
	return guard(symbol, func() error {
		if err := checkOut(symbol, outHandle); err != nil {
			return err
		}
		aa, err := getArray(a)
		if err != nil {
			return err
		}
		bb, err := getArray(b)
		if err != nil {
			return err
		}
		out, err := kernel.Compare(op, aa, bb)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// Eq compares a == b elementwise, producing an I32 array of {0, 1}.
func Eq(a, b Handle, outHandle *Handle) Status {
	return compareEntry("nd_eq", kernel.OpEq, a, b, outHandle)
}

// Lt compares a < b elementwise, producing an I32 array of {0, 1}.
func Lt(a, b Handle, outHandle *Handle) Status {
	return compareEntry("nd_lt", kernel.OpLt, a, b, outHandle)
}

// Gt compares a > b elementwise, producing an I32 array of {0, 1}.
func Gt(a, b Handle, outHandle *Handle) Status {
	return compareEntry("nd_gt", kernel.OpGt, a, b, outHandle)
}

// Where selects x where cond is nonzero and y elsewhere. cond must be I32;
// all three shapes broadcast together.
func Where(cond, x, y Handle, outHandle *Handle) Status {
	return guard("nd_where", func() error {
		if err := checkOut("nd_where", outHandle); err != nil {
			return err
		}
		cc, err := getArray(cond)
		if err != nil {
			return err
		}
		xx, err := getArray(x)
		if err != nil {
			return err
		}
		yy, err := getArray(y)
		if err != nil {
			return err
		}
		out, err := kernel.Where(cc, xx, yy)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// SumAll reduces every element to a rank-0 array of the same dtype.
func SumAll(a Handle, outHandle *Handle) Status {
	return guard("nd_sum_all", func() error {
		if err := checkOut("nd_sum_all", outHandle); err != nil {
			return err
		}
		aa, err := getArray(a)
		if err != nil {
			return err
		}
		out, err := kernel.SumAll(aa)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// SumAxis reduces one axis (negative counts from the end), removing it
// from the result shape.
func SumAxis(a Handle, axis int32, outHandle *Handle) Status {
	return guard("nd_sum_axis", func() error {
		if err := checkOut("nd_sum_axis", outHandle); err != nil {
			return err
		}
		aa, err := getArray(a)
		if err != nil {
			return err
		}
		out, err := kernel.SumAxis(aa, axis)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// MatMul multiplies two arrays of rank 1 or 2 synchronously.
func MatMul(a, b Handle, outHandle *Handle) Status {
	return guard("nd_matmul", func() error {
		if err := checkOut("nd_matmul", outHandle); err != nil {
			return err
		}
		aa, err := getArray(a)
		if err != nil {
			return err
		}
		bb, err := getArray(b)
		if err != nil {
			return err
		}
		out, err := kernel.MatMul(aa, bb, nil)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}
