// Package kernel implements the compute kernels: elementwise binary ops,
// comparisons, where-select, reductions and matmul. Every elementwise op
// (arithmetic, comparison, where) shares the same preamble: broadcast the shapes, promote the dtypes, allocate a fresh
// contiguous output and dispatch to a typed inner loop that drives all
// operands from the broadcast shape via per-axis strides (possibly 0).
// Broadcast operands are never materialized.
package kernel

import (
	"github.com/pkg/errors"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/parallel"
	"github.com/born-ml/ndcore/internal/status"
)

// number constrains the element types kernels operate on.
type number interface {
	~int32 | ~float32 | ~float64
}

// BinOp selects an arithmetic elementwise operation.
type BinOp int

// Arithmetic ops.
const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
)

// String returns the op name used in error messages.
func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	default:
		return "unknown-op"
	}
}

// CmpOp selects a comparison.
type CmpOp int

// Comparison ops.
const (
	OpEq CmpOp = iota
	OpLt
	OpGt
)

// String returns the op name used in error messages.
func (op CmpOp) String() string {
	switch op {
	case OpEq:
		return "eq"
	case OpLt:
		return "lt"
	case OpGt:
		return "gt"
	default:
		return "unknown-op"
	}
}

// Binary applies an arithmetic op with broadcasting and dtype promotion,
// returning a fresh contiguous array. Integer overflow wraps; floats follow
// IEEE-754. Integer division by zero fails the whole op with INVALID_ARG
// since there is no integer NaN.
func Binary(op BinOp, a, b *array.Array) (*array.Array, error) {
	outShape, err := array.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errors.Wrap(err, op.String())
	}
	outDtype := array.Promote(a.Dtype(), b.Dtype())

	if op == OpDiv && outDtype == array.I32 && outShape.NumElements() > 0 {
		if err := checkIntDivisor(b); err != nil {
			return nil, err
		}
	}

	out, err := array.NewDense(outDtype, outShape, false)
	if err != nil {
		return nil, errors.Wrap(err, op.String())
	}
	binaryInto(op, out, a, b)
	return out, nil
}

// BinaryInto shares the elementwise preamble but writes into a caller-owned
// output, which must be contiguous, writable and match the broadcast shape
// and promoted dtype exactly.
func BinaryInto(op BinOp, a, b, out *array.Array) error {
	outShape, err := array.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return errors.Wrap(err, op.String())
	}
	outDtype := array.Promote(a.Dtype(), b.Dtype())

	if out.Readonly() {
		return status.Errorf(status.InvalidArg, "%s: out array is readonly", op)
	}
	if out.Dtype() != outDtype {
		return status.Errorf(status.InvalidDtype, "%s: out dtype %s does not match promoted dtype %s",
			op, out.Dtype(), outDtype)
	}
	if !out.Shape().Equal(outShape) {
		return status.Errorf(status.InvalidShape, "%s: out shape %v does not match broadcast shape %v",
			op, []int64(out.Shape()), []int64(outShape))
	}
	if !out.IsContiguous() || out.Offset() != 0 {
		return status.Errorf(status.NotContiguous, "%s: out array is not contiguous", op)
	}

	if op == OpDiv && outDtype == array.I32 && outShape.NumElements() > 0 {
		if err := checkIntDivisor(b); err != nil {
			return err
		}
	}
	binaryInto(op, out, a, b)
	return nil
}

// binaryInto dispatches the validated op on the promoted dtype.
func binaryInto(op BinOp, out, a, b *array.Array) {
	shape := out.Shape()
	sa := a.ElemStrides(shape)
	sb := b.ElemStrides(shape)
	ba := a.ElemOffset(0)
	bb := b.ElemOffset(0)

	switch out.Dtype() {
	case array.F64:
		ewArith(op, out.Storage().Float64s(), shape, loadF64(a), loadF64(b), sa, sb, ba, bb)
	case array.F32:
		ewArith(op, out.Storage().Float32s(), shape, loadF32(a), loadF32(b), sa, sb, ba, bb)
	case array.I32:
		ewArith(op, out.Storage().Int32s(), shape, loadI32(a), loadI32(b), sa, sb, ba, bb)
	default:
		panic("binary: unreachable dtype")
	}
}

// checkIntDivisor scans the divisor once; any zero fails the op before the
// output exists.
func checkIntDivisor(b *array.Array) error {
	span := b.Storage().Int32s()
	width := b.Dtype().Size()
	var zero bool
	b.IterBytes(func(byteOff int64) {
		if span[byteOff/width] == 0 {
			zero = true
		}
	})
	if zero {
		return status.Errorf(status.InvalidArg, "div: integer division by zero")
	}
	return nil
}

// Compare applies eq/lt/gt after promotion, producing an I32 array with
// values {0, 1}. Float comparisons follow IEEE-754, so any comparison
// against NaN yields 0.
func Compare(op CmpOp, a, b *array.Array) (*array.Array, error) {
	outShape, err := array.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errors.Wrap(err, op.String())
	}
	promoted := array.Promote(a.Dtype(), b.Dtype())

	out, err := array.NewDense(array.I32, outShape, false)
	if err != nil {
		return nil, errors.Wrap(err, op.String())
	}

	dst := out.Storage().Int32s()
	sa := a.ElemStrides(outShape)
	sb := b.ElemStrides(outShape)
	ba := a.ElemOffset(0)
	bb := b.ElemOffset(0)

	switch promoted {
	case array.F64:
		ewCompare(op, dst, outShape, loadF64(a), loadF64(b), sa, sb, ba, bb)
	case array.F32:
		ewCompare(op, dst, outShape, loadF32(a), loadF32(b), sa, sb, ba, bb)
	case array.I32:
		ewCompare(op, dst, outShape, loadI32(a), loadI32(b), sa, sb, ba, bb)
	default:
		panic("compare: unreachable dtype")
	}
	return out, nil
}

// Where selects x where cond is nonzero and y elsewhere. cond must be I32;
// x and y promote against each other and all three shapes broadcast.
func Where(cond, x, y *array.Array) (*array.Array, error) {
	if cond.Dtype() != array.I32 {
		return nil, status.Errorf(status.InvalidDtype, "where: condition dtype is %s, want i32", cond.Dtype())
	}
	shapeXY, err := array.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		return nil, errors.Wrap(err, "where")
	}
	outShape, err := array.BroadcastShapes(cond.Shape(), shapeXY)
	if err != nil {
		return nil, errors.Wrap(err, "where")
	}
	outDtype := array.Promote(x.Dtype(), y.Dtype())

	out, err := array.NewDense(outDtype, outShape, false)
	if err != nil {
		return nil, errors.Wrap(err, "where")
	}

	sc := cond.ElemStrides(outShape)
	sx := x.ElemStrides(outShape)
	sy := y.ElemStrides(outShape)
	bc := cond.ElemOffset(0)
	bx := x.ElemOffset(0)
	by := y.ElemOffset(0)
	condSpan := cond.Storage().Int32s()

	switch outDtype {
	case array.F64:
		ewWhere(out.Storage().Float64s(), outShape, condSpan, loadF64(x), loadF64(y), sc, sx, sy, bc, bx, by)
	case array.F32:
		ewWhere(out.Storage().Float32s(), outShape, condSpan, loadF32(x), loadF32(y), sc, sx, sy, bc, bx, by)
	case array.I32:
		ewWhere(out.Storage().Int32s(), outShape, condSpan, loadI32(x), loadI32(y), sc, sx, sy, bc, bx, by)
	default:
		panic("where: unreachable dtype")
	}
	return out, nil
}

// ewArith runs the typed arithmetic loop over the broadcast shape. A linear
// fast path chunks contiguous same-layout operands across workers.
func ewArith[T number](op BinOp, dst []T, shape array.Shape, la, lb func(int64) T, sa, sb []int64, ba, bb int64) {
	if isLinear(shape, sa) && isLinear(shape, sb) {
		n := int(shape.NumElements())
		parallel.For(n, func(i int) {
			dst[i] = arithEval(op, la(ba+int64(i)), lb(bb+int64(i)))
		}, parallel.DefaultConfig())
		return
	}
	i := int64(0)
	zip2(shape, sa, sb, ba, bb, func(oa, ob int64) {
		dst[i] = arithEval(op, la(oa), lb(ob))
		i++
	})
}

func arithEval[T number](op BinOp, x, y T) T {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	default:
		panic("unreachable op")
	}
}

func ewCompare[T number](op CmpOp, dst []int32, shape array.Shape, la, lb func(int64) T, sa, sb []int64, ba, bb int64) {
	i := int64(0)
	zip2(shape, sa, sb, ba, bb, func(oa, ob int64) {
		x, y := la(oa), lb(ob)
		var hit bool
		switch op {
		case OpEq:
			hit = x == y
		case OpLt:
			hit = x < y
		case OpGt:
			hit = x > y
		}
		if hit {
			dst[i] = 1
		}
		i++
	})
}

func ewWhere[T number](dst []T, shape array.Shape, condSpan []int32, lx, ly func(int64) T, sc, sx, sy []int64, bc, bx, by int64) {
	i := int64(0)
	zip3(shape, sc, sx, sy, bc, bx, by, func(oc, ox, oy int64) {
		if condSpan[oc] != 0 {
			dst[i] = lx(ox)
		} else {
			dst[i] = ly(oy)
		}
		i++
	})
}
