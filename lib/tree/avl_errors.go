package tree

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/benz9527/xavl/lib/infra"
)

var (
	ErrAVLMissingComparator  = errors.New("[avl] missing less or equal function")
	ErrAVLIndexOutOfRange    = errors.New("[avl] index out of range")
	ErrAVLCursorOff          = errors.New("[avl] cursor is off")
	ErrAVLValueNotFound      = errors.New("[avl] value not found")
	ErrAVLCursorClosed       = errors.New("[avl] cursor is closed")
	ErrAVLCursorStale        = errors.New("[avl] cursor references a recycled node")
	ErrAVLForeignTree        = errors.New("[avl] tree is nil or of a foreign implementation")
	ErrAVLDefaultCursorClose = errors.New("[avl] the default cursor can not be closed")
	ErrAVLMissingCloner      = errors.New("[avl] deep copy requires a value cloner")
	ErrAVLCorrupted          = errors.New("[avl] structural invariant violated")
)

// ContractViolation is the panic value of every failed precondition or
// detected corruption. Use errors.Is against the ErrAVL* kinds.
type ContractViolation struct {
	Op     string
	Caller infra.Frame
	err    error
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("[avl] %s: %v", v.Op, v.err)
}

func (v *ContractViolation) Unwrap() error {
	return v.err
}

// violate logs the violation and panics. It must be the last statement of
// the failing path; callers holding locks release them via defer.
func (tree *avlTree[T]) violate(op string, kind error, format string, args ...any) {
	v := &ContractViolation{
		Op:     op,
		Caller: infra.Caller(2),
		err:    errors.Wrapf(kind, format, args...),
	}
	tree.logger.Error("contract violation",
		zap.String("op", op),
		zap.Object("caller", v.Caller),
		zap.Error(v.err),
	)
	panic(v)
}
