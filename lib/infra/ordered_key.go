package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// LessFunc is the strict "precedes" relation of a total order.
// less(a, b) == true means a must be placed before b.
type LessFunc[T any] func(a, b T) bool

// EqualFunc reports whether two values are deeply equal.
type EqualFunc[T any] func(a, b T) bool

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

func OrderedLess[K OrderedKey](a, b K) bool {
	return a < b
}

func OrderedEqual[K OrderedKey](a, b K) bool {
	return a == b
}

// OrderedDescLess reverses the natural order.
func OrderedDescLess[K OrderedKey](a, b K) bool {
	return b < a
}

// LessFromComparator adapts a three-way comparator into a strict order.
func LessFromComparator[K OrderedKey](cmp OrderedKeyComparator[K]) LessFunc[K] {
	if cmp == nil {
		return nil
	}
	return func(a, b K) bool {
		return cmp(a, b) < 0
	}
}

// EqualFromComparator adapts a three-way comparator into an equality test.
func EqualFromComparator[K OrderedKey](cmp OrderedKeyComparator[K]) EqualFunc[K] {
	if cmp == nil {
		return nil
	}
	return func(a, b K) bool {
		return cmp(a, b) == 0
	}
}
