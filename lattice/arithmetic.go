package lattice

import (
	"fmt"
	"math"
)

// Arithmetic is the number system lattice weights live in. Weights are
// probabilities, either as plain values or as natural logs.
type Arithmetic interface {
	Name() string
	Zero() float64
	One() float64
	Add(a, b float64) float64
	Multiply(a, b float64) float64
	FromProbability(p float64) float64
	FromLog(l float64) float64
	Probability(v float64) float64
	ToLog(v float64) float64
	IsZero(v float64) bool
	IsValid(v float64) bool
}

var (
	// Log keeps weights as natural logs.
	Log Arithmetic = logArithmetic{}
	// Linear keeps weights as plain probabilities.
	Linear Arithmetic = linearArithmetic{}
)

// ArithmeticByName returns "log" or "linear".
func ArithmeticByName(name string) (Arithmetic, error) {
	switch name {
	case Log.Name():
		return Log, nil
	case Linear.Name():
		return Linear, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownArithmetic)
}

type logArithmetic struct{}

func (logArithmetic) Name() string                      { return "log" }
func (logArithmetic) Zero() float64                     { return math.Inf(-1) }
func (logArithmetic) One() float64                      { return 0 }
func (logArithmetic) Add(a, b float64) float64          { return LogAdd(a, b) }
func (logArithmetic) Multiply(a, b float64) float64     { return a + b }
func (logArithmetic) FromProbability(p float64) float64 { return math.Log(p) }
func (logArithmetic) FromLog(l float64) float64         { return l }
func (logArithmetic) Probability(v float64) float64     { return math.Exp(v) }
func (logArithmetic) ToLog(v float64) float64           { return v }
func (logArithmetic) IsZero(v float64) bool             { return math.IsInf(v, -1) }
func (logArithmetic) IsValid(v float64) bool            { return !math.IsNaN(v) && !math.IsInf(v, 1) }

type linearArithmetic struct{}

func (linearArithmetic) Name() string                      { return "linear" }
func (linearArithmetic) Zero() float64                     { return 0 }
func (linearArithmetic) One() float64                      { return 1 }
func (linearArithmetic) Add(a, b float64) float64          { return a + b }
func (linearArithmetic) Multiply(a, b float64) float64     { return a * b }
func (linearArithmetic) FromProbability(p float64) float64 { return p }
func (linearArithmetic) FromLog(l float64) float64         { return math.Exp(l) }
func (linearArithmetic) Probability(v float64) float64     { return v }
func (linearArithmetic) ToLog(v float64) float64           { return math.Log(v) }
func (linearArithmetic) IsZero(v float64) bool             { return v == 0 }
func (linearArithmetic) IsValid(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}

// LogAdd returns log(exp(a) + exp(b)). Adding -Inf returns the other operand
// unchanged.
func LogAdd(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if math.IsInf(b, -1) || math.IsInf(a, 1) {
		return a
	}
	return a + math.Log1p(math.Exp(b-a))
}

// LogSub returns log(exp(a) - exp(b)) for b <= a. When b is not smaller than a
// the difference has no mass and the result is -Inf.
func LogSub(a, b float64) float64 {
	if math.IsInf(b, -1) {
		return a
	}
	if b >= a {
		return math.Inf(-1)
	}
	return a + math.Log1p(-math.Exp(b-a))
}
