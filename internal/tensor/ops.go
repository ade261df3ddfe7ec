package tensor

import "fmt"

// Dot computes the dot product of a and b.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// BroadcastRows copies row into every row of m.
func BroadcastRows(m *Mat, row []float32) {
	for i := 0; i < m.R; i++ {
		copy(m.Row(i), row)
	}
}

// ReLU clamps negative values to zero in place.
func ReLU(x []float32) {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

// Activation is the elementwise nonlinearity applied after a linear map.
type Activation uint8

const (
	Identity Activation = iota
	ActReLU
)

// Apply runs the activation over x in place.
func (a Activation) Apply(x []float32) {
	switch a {
	case ActReLU:
		ReLU(x)
	}
}

func (a Activation) String() string {
	switch a {
	case Identity:
		return "identity"
	case ActReLU:
		return "relu"
	default:
		return fmt.Sprintf("activation(%d)", uint8(a))
	}
}

func (a Activation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Activation) UnmarshalText(b []byte) error {
	switch string(b) {
	case "identity":
		*a = Identity
	case "relu":
		*a = ActReLU
	default:
		return fmt.Errorf("tensor: unknown activation %q", b)
	}
	return nil
}
