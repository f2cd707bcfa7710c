package tensor

// Device is the contract every compute backend implements.
//
// A Device allocates and frees buffers, is the only writer of tensor
// contents, and implements every numeric primitive the graph engine needs.
// All backends share the shape inference helpers in this package, so the
// broadcasting and indexing semantics are identical across devices.
//
// Implementations:
//   - cpu.Device: pure Go reference implementation
//   - webgpu.Device: WGSL compute shaders (windows)
//
// A Device is not safe for concurrent use.
type Device interface {
	// Metadata
	Name() string

	// Buffer lifecycle
	Allocate(shape Shape) (*Tensor, error)
	Free(h Handle) error
	LiveBlocks() []BlockInfo
	Close() error

	// Value exchange (column-major, batch slowest)
	Read(x *Tensor) ([]float32, error)
	WriteConstant(x *Tensor, k float32) error
	WriteValues(x *Tensor, values []float32) error
	Duplicate(x *Tensor) (*Tensor, error)

	// Unary operations (element-wise)
	Negate(x *Tensor) (*Tensor, error)
	Exp(x *Tensor) (*Tensor, error)
	Log(x *Tensor) (*Tensor, error)
	Tanh(x *Tensor) (*Tensor, error)
	Sigmoid(x *Tensor) (*Tensor, error)
	Step(x *Tensor) (*Tensor, error)
	ReLU(x *Tensor) (*Tensor, error)

	// Scalar operations
	AddConst(x *Tensor, k float32) (*Tensor, error)  // x + k
	SubConstL(k float32, x *Tensor) (*Tensor, error) // k - x
	SubConstR(x *Tensor, k float32) (*Tensor, error) // x - k
	MulConst(x *Tensor, k float32) (*Tensor, error)  // x * k
	DivConstL(k float32, x *Tensor) (*Tensor, error) // k / x
	DivConstR(x *Tensor, k float32) (*Tensor, error) // x / k

	// Binary operations with batch broadcasting
	Add(a, b *Tensor) (*Tensor, error)
	Sub(a, b *Tensor) (*Tensor, error)
	Mul(a, b *Tensor) (*Tensor, error)
	Div(a, b *Tensor) (*Tensor, error)

	// Reductions
	Sum(x *Tensor, dim int) (*Tensor, error)
	LogSumExp(x *Tensor, dim int) (*Tensor, error)
	BatchSum(x *Tensor) (*Tensor, error)

	// Structural operations
	Slice(x *Tensor, dim, lower, upper int) (*Tensor, error)
	Concat(xs []*Tensor, dim int) (*Tensor, error)
	Transpose(x *Tensor) (*Tensor, error)
	Broadcast(x *Tensor, dim, size int) (*Tensor, error)

	// Matrix product, batched
	Dot(a, b *Tensor) (*Tensor, error)

	// Random fills from the device-owned generator
	RandomBernoulli(shape Shape, p float32) (*Tensor, error)
	RandomUniform(shape Shape, lower, upper float32) (*Tensor, error)
	RandomNormal(shape Shape, mean, sd float32) (*Tensor, error)

	// Gradient accumulation (in place on dst)
	AddGradient(dst, src *Tensor) error
	AddGradientOffset(dst, src *Tensor, dim, offset int) error
}
