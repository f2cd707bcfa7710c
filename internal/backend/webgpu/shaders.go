//go:build windows

package webgpu

// WGSL compute kernels. Every kernel reads its invocation count from
// params.total and derives a flat index from a 2-D dispatch (see workgroups).
// Layouts follow the CPU device: column-major, batch slowest, and a batch
// skip of 0 for an operand that is broadcast over the batch.

// workgroupSize is the number of invocations per workgroup.
const workgroupSize = 256

const kernelMain = `
@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(num_workgroups) nwg: vec3<u32>) {
    let idx = gid.x + gid.y * nwg.x * 256u;
    if (idx >= params.total) {
        return;
    }
`

// fillShader sets every element to k.
const fillShader = `
@group(0) @binding(0) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    k: f32,
}
@group(0) @binding(1) var<uniform> params: Params;
` + kernelMain + `
    y[idx] = params.k;
}
`

const unaryHead = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    k: f32,
}
@group(0) @binding(2) var<uniform> params: Params;
`

// unaryShaders maps element-wise kernels to their expression of v (the
// input element) and k (the scalar operand).
// tanh is clamped because some drivers evaluate it through exp and
// overflow to NaN for large |v|.
var unaryShaders = map[string]string{
	"negate":      unaryKernel("-v"),
	"exp":         unaryKernel("exp(v)"),
	"log":         unaryKernel("log(v)"),
	"tanh":        unaryKernel("tanh(clamp(v, -15.0, 15.0))"),
	"sigmoid":     unaryKernel("0.5 + 0.5 * tanh(clamp(0.5 * v, -15.0, 15.0))"),
	"step":        unaryKernel("select(0.0, 1.0, v > 0.0)"),
	"relu":        unaryKernel("max(v, 0.0)"),
	"add_const":   unaryKernel("v + k"),
	"sub_const_l": unaryKernel("k - v"),
	"sub_const_r": unaryKernel("v - k"),
	"mul_const":   unaryKernel("v * k"),
	"div_const_l": unaryKernel("k / v"),
	"div_const_r": unaryKernel("v / k"),
}

func unaryKernel(expr string) string {
	return unaryHead + kernelMain + `
    let v = x[idx];
    let k = params.k;
    y[idx] = ` + expr + `;
}
`
}

const binaryHead = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    size: u32,
    skip_a: u32,
    skip_b: u32,
}
@group(0) @binding(3) var<uniform> params: Params;
`

// binaryShaders maps batch-broadcasting element-wise kernels to their
// expression of va and vb.
var binaryShaders = map[string]string{
	"add": binaryKernel("va + vb"),
	"sub": binaryKernel("va - vb"),
	"mul": binaryKernel("va * vb"),
	"div": binaryKernel("va / vb"),
}

func binaryKernel(expr string) string {
	return binaryHead + kernelMain + `
    let bt = idx / params.size;
    let i = idx % params.size;
    let va = a[bt * params.skip_a + i];
    let vb = b[bt * params.skip_b + i];
    y[idx] = ` + expr + `;
}
`
}

const reduceHead = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    n: u32,
    skip1: u32,
    skip2: u32,
}
@group(0) @binding(2) var<uniform> params: Params;
`

// sumShader folds n values strided by skip1 into each output element.
const sumShader = reduceHead + kernelMain + `
    var p = idx % params.skip1 + (idx / params.skip1) * params.skip2;
    var acc = 0.0;
    for (var j = 0u; j < params.n; j = j + 1u) {
        acc = acc + x[p];
        p = p + params.skip1;
    }
    y[idx] = acc;
}
`

// logSumExpShader is sumShader over exp(v - max), shifted back by max.
const logSumExpShader = reduceHead + kernelMain + `
    let offset = idx % params.skip1 + (idx / params.skip1) * params.skip2;
    var p = offset;
    var m = x[p];
    for (var j = 1u; j < params.n; j = j + 1u) {
        p = p + params.skip1;
        m = max(m, x[p]);
    }
    p = offset;
    var acc = 0.0;
    for (var j = 0u; j < params.n; j = j + 1u) {
        acc = acc + exp(x[p] - m);
        p = p + params.skip1;
    }
    y[idx] = m + log(acc);
}
`

// batchSumShader adds up the samples of x.
const batchSumShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    batch: u32,
}
@group(0) @binding(2) var<uniform> params: Params;
` + kernelMain + `
    var acc = 0.0;
    var p = idx;
    for (var b = 0u; b < params.batch; b = b + 1u) {
        acc = acc + x[p];
        p = p + params.total;
    }
    y[idx] = acc;
}
`

// sliceShader copies runs of span elements, one every skip, from offset.
const sliceShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    span: u32,
    skip: u32,
    offset: u32,
}
@group(0) @binding(2) var<uniform> params: Params;
` + kernelMain + `
    let i = idx / params.span;
    let j = idx % params.span;
    y[idx] = x[params.offset + i * params.skip + j];
}
`

// concatShader scatters one source into its window of the result.
// A source with batch size 1 has src_batch 0 and is repeated.
const concatShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    span: u32,
    skip: u32,
    runs: u32,
    offset: u32,
    src_batch: u32,
}
@group(0) @binding(2) var<uniform> params: Params;
` + kernelMain + `
    let j = idx % params.span;
    let q = idx / params.span;
    let r = q % params.runs;
    let b = q / params.runs;
    y[params.offset + q * params.skip + j] = x[b * params.src_batch + r * params.span + j];
}
`

// transposeShader swaps the two leading dimensions of every sample.
const transposeShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    d1: u32,
    d2: u32,
}
@group(0) @binding(2) var<uniform> params: Params;
` + kernelMain + `
    let ms = params.d1 * params.d2;
    let rem = idx % ms;
    let j = rem % params.d2;
    let i = rem / params.d2;
    y[idx] = x[(idx / ms) * ms + i + j * params.d1];
}
`

// broadcastShader repeats every block of base elements size times.
const broadcastShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    base: u32,
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;
` + kernelMain + `
    let e = idx % params.base;
    let r = idx / (params.base * params.size);
    y[idx] = x[r * params.base + e];
}
`

// dotShader computes one element of a batched column-major matrix product,
// accumulating the inner dimension in index order like the CPU device.
const dotShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> y: array<f32>;

struct Params {
    total: u32,
    d1: u32,
    d2: u32,
    d3: u32,
    shift_a: u32,
    shift_b: u32,
}
@group(0) @binding(3) var<uniform> params: Params;
` + kernelMain + `
    let ms = params.d1 * params.d3;
    let bt = idx / ms;
    let rem = idx % ms;
    let i = rem % params.d1;
    let col = rem / params.d1;
    let pa = bt * params.shift_a + i;
    let pb = bt * params.shift_b + col * params.d2;
    var acc = 0.0;
    for (var j = 0u; j < params.d2; j = j + 1u) {
        acc = acc + a[pa + j * params.d1] * b[pb + j];
    }
    y[idx] = acc;
}
`

// addGradientShader adds the window of src that maps onto each dst element.
// When dst has batch size 1 and src does not, reps samples are folded in
// sample order; each invocation owns one dst element, so there are no races.
const addGradientShader = `
@group(0) @binding(0) var<storage, read_write> dst: array<f32>;
@group(0) @binding(1) var<storage, read> src: array<f32>;

struct Params {
    total: u32,
    span: u32,
    runs: u32,
    skip: u32,
    offset: u32,
    dst_batch: u32,
    src_batch: u32,
    reps: u32,
    rep_stride: u32,
}
@group(0) @binding(2) var<uniform> params: Params;
` + kernelMain + `
    let j = idx % params.span;
    let q = idx / params.span;
    let r = q % params.runs;
    let b = q / params.runs;
    let pd = b * params.dst_batch + params.offset + r * params.skip + j;
    var ps = b * params.src_batch + r * params.span + j;
    var acc = dst[pd];
    for (var k = 0u; k < params.reps; k = k + 1u) {
        acc = acc + src[ps];
        ps = ps + params.rep_stride;
    }
    dst[pd] = acc;
}
`
