package tensor

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Handle identifies a buffer registered in a device's BlockTable.
// The zero Handle is never valid.
type Handle struct {
	index      uint32
	generation uint32
}

// Valid reports whether the handle was issued by a table.
// It does not check that the buffer is still live.
func (h Handle) Valid() bool {
	return h.generation != 0
}

// String returns the handle as "#index.generation".
func (h Handle) String() string {
	return fmt.Sprintf("#%d.%d", h.index, h.generation)
}

type block[B any] struct {
	data       B
	size       int
	generation uint32
	live       bool
}

// BlockTable maps live handles to device buffers and their byte sizes.
//
// Removing a block bumps the generation of its slot, so a handle that was
// already freed is rejected instead of aliasing a newer buffer.
// BlockTable is not safe for concurrent use.
type BlockTable[B any] struct {
	blocks []block[B]
	free   []uint32
	live   int
	bytes  int
}

// Insert registers a buffer of the given byte size and returns its handle.
func (t *BlockTable[B]) Insert(data B, size int) Handle {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		//nolint:gosec // G115: table never grows beyond uint32 slots in practice
		idx = uint32(len(t.blocks))
		t.blocks = append(t.blocks, block[B]{})
	}
	b := &t.blocks[idx]
	b.generation++
	b.data = data
	b.size = size
	b.live = true
	t.live++
	t.bytes += size
	return Handle{index: idx, generation: b.generation}
}

func (t *BlockTable[B]) find(h Handle) (*block[B], error) {
	if !h.Valid() || int(h.index) >= len(t.blocks) {
		return nil, errors.Wrapf(ErrMemory, "unknown memory block %s", h)
	}
	b := &t.blocks[h.index]
	if !b.live || b.generation != h.generation {
		return nil, errors.Wrapf(ErrMemory, "stale memory block %s", h)
	}
	return b, nil
}

// Lookup returns the buffer registered under h.
func (t *BlockTable[B]) Lookup(h Handle) (B, error) {
	b, err := t.find(h)
	if err != nil {
		var zero B
		return zero, err
	}
	return b.data, nil
}

// Remove unregisters h and returns its buffer so the caller can dispose of it.
func (t *BlockTable[B]) Remove(h Handle) (B, error) {
	var zero B
	b, err := t.find(h)
	if err != nil {
		return zero, err
	}
	data := b.data
	t.live--
	t.bytes -= b.size
	b.data = zero
	b.size = 0
	b.live = false
	t.free = append(t.free, h.index)
	return data, nil
}

// Len returns the number of live blocks.
func (t *BlockTable[B]) Len() int {
	return t.live
}

// Bytes returns the total byte size of the live blocks.
func (t *BlockTable[B]) Bytes() int {
	return t.bytes
}

// Blocks lists the live blocks in slot order.
func (t *BlockTable[B]) Blocks() []BlockInfo {
	out := make([]BlockInfo, 0, t.live)
	for i := range t.blocks {
		b := &t.blocks[i]
		if !b.live {
			continue
		}
		//nolint:gosec // G115: i is bounded by the table size
		out = append(out, BlockInfo{Handle: Handle{index: uint32(i), generation: b.generation}, Size: b.size})
	}
	return out
}

// BlockInfo describes one live buffer.
type BlockInfo struct {
	Handle Handle
	Size   int
}

// LeakError lists the buffers a device still owned when it was closed.
type LeakError struct {
	Device string
	Blocks []BlockInfo
}

// Error implements the error interface.
func (e *LeakError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "detected memory leak on %s: %d block(s) (handle: size)", e.Device, len(e.Blocks))
	for _, b := range e.Blocks {
		fmt.Fprintf(&sb, "\n  %s: %d", b.Handle, b.Size)
	}
	return sb.String()
}

// Bytes returns the total size of the leaked blocks.
func (e *LeakError) Bytes() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Size
	}
	return n
}

// LeakHandler is invoked by a device's Close when buffers are still live.
type LeakHandler func(*LeakError)

// FatalLeakHandler logs every leaked block and terminates the process.
// It is the default handler of every device.
func FatalLeakHandler(e *LeakError) {
	klog.ErrorS(nil, "FATAL: detected memory leak", "device", e.Device, "blocks", len(e.Blocks), "bytes", e.Bytes())
	for _, b := range e.Blocks {
		klog.ErrorS(nil, "leaked block", "device", e.Device, "handle", b.Handle.String(), "size", b.Size)
	}
	klog.FlushAndExit(klog.ExitFlushTimeout, 1)
}

// CheckLeaks calls handler if the table still has live blocks, and returns
// the report if the handler returns. A nil handler selects FatalLeakHandler.
func CheckLeaks[B any](device string, t *BlockTable[B], handler LeakHandler) error {
	if t.Len() == 0 {
		return nil
	}
	if handler == nil {
		handler = FatalLeakHandler
	}
	leak := &LeakError{Device: device, Blocks: t.Blocks()}
	handler(leak)
	return leak
}
