package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Features lists the SIMD extensions reported by the host CPU.
// Kernels do not depend on them; they are logged for diagnostics.
func Features() []string {
	var out []string
	switch runtime.GOARCH {
	case "amd64", "386":
		flags := []struct {
			name string
			has  bool
		}{
			{"sse2", cpu.X86.HasSSE2},
			{"sse41", cpu.X86.HasSSE41},
			{"avx", cpu.X86.HasAVX},
			{"avx2", cpu.X86.HasAVX2},
			{"fma", cpu.X86.HasFMA},
			{"avx512f", cpu.X86.HasAVX512F},
		}
		for _, f := range flags {
			if f.has {
				out = append(out, f.name)
			}
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			out = append(out, "asimd")
		}
		if cpu.ARM64.HasFPHP {
			out = append(out, "fphp")
		}
		if cpu.ARM64.HasSVE {
			out = append(out, "sve")
		}
	}
	return out
}
