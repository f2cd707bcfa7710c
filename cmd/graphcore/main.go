// Package main provides the graphcore CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/born-ml/graphcore/backend/cpu"
	"github.com/born-ml/graphcore/backend/webgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func usage() {
	fmt.Println("graphcore - tensors and reverse-mode autodiff for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Usage: graphcore [-v=N] <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  devices    List available devices")
	fmt.Println("  check      Run gradient checks and CPU/GPU parity")
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	switch flag.Arg(0) {
	case "version":
		fmt.Printf("graphcore %s\n", version)
	case "devices":
		devices()
	case "check":
		if err := check(); err != nil {
			fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
			klog.Flush()
			os.Exit(1)
		}
	default:
		usage()
	}
}

func devices() {
	features := strings.Join(cpu.Features(), " ")
	if features == "" {
		features = "none"
	}
	fmt.Printf("CPU     available (features: %s)\n", features)

	name, err := webgpu.AdapterName()
	switch {
	case err == nil:
		fmt.Printf("WebGPU  available (%s)\n", name)
	case errors.Is(err, webgpu.ErrUnavailable):
		fmt.Printf("WebGPU  unavailable (%v)\n", err)
	default:
		fmt.Printf("WebGPU  error: %v\n", err)
	}
}
