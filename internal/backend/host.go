package backend

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// HostInfo describes the machine a benchmark ran on.
type HostInfo struct {
	GoOS          string   `json:"go_os"`
	GoArch        string   `json:"go_arch"`
	GoVersion     string   `json:"go_version"`
	NumCPU        int      `json:"num_cpu"`
	Brand         string   `json:"brand"`
	Vendor        string   `json:"vendor"`
	PhysicalCores int      `json:"physical_cores"`
	LogicalCores  int      `json:"logical_cores"`
	L1DataBytes   int      `json:"l1d_bytes"`
	L2Bytes       int      `json:"l2_bytes"`
	Features      []string `json:"features"`
}

var reportedFeatures = []struct {
	name string
	id   cpuid.FeatureID
}{
	{"sse4.2", cpuid.SSE42},
	{"avx", cpuid.AVX},
	{"avx2", cpuid.AVX2},
	{"fma", cpuid.FMA3},
	{"avx512f", cpuid.AVX512F},
	{"neon", cpuid.ASIMD},
}

// DescribeHost collects CPU details relevant to kernel throughput.
func DescribeHost() HostInfo {
	info := HostInfo{
		GoOS:          runtime.GOOS,
		GoArch:        runtime.GOARCH,
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		Brand:         cpuid.CPU.BrandName,
		Vendor:        cpuid.CPU.VendorString,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		L1DataBytes:   cpuid.CPU.Cache.L1D,
		L2Bytes:       cpuid.CPU.Cache.L2,
		Features:      []string{},
	}
	for _, f := range reportedFeatures {
		if cpuid.CPU.Supports(f.id) {
			info.Features = append(info.Features, f.name)
		}
	}
	return info
}
