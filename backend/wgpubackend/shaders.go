package wgpubackend

import (
	_ "embed"
)

//go:embed quad.wgsl
var QuadWGSL string
