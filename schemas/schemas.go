// Package schemas embeds the JSON Schemas for grainbench's input files.
package schemas

import _ "embed"

// BenchmarkResultSchemaJSON is the JSON Schema for grainchain_benchmark_*.json files.
//
//go:embed benchmark_result.schema.json
var BenchmarkResultSchemaJSON string

// ConfigSchemaJSON is the JSON Schema for .grainbench.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
