// Package config provides configuration loading and defaults for mlanalytics.
package config

// DefaultConfigDir is the default location for mlanalytics configuration.
const DefaultConfigDir = "~/.config/mlanalytics"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultBenchmarkDir is the subdirectory, next to the input file, that
// receives the benchmark command's outputs.
const DefaultBenchmarkDir = "benchmarking_data"

// DefaultPairwiseDir is the subdirectory that receives the pairwise
// command's outputs.
const DefaultPairwiseDir = "falcon_analysis"

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color:      true,
	Width:      80,
	Charts:     true,
	SQLite:     false,
	SQLiteName: "analysis.db",
	MaxRows:    20,
}

// DefaultChart holds the default chart size.
var DefaultChart = Chart{
	Width:  1024,
	Height: 640,
	DPI:    96,
}
