// Package hcl loads sweep definition files written in HCL into the
// format-agnostic config.Model.
//
// A file sets run options as top-level attributes and declares one `param`
// block per parameter:
//
//	output      = "results.csv"
//	concurrency = 4
//	metrics     = ["accuracy"]
//	command     = ["python", "train.py"]
//
//	param "gpu"   { values = [1, 2, 4] }
//	param "batch" { values = "32gpu" }
//
// A param's values are either a string holding a raw expression or a list of
// numbers and strings, which is joined into one.
package hcl
