// Package resultstore owns the CSV file that records successful runs.
//
// The file's header is fixed when it is created: parameter columns, metric
// columns, then any preserved output columns. Opening an existing file
// requires the same header and indexes the parameter values of every row
// already present, so a rerun skips completed work. Rows are only ever
// appended, one complete record per write followed by an fsync, and a record
// torn by a crash is cut away the next time the file is opened.
package resultstore
