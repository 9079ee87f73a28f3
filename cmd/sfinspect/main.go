// Command sfinspect loads restaurant inspection files and answers name and
// zip code queries about them interactively.
//
// Usage:
//
//	sfinspect [flags] FILE...
//
// FILE may be a CSV, XLSX or Parquet file, optionally compressed with gzip,
// bzip2, xz or zstd, or a directory holding such files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
