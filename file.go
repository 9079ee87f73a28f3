package sfinspect

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType represents the base format of an input, independent of compression
type FileType int

const (
	// FileTypeCSV represents comma-delimited text, one inspection per line
	FileTypeCSV FileType = iota
	// FileTypeXLSX represents an Excel workbook, one inspection per row
	FileTypeXLSX
	// FileTypeParquet represents a Parquet file, one inspection per row
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
	// extGZ is the gzip compression extension
	extGZ = ".gz"
	// extBZ2 is the bzip2 compression extension
	extBZ2 = ".bz2"
	// extXZ is the xz compression extension
	extXZ = ".xz"
	// extZSTD is the zstd compression extension
	extZSTD = ".zst"
)

// String returns the name of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// ParseFileType parses a format name such as "csv" or ".parquet".
func ParseFileType(s string) (FileType, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FileTypeCSV, nil
	case "xlsx":
		return FileTypeXLSX, nil
	case "parquet":
		return FileTypeParquet, nil
	default:
		return FileTypeUnsupported, fmt.Errorf("%w: format %q", ErrUnsupportedFormat, s)
	}
}

// extension returns the file extension for the FileType
func (ft FileType) extension() string {
	switch ft {
	case FileTypeCSV:
		return extCSV
	case FileTypeXLSX:
		return extXLSX
	case FileTypeParquet:
		return extParquet
	default:
		return ""
	}
}

// file represents an input file and how to decode it
type file struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// newFile creates a new file, detecting its type from the extension
func newFile(path string) *file {
	factory := NewCompressionFactory()
	return &file{
		path:        path,
		fileType:    factory.GetBaseFileType(path),
		compression: factory.DetectCompressionType(path),
	}
}

// isSupportedFile checks if the file has a supported extension
func isSupportedFile(path string) bool {
	return NewCompressionFactory().GetBaseFileType(path) != FileTypeUnsupported
}

// supportedFileExtPatterns returns all supported file patterns for glob matching
func supportedFileExtPatterns() []string {
	baseExts := []string{extCSV, extXLSX, extParquet}
	compressionExts := []string{"", extGZ, extBZ2, extXZ, extZSTD}

	var patterns []string
	for _, baseExt := range baseExts {
		for _, compressionExt := range compressionExts {
			patterns = append(patterns, "*"+baseExt+compressionExt)
		}
	}
	return patterns
}

// sourceName returns a short label for log lines: the file name without
// compression extension
func sourceName(path string) string {
	return NewCompressionFactory().RemoveCompressionExtension(filepath.Base(path))
}
