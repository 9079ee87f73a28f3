// Package sfinspect loads food-safety inspection records and consolidates them
// into a directory of unique establishments that can be searched by name
// keyword or zip code substring.
//
// Each input row describes one inspection of one business. Rows for the same
// business (same name ignoring case, same zip code) are merged into a single
// Establishment holding every inspection. A row that fails validation is
// dropped and counted; it never stops the load.
//
// # Features
//
//   - Read CSV, Excel (XLSX) and Parquet inputs
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Support for multiple input sources (files, directories, io.Reader, embed.FS)
//   - Per-row error isolation with a LoadReport of loaded, skipped and rejected rows
//   - Case-insensitive name search and zip substring search with sorted results
//   - Export back to CSV, XLSX or Parquet, optionally compressed
//
// # Basic Usage
//
//	dir, report, err := sfinspect.Load(ctx, "Restaurant_Scores.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("loaded %d inspections, rejected %d rows", report.Loaded, report.Rejected)
//
//	if found, ok := dir.FindByNameKeyword("diner"); ok {
//	    _ = sfinspect.WriteSummaries(os.Stdout, found)
//	}
//
// # Builder
//
// For more control over inputs use the Builder:
//
//	builder, err := sfinspect.NewBuilder().
//	    AddPath("inspections/").
//	    AddReader(upload, "upload.csv.gz", sfinspect.FileTypeCSV).
//	    SetLogger(logger).
//	    Build(ctx)
//	if err != nil {
//	    return err
//	}
//	dir, report, err := builder.Load(ctx)
//
// # Input Layout
//
// Rows are positional. The columns used are 1 (name), 2 (address), 5 (zip),
// 9 (phone), 11 (inspection date, optionally followed by a time), 12 (score),
// 15 (violation) and 16 (risk category, read only when the row has exactly 17
// fields). The CSV reader honours straight and typographic double quotes, so
// commas inside quoted fields do not split them. A header row is rejected like
// any other malformed row.
//
// Dates are accepted as MM/DD/YYYY or MM/DD/YY; one-digit months and days are
// zero-padded before parsing. Years run from 2000 through 2025 and a
// two-digit year YY is read as 20YY.
// Rows with an empty score carry no inspection data and are skipped.
//
// # Export
//
// Export writes a directory in the same layout, one row per inspection, so
// the file can be loaded again:
//
//	path, err := sfinspect.Export(ctx, dir, "./out",
//	    sfinspect.NewExportOptions().WithFormat(sfinspect.FileTypeParquet))
package sfinspect
