// Package exporter writes listings tables to CSV and Excel files.
//
// Both formats share the canonical column order in Header, which matches the
// loader's schema, so an export can be loaded back as a listings source.
// CSV output carries a UTF-8 BOM for Excel compatibility.
//
// Example usage:
//
//	w, err := exporter.New(exporter.FormatXLSX, logger)
//	if err != nil {
//		return err
//	}
//	err = w.Write(resp, filtered.Rows())
package exporter
