// Package dataset loads tabular observations for beeswarm plots.
//
// A [Table] is a flat list of observations, each with a category label, a
// numeric value and an optional hue label. Tables are read from CSV (or TSV)
// files with a header row, or from JSON arrays of objects:
//
//	[
//	  {"day": "Thur", "total_bill": 17.4, "sex": "Male"},
//	  {"day": "Fri",  "total_bill": 12.9, "sex": "Female"}
//	]
//
// [Columns] names the fields to read. When the category column is empty every
// observation lands in a single unnamed category; when the hue column is empty
// observations carry no hue.
//
// Rows whose value is missing ("", "NA", "NaN", null) are dropped and counted
// in [Table.Dropped], matching how plotting libraries treat missing data.
package dataset
