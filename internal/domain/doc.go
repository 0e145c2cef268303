// Package domain models water-quality field-survey records and the rules that
// turn them into a cleaned, geofenced, classified dataset.
//
// # Data Source
//
// Surveys arrive as a spreadsheet exported by the state monitoring program, one
// row per sample. Columns are matched by their exact Portuguese header text and
// renamed to short canonical names (see [SourceHeaders]). Columns missing from a
// given export are skipped.
//
// # Survey Data Conventions
//
// Coordinates:
//
//	Decimal degrees, but typed by hand. Common defects:
//	  - decimal point dropped or shifted: "-25431" or "25.431" for -2.5431
//	  - sign omitted: "44.3" for -44.3
//	  - comma decimal separator: "-2,5431"
//	  - stray letters or symbols: "2.5431 S", "'-44.30"
//	The target region lies entirely in the southern and western hemispheres,
//	so every coordinate is forced negative and divided by ten until it fits a
//	coarse plausibility band. See [CorrectCoordinate].
//
// Dates:
//
//	The header says dd/mm/aaaa but cells hold Excel serial dates, ISO dates,
//	or day-first text. Impossible dates such as "30/28/2018" drop the row.
//
// Measurements:
//
//	Blank or unparseable cells become 0.0, the "no data" sentinel. A zero is
//	never treated as a real reading: no rule flags a parameter whose value is
//	the sentinel. See [Sentinel].
//
// Text:
//
//	Municipality and water-body names are folded to uppercase ASCII without
//	diacritics ("São Luís " -> "SAO LUIS") before comparison.
//
// # Classification
//
// Thresholds follow CONAMA Resolution 357/2005 for class 2 fresh water:
//
//	pH               6.0 to 9.0
//	dissolved oxygen >= 5.0 mg/L
//	turbidity        <= 100 NTU
//
// A record with no violations is "Aprovado", otherwise "Reprovado".
package domain
