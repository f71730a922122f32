// Package domain models the NOAA Storm Events database for harm analysis.
//
// # Data Source
//
// Records come from the NCDC Storm Events bulk CSV (1950 onward). Each row
// describes one reported event; the analysis uses eight logical fields:
// begin date, event label (EVTYPE), fatalities, injuries, and two
// amount/exponent pairs for property and crop damage. A record is retained
// only if at least one harm measure is nonzero.
//
// # Collection Eras
//
// Recording practice changed twice, so cross-year comparisons are only
// meaningful within an era:
//
//	Era 1 (1950-1954): tornado reports only.
//	Era 2 (1955-1995): tornado, thunderstorm wind, and hail.
//	Era 3 (1996-present): all 48 event types of NWS Directive 10-1605.
//
// Years before 1950 do not occur in well-formed input; [EraOf] rejects them
// rather than inventing a fourth era.
//
// # Event Labels
//
// EVTYPE is free text with four decades of drift: misspellings ("torndao",
// "avalance"), abbreviations ("tstm wind", "sml stream fld"), embedded
// magnitudes ("hail 075", "thunderstorm wind 65 mph"), and compound
// descriptions ("heavy snow/high winds & flood"). The curated mapping in
// vocabulary.yaml assigns each known variant to exactly one canonical
// category; [Classifier] matches by exact string equality after lower-casing
// and whitespace collapsing. Unknown labels classify as nothing and the
// record is excluded from event-keyed tables — callers are expected to count
// and report these, since the loss is otherwise invisible.
//
// # Damage Exponent Codes
//
// Damage amounts carry a one-character scale code:
//
//	"H" = hundreds, "K" = thousands, "M" = millions, "B" = billions
//	"1".."9" = that power of ten
//	blank, "NA", "0", "?", "-", "+", anything else = no resolvable scale
//
// An unresolvable code makes the dollar value unknown, not zero; normalized
// records carry nil for such values and aggregation excludes them from sums.
//
// # Known Data-Entry Corrections
//
// The 2006-01-01 Napa County flood is recorded with exponent "B" where NWS
// errata establish "M" (115 million, not 115 billion, dollars of property
// damage). The correction is keyed on date, rounded amount, county, and the
// original code; see correctKnownOutliers.
package domain
