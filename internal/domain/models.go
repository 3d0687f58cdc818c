package domain

import (
	"strings"
	"time"
)

// DateFormat is the canonical date layout used in the database.
// Dates are stored as ISO text so lexical and chronological order agree.
const DateFormat = "2006-01-02"

// Asset is immutable reference data for one investable product.
type Asset struct {
	ID       int64
	Ticker   string
	Category string
}

// IsBond reports whether the asset belongs to the bond bucket.
// Matching is a case-insensitive substring test ("government bond"
// counts), mirroring how the category labels are populated.
func (a Asset) IsBond() bool {
	return strings.Contains(strings.ToLower(a.Category), "bond")
}

// IsEquity reports whether the asset's category is exactly "equity",
// case-insensitively.
func (a Asset) IsEquity() bool {
	return strings.EqualFold(strings.TrimSpace(a.Category), "equity")
}

// ReturnObservation is a single (asset, date, periodic return) sample.
// Duplicates for the same asset and date are tolerated as independent
// samples; non-finite values are filtered before they reach storage.
type ReturnObservation struct {
	AssetID int64
	Date    time.Time
	Value   float64
}

// DailyReturn is one point of a reconstructed portfolio return series.
type DailyReturn struct {
	Date  time.Time
	Value float64
}
