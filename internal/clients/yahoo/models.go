package yahoo

import "time"

// Price is one daily closing price.
type Price struct {
	Date  time.Time
	Close float64
}
