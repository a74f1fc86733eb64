package domain

// RawPriceBar is a price bar exactly as read from stock_data.csv. Nothing is parsed
// at the file boundary; stringified numbers and ingestion artifacts are coerced later.
type RawPriceBar struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

// PriceBar represents one trading session for a ticker with all numeric fields present.
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Headline is a single news item from the ticker's RSS feed.
type Headline struct {
	Date     string `json:"date"`
	Headline string `json:"headline"`
}
