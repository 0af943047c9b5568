package domain

import "time"

// NotDetected is returned in place of a value the extractor could not find
const NotDetected = "Not Detected"

// ExtractionResult holds the fields guessed from the OCR output of a card.
// Both fields are always populated, either with a value or with NotDetected.
type ExtractionResult struct {
	ItemName  string `json:"cardName"`
	SetNumber string `json:"cardSetNumber"`
}

// Listing is a single marketplace search hit
type Listing struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Location string `json:"location"`
	URL      string `json:"link"`
}

// ScanResult is the combined outcome of scanning one card image
type ScanResult struct {
	Text          []string  `json:"text"`
	CardName      string    `json:"cardName"`
	CardSetNumber string    `json:"cardSetNumber"`
	Listings      []Listing `json:"ebayResults"`
}

// SearchRequest re-queries the marketplace without running OCR again
type SearchRequest struct {
	CardName      string `json:"cardName" binding:"required"`
	CardSetNumber string `json:"cardSetNumber" binding:"required"`
}

// MarketplaceToken is an OAuth access token together with its lifetime data
type MarketplaceToken struct {
	Value      string
	ObtainedAt time.Time
	ExpiresAt  time.Time // zero when the server did not report an expiry
}
