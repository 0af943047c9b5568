package ebay

// searchResponse is the subset of the Browse API item_summary/search response we read
type searchResponse struct {
	Total         int           `json:"total"`
	Limit         int           `json:"limit"`
	ItemSummaries []itemSummary `json:"itemSummaries"`
}

type itemSummary struct {
	ItemID       string        `json:"itemId"`
	Title        string        `json:"title"`
	Price        *itemPrice    `json:"price"`
	ItemLocation *itemLocation `json:"itemLocation"`
	ItemWebURL   string        `json:"itemWebUrl"`
}

type itemPrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type itemLocation struct {
	Country string `json:"country"`
}
