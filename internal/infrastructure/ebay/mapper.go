package ebay

import "github.com/cardscan/backend/internal/domain"

// NotAvailable replaces any field missing from an item summary
const NotAvailable = "N/A"

// mapToListings converts Browse API item summaries to domain listings
func mapToListings(items []itemSummary) []domain.Listing {
	listings := make([]domain.Listing, 0, len(items))
	for _, item := range items {
		listings = append(listings, mapToListing(item))
	}
	return listings
}

func mapToListing(item itemSummary) domain.Listing {
	listing := domain.Listing{
		Title:    orNotAvailable(item.Title),
		Price:    NotAvailable,
		Currency: NotAvailable,
		Location: NotAvailable,
		URL:      orNotAvailable(item.ItemWebURL),
	}

	if item.Price != nil {
		listing.Price = orNotAvailable(item.Price.Value)
		listing.Currency = orNotAvailable(item.Price.Currency)
	}
	if item.ItemLocation != nil {
		listing.Location = orNotAvailable(item.ItemLocation.Country)
	}

	return listing
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
