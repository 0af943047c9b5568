package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyUpload is returned when an uploaded image has no content
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrUploadTooLarge is returned when an upload exceeds the configured limit
	ErrUploadTooLarge = errors.New("uploaded file is too large")

	// ErrInvalidImage is returned when the uploaded bytes cannot be decoded as an image
	ErrInvalidImage = errors.New("invalid image")

	// ErrOCRFailure is returned when the OCR engine fails to process an image
	ErrOCRFailure = errors.New("OCR processing failed")

	// ErrNoTextDetected is returned when OCR produced no text for an image
	ErrNoTextDetected = errors.New("no text detected in image")

	// ErrMarketplaceAuth is returned when an eBay OAuth token cannot be obtained
	ErrMarketplaceAuth = errors.New("failed to retrieve eBay OAuth token")

	// ErrMarketplaceSearch is returned when an eBay search request fails
	ErrMarketplaceSearch = errors.New("failed to fetch eBay results")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
