package storage

import "grocery-scraper/models"

// ProductWriter is the interface any storage backend must satisfy.
type ProductWriter interface {
	Write(products []*models.Product) error
	Clear() error
	Close() error
}

// RunTracker records the lifecycle of a scrape run. Backends without run
// bookkeeping (CSV) simply don't implement it.
type RunTracker interface {
	StartRun(runID, scraperType, categoryURL string, maxProducts int, replace bool, configJSON []byte) error
	EndRun(runID, status, errorMessage string) error
}
