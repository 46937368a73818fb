package processing

import (
	"grocery-scraper/models"
	"grocery-scraper/utils"
)

// ProductExtractor is anything that can derive a processed product from a raw
// one. Satisfied by *Extractor.
type ProductExtractor interface {
	Extract(p *models.Product) *models.Product
}

// Processor applies an extractor over a batch of products. Items are
// independent, so the batch can run across a worker pool; a failure in one
// item never aborts the rest.
type Processor struct {
	extractor ProductExtractor
	logger    *utils.Logger
	workers   int
}

// NewProcessor creates a Processor. workers <= 1 processes sequentially.
func NewProcessor(extractor ProductExtractor, logger *utils.Logger, workers int) *Processor {
	return &Processor{extractor: extractor, logger: logger, workers: workers}
}

// ProcessAll extracts attributes for every product and returns a same-length
// slice in input order. A product whose extraction panics is logged and
// passed through unmodified.
func (p *Processor) ProcessAll(products []*models.Product) []*models.Product {
	p.logger.Info("[processor] Processing %d products", len(products))

	out := make([]*models.Product, len(products))

	if p.workers > 1 {
		pool := utils.NewWorkerPool(p.workers, 0)
		for i, prod := range products {
			i, prod := i, prod
			pool.Submit(func() {
				out[i] = p.processOne(prod)
			})
		}
		pool.Wait()
	} else {
		for i, prod := range products {
			out[i] = p.processOne(prod)
		}
	}

	return out
}

// processOne isolates per-item failures: a panic inside extraction is
// recovered and the original product is kept.
func (p *Processor) processOne(prod *models.Product) (result *models.Product) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("[processor] Extraction failed for product %s: %v", prod.ProductID, r)
			result = prod
		}
	}()
	return p.extractor.Extract(prod)
}
