package extract

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// Source is the page text of one document.
type Source struct {
	Name  string
	Pages []string
}

// BatchResult pairs a source with its outcome. Exactly one of Document and
// Err is set.
type BatchResult struct {
	Name     string
	Document *Document
	Err      error
}

// ExtractBatch extracts independent documents in parallel. Results keep the
// order of sources and a failing document does not affect the others.
// Documents not yet started when ctx is cancelled report ctx.Err().
func (e *Extractor) ExtractBatch(ctx context.Context, sources []Source) []BatchResult {
	results := make([]BatchResult, len(sources))
	p := pool.New().WithMaxGoroutines(e.cfg.MaxConcurrency)
	for i, src := range sources {
		i, src := i, src
		p.Go(func() {
			results[i].Name = src.Name
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Document, results[i].Err = e.Extract(src.Name, src.Pages)
		})
	}
	p.Wait()
	return results
}
