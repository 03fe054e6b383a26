package collect

import (
	"fmt"
	"time"

	"github.com/norwind/bingwall/internal/model"
)

// MarketResult aggregates one market's outcome for a collection run.
type MarketResult struct {
	Market    model.MarketCode
	Country   string
	Collected int
	Skipped   int
	Failed    int
	Invalid   int
}

// Summary is the outcome of one collection run.
//
// Collected counts newly stored records, Skipped counts keys that were
// already stored (including races lost at the write gate), Failed counts
// tuples whose fetch or store errored, and Invalid counts fetched records
// discarded before the store. A tuple lands in exactly one bucket.
type Summary struct {
	Collected int
	Skipped   int
	Failed    int
	Invalid   int

	Duration time.Duration

	// Markets holds per-market counts in stable market-code order.
	Markets []MarketResult

	// Records are the newly stored wallpapers, available for an optional
	// image download phase.
	Records []*model.Wallpaper
}

func (s *Summary) String() string {
	if s.Invalid > 0 {
		return fmt.Sprintf("collected %d, skipped %d, failed %d, invalid %d in %s",
			s.Collected, s.Skipped, s.Failed, s.Invalid, s.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("collected %d, skipped %d, failed %d in %s",
		s.Collected, s.Skipped, s.Failed, s.Duration.Round(time.Millisecond))
}
