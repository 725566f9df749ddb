// Package tags probes the upstream tag id space to discover which ids are
// assigned. Tag ids are sparse and undocumented, so discovery walks a
// bounded range in small concurrent batches with a pause between batches
// to stay polite to the upstream.
package tags

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
)

// Lookup fetches one tag by id. A wrapped httpx.ErrNotFound means the id
// is unassigned.
type Lookup interface {
	TagByID(ctx context.Context, id int) (*models.Tag, error)
}

type Discoverer struct {
	lookup Lookup
	log    *logrus.Logger

	maxID      int
	batchSize  int
	batchPause time.Duration
}

func NewDiscoverer(lookup Lookup, maxID, batchSize int, batchPause time.Duration, log *logrus.Logger) *Discoverer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Discoverer{
		lookup:     lookup,
		log:        log,
		maxID:      maxID,
		batchSize:  batchSize,
		batchPause: batchPause,
	}
}

// Discover probes ids 1..maxID and returns the assigned tags sorted by
// numeric id. Individual probe failures other than not-found are logged
// and skipped; only context cancellation aborts the walk.
func (d *Discoverer) Discover(ctx context.Context) ([]models.Tag, error) {
	var (
		mu    sync.Mutex
		found = make(map[int]models.Tag)
	)

	for start := 1; start <= d.maxID; start += d.batchSize {
		end := start + d.batchSize
		if end > d.maxID+1 {
			end = d.maxID + 1
		}

		var wg sync.WaitGroup
		for id := start; id < end; id++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				tag, err := d.lookup.TagByID(ctx, id)
				if err != nil {
					if !errors.Is(err, httpx.ErrNotFound) {
						d.log.WithError(err).WithField("tag_id", id).Warn("Tag probe failed")
					}
					return
				}
				mu.Lock()
				found[id] = *tag
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if end <= d.maxID && d.batchPause > 0 {
			select {
			case <-time.After(d.batchPause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	ids := make([]int, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	tags := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, found[id])
	}
	return tags, nil
}
