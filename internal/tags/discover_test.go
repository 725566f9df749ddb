package tags

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
)

type fakeLookup struct {
	assigned map[int]string

	mu          sync.Mutex
	inFlight    int32
	maxInFlight int32
	calls       int
}

func (f *fakeLookup) TagByID(ctx context.Context, id int) (*models.Tag, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	f.calls++
	if cur > f.maxInFlight {
		f.maxInFlight = cur
	}
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	label, ok := f.assigned[id]
	if !ok {
		return nil, errors.Wrap(httpx.ErrNotFound, "tag")
	}
	return &models.Tag{ID: strconv.Itoa(id), Label: label, Slug: label}, nil
}

func TestDiscoverFindsAssignedTagsSorted(t *testing.T) {
	lookup := &fakeLookup{assigned: map[int]string{
		2:  "politics",
		21: "crypto",
		7:  "sports",
	}}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	d := NewDiscoverer(lookup, 25, 10, 0, log)

	tags, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	for i, want := range []string{"2", "7", "21"} {
		if tags[i].ID != want {
			t.Errorf("position %d: expected id %s, got %s", i, want, tags[i].ID)
		}
	}
	if lookup.calls != 25 {
		t.Errorf("expected 25 probes, got %d", lookup.calls)
	}
}

func TestDiscoverBoundsConcurrency(t *testing.T) {
	lookup := &fakeLookup{assigned: map[int]string{}}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	d := NewDiscoverer(lookup, 50, 10, 0, log)

	if _, err := d.Discover(context.Background()); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if lookup.maxInFlight > 10 {
		t.Errorf("expected at most 10 concurrent probes, saw %d", lookup.maxInFlight)
	}
}

func TestDiscoverStopsOnCancel(t *testing.T) {
	lookup := &fakeLookup{assigned: map[int]string{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	d := NewDiscoverer(lookup, 100, 10, 50*time.Millisecond, log)

	if _, err := d.Discover(ctx); err == nil {
		t.Error("expected error from canceled context")
	}
	if lookup.calls > 10 {
		t.Errorf("expected at most one batch before cancel, got %d probes", lookup.calls)
	}
}
