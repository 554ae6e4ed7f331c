package jobs

import (
	"context"
	"log"
	"time"

	"github.com/ernest-money/ernest-oracle/internal/oracle"
)

// Watcher periodically attests announced events whose maturity has passed.
type Watcher struct {
	oracle *oracle.Oracle
	feeds  oracle.FeedSource
}

func NewWatcher(o *oracle.Oracle, feeds oracle.FeedSource) *Watcher {
	return &Watcher{oracle: o, feeds: feeds}
}

// Start begins the periodic matured-event signing job
func (w *Watcher) Start(interval time.Duration) {
	go func() {
		ctx := context.Background()
		w.signMaturedEvents(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			w.signMaturedEvents(ctx)
		}
	}()
}

func (w *Watcher) signMaturedEvents(ctx context.Context) {
	events, err := w.oracle.ListAnnouncedEvents(ctx)
	if err != nil {
		log.Printf("Failed to list announced events: %v", err)
		return
	}

	now := uint32(time.Now().Unix())
	for _, event := range events {
		if event.EventMaturityEpoch >= now || event.IsEnum {
			continue
		}
		if err := w.oracle.AttestMaturedEvent(ctx, event.EventID, w.feeds); err != nil {
			log.Printf("Could not sign matured event. event_id=%s error=%v", event.EventID, err)
			continue
		}
		log.Printf("Signed matured event. event_id=%s", event.EventID)
	}
}
