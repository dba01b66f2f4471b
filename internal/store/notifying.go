package store

import (
	"context"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/notify"
)

// Notifying publishes an event for every mutation of the wrapped store.
type Notifying struct {
	RecordStore

	pub notify.Publisher
}

// WithNotifications wraps s so that Add and Delete publish to pub.
func WithNotifications(s RecordStore, pub notify.Publisher) *Notifying {
	if pub == nil {
		pub = notify.Discard{}
	}
	return &Notifying{RecordStore: s, pub: pub}
}

// Add stores records and publishes one saved event per record, or a single
// failure event.
func (n *Notifying) Add(ctx context.Context, records ...emissions.ActivityRecord) ([]emissions.ActivityRecord, error) {
	stored, err := n.RecordStore.Add(ctx, records...)
	if err != nil {
		id := ""
		if len(records) == 1 {
			id = records[0].ID
		}
		n.pub.Publish(notify.Failed("save", id, err))
		return nil, err
	}
	for _, r := range stored {
		n.pub.Publish(notify.Saved(r.ID, r.Method))
	}
	return stored, nil
}

// Delete removes a record and publishes the outcome.
func (n *Notifying) Delete(ctx context.Context, id string) error {
	if err := n.RecordStore.Delete(ctx, id); err != nil {
		n.pub.Publish(notify.Failed("delete", id, err))
		return err
	}
	n.pub.Publish(notify.Deleted(id))
	return nil
}
