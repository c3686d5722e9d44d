package vm

import (
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// Publisher receives controller events. Publish is called with the
// controller lock held and must not block.
type Publisher interface {
	Publish(event types.Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(types.Event)

func (f PublisherFunc) Publish(e types.Event) { f(e) }

type nopPublisher struct{}

func (nopPublisher) Publish(types.Event) {}

// remote error bodies end up in notices
var noticePolicy = bluemonday.StrictPolicy()

func newNotice(level types.NoticeLevel, message string) types.Notice {
	return types.Notice{Level: level, Message: noticePolicy.Sanitize(message)}
}

func stateEvent(snap types.Snapshot) types.Event {
	return types.Event{Type: types.EventState, Snapshot: &snap, Timestamp: time.Now().UnixMilli()}
}

func statsEvent(stats types.Stats, avg types.StatsAverages) types.Event {
	return types.Event{Type: types.EventStats, Stats: &stats, Averages: &avg, Timestamp: time.Now().UnixMilli()}
}

func noticeEvent(n types.Notice) types.Event {
	return types.Event{Type: types.EventNotice, Notice: &n, Timestamp: time.Now().UnixMilli()}
}
