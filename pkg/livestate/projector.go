package livestate

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/the-snesler/spacebot-sub001/pkg/api"
	"github.com/the-snesler/spacebot-sub001/pkg/logger"
	"github.com/the-snesler/spacebot-sub001/pkg/sse"
)

// DefaultRetention is the default timeline bound per channel.
const DefaultRetention = 200

// SnapshotSource fetches the authoritative live snapshot used on
// resync. Satisfied by api.Client.
type SnapshotSource interface {
	FetchLiveSnapshot(ctx context.Context) (*api.LiveSnapshot, error)
}

// Projector owns the canonical live-state projection for every
// channel. Apply is the only mutator for incremental deltas and runs
// on the stream connection's read goroutine; Resync replaces the
// projection wholesale from an authoritative snapshot. Readers get
// copies, guarded by an RWMutex because presentation reads from its
// own goroutine.
type Projector struct {
	snapshots SnapshotSource
	retention int

	mu       sync.RWMutex
	channels map[string]*ChannelState
	onUpdate func()
}

// Option configures a Projector.
type Option func(*Projector)

// WithRetention overrides the per-channel timeline bound.
func WithRetention(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.retention = n
		}
	}
}

// NewProjector creates an empty projection backed by the given
// snapshot source.
func NewProjector(snapshots SnapshotSource, opts ...Option) *Projector {
	p := &Projector{
		snapshots: snapshots,
		retention: DefaultRetention,
		channels:  make(map[string]*ChannelState),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnUpdate registers a callback invoked after every projection change.
func (p *Projector) OnUpdate(fn func()) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// Channel returns a copy of one channel's state.
func (p *Projector) Channel(id string) (ChannelState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state, ok := p.channels[id]
	if !ok {
		return ChannelState{}, false
	}
	return state.clone(), true
}

// Channels returns a copy of the whole projection.
func (p *Projector) Channels() map[string]ChannelState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]ChannelState, len(p.channels))
	for id, state := range p.channels {
		out[id] = state.clone()
	}
	return out
}

// Apply folds one inbound event into the projection. Deltas are
// idempotent where the protocol demands it: updates and removals for
// unknown IDs are no-ops, never errors, which tolerates out-of-order
// delivery after a resync gap.
func (p *Projector) Apply(frame sse.Frame) {
	switch frame.Event {
	case EventTypingStarted, EventTypingStopped:
		var payload typingPayload
		if !decode(frame, &payload) || payload.ChannelID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			ch.Typing = frame.Event == EventTypingStarted
		})

	case EventWorkerStarted:
		var payload workerPayload
		if !decode(frame, &payload) || payload.ChannelID == "" || payload.WorkerID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			ch.Workers[payload.WorkerID] = payload.worker()
		})

	case EventWorkerUpdated:
		var payload workerPayload
		if !decode(frame, &payload) || payload.ChannelID == "" || payload.WorkerID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			if _, ok := ch.Workers[payload.WorkerID]; !ok {
				return
			}
			ch.Workers[payload.WorkerID] = payload.worker()
		})

	case EventWorkerFinished, EventWorkerKilled:
		var payload workerPayload
		if !decode(frame, &payload) || payload.ChannelID == "" || payload.WorkerID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			delete(ch.Workers, payload.WorkerID)
		})

	case EventBranchStarted:
		var payload branchPayload
		if !decode(frame, &payload) || payload.ChannelID == "" || payload.BranchID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			ch.Branches[payload.BranchID] = payload.branch()
		})

	case EventBranchUpdated:
		var payload branchPayload
		if !decode(frame, &payload) || payload.ChannelID == "" || payload.BranchID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			existing, ok := ch.Branches[payload.BranchID]
			if !ok {
				return
			}
			updated := payload.branch()
			// The start time is set once by branch_started.
			updated.StartedAt = existing.StartedAt
			ch.Branches[payload.BranchID] = updated
		})

	case EventBranchFinished, EventBranchKilled:
		var payload branchPayload
		if !decode(frame, &payload) || payload.ChannelID == "" || payload.BranchID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			delete(ch.Branches, payload.BranchID)
		})

	case EventMessage:
		var payload messagePayload
		if !decode(frame, &payload) || payload.ChannelID == "" {
			return
		}
		p.mutate(payload.ChannelID, func(ch *ChannelState) {
			ch.Timeline = append(ch.Timeline, TimelineMessage{
				ID:         payload.ID,
				Role:       payload.Role,
				Content:    payload.Content,
				SenderName: payload.SenderName,
				CreatedAt:  payload.CreatedAt,
			})
			if overflow := len(ch.Timeline) - p.retention; overflow > 0 {
				ch.Timeline = append([]TimelineMessage(nil), ch.Timeline[overflow:]...)
			}
		})
	}
}

// Resync replaces the projection with the authoritative snapshot.
// Incremental deltas are only correct against a base known to be
// current, so this runs on every reconnect and on a server lag signal.
func (p *Projector) Resync(ctx context.Context) error {
	snapshot, err := p.snapshots.FetchLiveSnapshot(ctx)
	if err != nil {
		logger.Error("live snapshot fetch failed: %v", err)
		return err
	}

	channels := make(map[string]*ChannelState, len(snapshot.Channels))
	for _, ch := range snapshot.Channels {
		state := newChannelState(ch.ChannelID)
		state.Typing = ch.Typing
		for _, w := range ch.Workers {
			state.Workers[w.ID] = Worker{
				ID:          w.ID,
				Task:        w.Task,
				Status:      w.Status,
				CurrentTool: w.CurrentTool,
				ToolCalls:   w.ToolCalls,
			}
		}
		for _, b := range ch.Branches {
			state.Branches[b.ID] = Branch{
				ID:          b.ID,
				Description: b.Description,
				StartedAt:   b.StartedAt,
				CurrentTool: b.CurrentTool,
				LastTool:    b.LastTool,
				ToolCalls:   b.ToolCalls,
			}
		}
		for _, m := range ch.Timeline {
			state.Timeline = append(state.Timeline, TimelineMessage{
				ID:         m.ID,
				Role:       m.Role,
				Content:    m.Content,
				SenderName: m.SenderName,
				CreatedAt:  m.CreatedAt,
			})
		}
		if overflow := len(state.Timeline) - p.retention; overflow > 0 {
			state.Timeline = state.Timeline[overflow:]
		}
		channels[ch.ChannelID] = state
	}

	p.mu.Lock()
	p.channels = channels
	p.mu.Unlock()
	p.notify()

	logger.Info("live state resynced: %d channels", len(channels))
	return nil
}

// mutate applies fn to the channel's state, creating it lazily on
// first touch. Channel states persist for the life of the process.
func (p *Projector) mutate(channelID string, fn func(*ChannelState)) {
	p.mu.Lock()
	state, ok := p.channels[channelID]
	if !ok {
		state = newChannelState(channelID)
		p.channels[channelID] = state
	}
	fn(state)
	p.mu.Unlock()
	p.notify()
}

func (p *Projector) notify() {
	p.mu.RLock()
	fn := p.onUpdate
	p.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func decode(frame sse.Frame, out any) bool {
	if err := json.Unmarshal([]byte(frame.Raw), out); err != nil {
		logger.Debug("ignoring %s event with malformed payload: %v", frame.Event, err)
		return false
	}
	return true
}

func (w workerPayload) worker() Worker {
	return Worker{
		ID:          w.WorkerID,
		Task:        w.Task,
		Status:      w.Status,
		CurrentTool: w.CurrentTool,
		ToolCalls:   w.ToolCalls,
	}
}

func (b branchPayload) branch() Branch {
	return Branch{
		ID:          b.BranchID,
		Description: b.Description,
		StartedAt:   b.StartedAt,
		CurrentTool: b.CurrentTool,
		LastTool:    b.LastTool,
		ToolCalls:   b.ToolCalls,
	}
}
