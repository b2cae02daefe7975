package kernel

import (
	"sync"

	"pandakernel/internal/ids"
	"pandakernel/internal/vtime"
)

// FaultKind enumerates the fault-injection primitives the simulated kernel
// understands (spec §4.2 "Fault injection").
type FaultKind string

const (
	FaultDrop               FaultKind = "Drop"
	FaultCorrupt            FaultKind = "Corrupt"
	FaultDuplicate          FaultKind = "Duplicate"
	FaultDelay              FaultKind = "Delay"
	FaultCrashBeforeReceive FaultKind = "CrashBeforeReceive"
	FaultCrashAfterN        FaultKind = "CrashAfterNMessages"
)

// Selector picks which sends/receives a fault applies to.
type Selector struct {
	// Channel restricts the fault to one channel; the zero value matches any.
	Channel ids.ChannelId
	// NextN consumes the fault after it has matched N operations (Arm turns
	// 0 into 1).
	NextN int
	// Action restricts the fault to envelopes with this action string; empty
	// matches any.
	Action string
	// NthSend/NthReceive, when >0, restrict the fault to the Nth send or
	// receive observed on the channel (1-indexed). Zero means unrestricted.
	NthSend    int
	NthReceive int
}

// Fault is one entry in a fault plan.
type Fault struct {
	Kind     FaultKind
	Selector Selector
	Delay    vtime.Duration
	remaining int // internal: operations left before this fault is spent
}

// FaultApplication records that a fault fired, for tests to observe (spec
// §4.2 "Every fault application is observable to tests").
type FaultApplication struct {
	Kind    FaultKind
	Channel ids.ChannelId
	At      vtime.Instant
}

// FaultPlan holds the ordered set of faults the simulated kernel consults on
// every send/receive. Faults are consumed (removed) once exhausted unless
// explicitly re-armed by the caller.
type FaultPlan struct {
	mu             sync.Mutex
	faults         []*Fault
	sendCounts     map[ids.ChannelId]int
	receiveCounts  map[ids.ChannelId]int
	applications   []FaultApplication
}

// NewFaultPlan returns an empty fault plan (no faults fire).
func NewFaultPlan() *FaultPlan {
	return &FaultPlan{
		sendCounts:    make(map[ids.ChannelId]int),
		receiveCounts: make(map[ids.ChannelId]int),
	}
}

// Arm adds a fault to the plan. NextN, if zero, defaults to 1 consumption.
func (p *FaultPlan) Arm(f Fault) {
	if f.Selector.NextN <= 0 {
		f.Selector.NextN = 1
	}
	f.remaining = f.Selector.NextN
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults = append(p.faults, &f)
}

// Applications returns every recorded fault application.
func (p *FaultPlan) Applications() []FaultApplication {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]FaultApplication, len(p.applications))
	copy(out, p.applications)
	return out
}

// onSend must be called before a message is actually pushed. It returns the
// fault that applies, or nil.
func (p *FaultPlan) onSend(channel ids.ChannelId, action string, now vtime.Instant) *Fault {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendCounts[channel]++
	n := p.sendCounts[channel]
	return p.match(channel, action, n, -1, now)
}

// onReceive must be called before a message is actually popped.
func (p *FaultPlan) onReceive(channel ids.ChannelId, action string, now vtime.Instant) *Fault {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.receiveCounts[channel]++
	n := p.receiveCounts[channel]
	return p.match(channel, action, -1, n, now)
}

// match finds the first fault matching the given send/receive observation,
// decrements its remaining count, removes it if spent, and records the
// application. A CrashBeforeReceive fault matches only receives (nthSend <
// 0); every other kind matches only sends. Callers must hold p.mu.
func (p *FaultPlan) match(channel ids.ChannelId, action string, nthSend, nthReceive int, now vtime.Instant) *Fault {
	for i, f := range p.faults {
		if (f.Kind == FaultCrashBeforeReceive) != (nthSend < 0) {
			continue
		}
		sel := f.Selector
		if !sel.Channel.IsZero() && sel.Channel != channel {
			continue
		}
		if sel.Action != "" && sel.Action != action {
			continue
		}
		if sel.NthSend > 0 && (nthSend < 0 || sel.NthSend != nthSend) {
			continue
		}
		if sel.NthReceive > 0 && (nthReceive < 0 || sel.NthReceive != nthReceive) {
			continue
		}
		f.remaining--
		p.applications = append(p.applications, FaultApplication{Kind: f.Kind, Channel: channel, At: now})
		if f.remaining <= 0 {
			p.faults = append(p.faults[:i], p.faults[i+1:]...)
		}
		return f
	}
	return nil
}
