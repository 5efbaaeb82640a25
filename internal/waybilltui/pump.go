package waybilltui

import (
	"sync"

	"github.com/tOgg1/waybill/internal/models"
)

// snapshotPump forwards store snapshots to a consumer on its own goroutine.
// Push never blocks, so the store may notify from inside Update.
type snapshotPump struct {
	mu      sync.Mutex
	pending []models.StoreSnapshot
	signal  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

func newSnapshotPump(deliver func(models.StoreSnapshot)) *snapshotPump {
	p := &snapshotPump{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.loop(deliver)
	return p
}

func (p *snapshotPump) Push(snap models.StoreSnapshot) {
	p.mu.Lock()
	p.pending = append(p.pending, snap)
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *snapshotPump) loop(deliver func(models.StoreSnapshot)) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case <-p.signal:
		}

		p.mu.Lock()
		batch := p.pending
		p.pending = nil
		p.mu.Unlock()

		for _, snap := range batch {
			select {
			case <-p.done:
				return
			default:
			}
			deliver(snap)
		}
	}
}

func (p *snapshotPump) Stop() {
	close(p.done)
	p.wg.Wait()
}
