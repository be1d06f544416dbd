// Package mediagroup collects the photos of a Telegram album, which arrive
// as separate updates, into one batch.
package mediagroup

import (
	"strconv"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	Caption      string
	FileID       string
}

// Album is a flushed media group. Only one photo of an album carries the
// caption, so Caption is whichever non-empty caption arrived.
type Album struct {
	ChatID   int64
	UserID   int64
	Username string
	Caption  string
	FileIDs  []string
	// Dropped counts photos past MaxItems.
	Dropped int
}

type Options struct {
	Debounce time.Duration
	MaxItems int
	OnFlush  func(Album)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	maxItems int
	onFlush  func(Album)
	pending  map[string]*pendingAlbum
	closed   bool
	flushing sync.WaitGroup
}

type pendingAlbum struct {
	album Album
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = 4
	}

	return &Aggregator{
		debounce: debounce,
		maxItems: maxItems,
		onFlush:  opts.OnFlush,
		pending:  make(map[string]*pendingAlbum),
	}
}

// Add buffers item and restarts its album's debounce timer. It reports
// false for items that are not part of an album or arrive after Close.
func (a *Aggregator) Add(item Item) bool {
	if item.MediaGroupID == "" || item.FileID == "" {
		return false
	}

	key := strconv.FormatInt(item.ChatID, 10) + ":" + item.MediaGroupID

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return false
	}

	pa, ok := a.pending[key]
	if !ok {
		pa = &pendingAlbum{album: Album{
			ChatID:   item.ChatID,
			UserID:   item.UserID,
			Username: item.Username,
		}}
		a.pending[key] = pa
	}

	if len(pa.album.FileIDs) < a.maxItems {
		pa.album.FileIDs = append(pa.album.FileIDs, item.FileID)
	} else {
		pa.album.Dropped++
	}
	if item.Caption != "" {
		pa.album.Caption = item.Caption
	}

	if pa.timer != nil {
		pa.timer.Stop()
	}
	pa.timer = time.AfterFunc(a.debounce, func() { a.flush(key) })
	return true
}

// Close flushes every pending album immediately and rejects further items.
// It returns once every OnFlush call, including ones fired by a debounce
// timer, has returned.
func (a *Aggregator) Close() {
	a.mu.Lock()
	a.closed = true
	keys := make([]string, 0, len(a.pending))
	for key, pa := range a.pending {
		pa.timer.Stop()
		keys = append(keys, key)
	}
	a.mu.Unlock()

	for _, key := range keys {
		a.flush(key)
	}
	a.flushing.Wait()
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pa, ok := a.pending[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	album := pa.album
	onFlush := a.onFlush
	a.flushing.Add(1)
	a.mu.Unlock()
	defer a.flushing.Done()

	if onFlush != nil {
		onFlush(album)
	}
}
