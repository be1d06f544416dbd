package mediagroup

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	albums []Album
}

func (c *collector) add(a Album) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.albums = append(c.albums, a)
}

func (c *collector) snapshot() []Album {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Album(nil), c.albums...)
}

func TestAlbumFlushesAfterDebounce(t *testing.T) {
	var c collector
	a := New(Options{Debounce: 20 * time.Millisecond, MaxItems: 2, OnFlush: c.add})

	assert.True(t, a.Add(Item{ChatID: 1, UserID: 7, MediaGroupID: "g", FileID: "f1"}))
	assert.True(t, a.Add(Item{ChatID: 1, UserID: 7, MediaGroupID: "g", FileID: "f2", Caption: "https://shop.example/item"}))
	assert.True(t, a.Add(Item{ChatID: 1, UserID: 7, MediaGroupID: "g", FileID: "f3"}))
	assert.True(t, a.Add(Item{ChatID: 2, MediaGroupID: "g", FileID: "other"}))

	require.Eventually(t, func() bool { return len(c.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	var mine Album
	for _, al := range c.snapshot() {
		if al.ChatID == 1 {
			mine = al
		}
	}
	assert.Equal(t, []string{"f1", "f2"}, mine.FileIDs)
	assert.Equal(t, 1, mine.Dropped)
	assert.Equal(t, "https://shop.example/item", mine.Caption)
	assert.Equal(t, int64(7), mine.UserID)
}

func TestAddIgnoresSinglePhotos(t *testing.T) {
	a := New(Options{})
	assert.False(t, a.Add(Item{ChatID: 1, FileID: "f"}))
	assert.False(t, a.Add(Item{ChatID: 1, MediaGroupID: "g"}))
}

func TestCloseFlushesPending(t *testing.T) {
	var c collector
	a := New(Options{Debounce: time.Hour, OnFlush: c.add})

	require.True(t, a.Add(Item{ChatID: 1, MediaGroupID: "g", FileID: "f1"}))
	a.Close()

	albums := c.snapshot()
	require.Len(t, albums, 1)
	assert.Equal(t, []string{"f1"}, albums[0].FileIDs)
	assert.False(t, a.Add(Item{ChatID: 1, MediaGroupID: "g", FileID: "f2"}))
}

func TestCloseWaitsForTimerFlush(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var done atomic.Bool
	a := New(Options{Debounce: time.Millisecond, OnFlush: func(Album) {
		close(entered)
		<-release
		done.Store(true)
	}})

	require.True(t, a.Add(Item{ChatID: 1, MediaGroupID: "g", FileID: "f1"}))
	<-entered

	closed := make(chan struct{})
	go func() {
		a.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a flush was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-closed
	assert.True(t, done.Load())
}
