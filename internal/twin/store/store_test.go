package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestNextID(t *testing.T) {
	s := NewTable[testItem]("user")
	assert.Equal(t, "user_000001", s.NextID())
	assert.Equal(t, "user_000002", s.NextID())

	s.Reset()
	assert.Equal(t, "user_000001", s.NextID())
}

func TestSetKeepsInsertionOrder(t *testing.T) {
	s := NewTable[testItem]("item")
	s.Set("b", testItem{Name: "b"})
	s.Set("a", testItem{Name: "a"})
	s.Set("b", testItem{Name: "b2"})

	assert.Equal(t, []testItem{{Name: "b2"}, {Name: "a"}}, s.List())
	assert.Equal(t, 2, s.Count())
}

func TestUpdate(t *testing.T) {
	s := NewTable[testItem]("item")
	s.Set("x", testItem{Name: "x", Value: 1})

	found, err := s.Update("x", func(it *testItem) error {
		it.Value++
		return nil
	})
	require.NoError(t, err)
	assert.True(t, found)
	got, _ := s.Get("x")
	assert.Equal(t, 2, got.Value)

	boom := errors.New("boom")
	found, err = s.Update("x", func(it *testItem) error {
		it.Value = 100
		return boom
	})
	assert.True(t, found)
	assert.ErrorIs(t, err, boom)
	got, _ = s.Get("x")
	assert.Equal(t, 2, got.Value, "failed update is not stored")

	found, err = s.Update("missing", func(*testItem) error { return nil })
	assert.False(t, found)
	assert.NoError(t, err)
}

func TestDeleteAndFind(t *testing.T) {
	s := NewTable[testItem]("item")
	s.Set("a", testItem{Name: "a", Value: 1})
	s.Set("b", testItem{Name: "b", Value: 2})

	id, item, ok := s.Find(func(_ string, it testItem) bool { return it.Value == 2 })
	assert.True(t, ok)
	assert.Equal(t, "b", id)
	assert.Equal(t, "b", item.Name)

	s.Set("c", testItem{Name: "c", Value: 3})
	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	got, ok := s.Get("c")
	assert.True(t, ok, "rows after a deleted one stay addressable")
	assert.Equal(t, 3, got.Value)
	assert.Equal(t, []testItem{{Name: "b", Value: 2}, {Name: "c", Value: 3}}, s.List())
	_, _, ok = s.Find(func(_ string, it testItem) bool { return it.Name == "a" })
	assert.False(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewTable[testItem]("item")
	s.Set("z", testItem{Name: "z"})
	s.Set("y", testItem{Name: "y"})

	restored := NewTable[testItem]("item")
	restored.LoadSnapshot(s.Snapshot())
	assert.Equal(t, []testItem{{Name: "y"}, {Name: "z"}}, restored.List(), "loaded IDs are sorted")
}

func TestLoadSnapshotAdvancesSequence(t *testing.T) {
	s := NewTable[testItem]("user")
	s.LoadSnapshot(map[string]testItem{"user_000007": {Name: "seven"}, "custom": {Name: "c"}})
	assert.Equal(t, "user_000008", s.NextID())
}

func TestConcurrentSet(t *testing.T) {
	s := NewTable[testItem]("item")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(s.NextID(), testItem{Value: 1})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Count())
}

func TestClock(t *testing.T) {
	c := NewClock()
	before := c.Now()
	c.Advance(time.Hour)
	assert.Equal(t, time.Hour, c.Offset())
	assert.True(t, c.Now().Sub(before) >= time.Hour)

	c.Reset()
	assert.Zero(t, c.Offset())
}
