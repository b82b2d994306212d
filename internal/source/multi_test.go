package source

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spiffcs/contribs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	name  string
	list  []model.Contributor
	err   error
	delay time.Duration
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Contributors(ctx context.Context) ([]model.Contributor, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.list, s.err
}

func TestMultiSourceKeepsSourceOrder(t *testing.T) {
	slow := &staticSource{name: "slow", delay: 20 * time.Millisecond, list: []model.Contributor{
		{ID: "1", Name: "Ada"},
		{ID: "2", Name: "Grace"},
	}}
	fast := &staticSource{name: "fast", list: []model.Contributor{
		{ID: "2", Name: "Grace (dup)"},
		{ID: "3", Name: "Linus"},
	}}

	var mu sync.Mutex
	var calls []string
	m := NewMultiSource([]Source{slow, fast}, WithWorkers(2), WithProgress(func(name string, count, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, name)
		assert.Equal(t, 2, total)
	}))

	got, err := m.Contributors(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.Contributor{
		{ID: "1", Name: "Ada"},
		{ID: "2", Name: "Grace"},
		{ID: "3", Name: "Linus"},
	}, got)
	assert.ElementsMatch(t, []string{"slow", "fast"}, calls)
}

func TestMultiSourceError(t *testing.T) {
	boom := errors.New("boom")
	m := NewMultiSource([]Source{
		&staticSource{name: "ok", list: []model.Contributor{{ID: "1", Name: "Ada"}}},
		&staticSource{name: "bad", err: boom},
	})

	_, err := m.Contributors(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
}

func TestMultiSourceName(t *testing.T) {
	one := NewMultiSource([]Source{&staticSource{name: "a/b"}})
	assert.Equal(t, "a/b", one.Name())

	two := NewMultiSource([]Source{&staticSource{name: "a/b"}, &staticSource{name: "c/d"}})
	assert.Equal(t, "2 sources", two.Name())
}

func TestMerge(t *testing.T) {
	got := Merge(
		[]model.Contributor{{ID: "1", Name: "Ada"}, {Name: "no id"}},
		nil,
		[]model.Contributor{{ID: "1", Name: "Ada again"}, {Name: "no id"}},
	)

	assert.Equal(t, []model.Contributor{
		{ID: "1", Name: "Ada"},
		{Name: "no id"},
		{Name: "no id"},
	}, got)
}
