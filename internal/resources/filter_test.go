package resources

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atremap/internal/at"
	"atremap/internal/mapping"
)

func fooMappings() at.Mappings {
	b := mapping.NewBuilder()
	b.AddClass("net/minecraft/Foo", "a/b/Baz")
	b.AddField("net/minecraft/Foo", "bar", "qux", "")
	return at.FromTable(b.Build())
}

func TestFilterLoadsOnceAndRewrites(t *testing.T) {
	var loads atomic.Int32
	f := NewFilter(func() (at.Mappings, error) {
		loads.Add(1)
		return fooMappings(), nil
	})
	assert.Equal(t, StateUninitialized, f.State())

	got, err := f.Transform("public net.minecraft.Foo bar # note")
	require.NoError(t, err)
	assert.Equal(t, "public a.b.Baz qux # note", got)

	got, err = f.Transform("  # just a comment")
	require.NoError(t, err)
	assert.Equal(t, "  # just a comment", got)

	assert.Equal(t, StateLoaded, f.State())
	assert.Equal(t, int32(1), loads.Load())
}

func TestFilterInvalidIsSticky(t *testing.T) {
	boom := errors.New("mappings missing")
	var loads atomic.Int32
	f := NewFilter(func() (at.Mappings, error) {
		loads.Add(1)
		return nil, boom
	})

	_, err := f.Transform("public net.minecraft.Foo bar")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateInvalid, f.State())
	require.ErrorIs(t, f.Err(), boom)

	for i := 0; i < 3; i++ {
		got, err := f.Transform("public net.minecraft.Foo bar")
		require.NoError(t, err)
		assert.Equal(t, "public net.minecraft.Foo bar", got)
	}
	assert.Equal(t, int32(1), loads.Load(), "load must not be retried")
}

func TestFilterNilSourceInvalidates(t *testing.T) {
	f := NewFilter(nil)
	_, err := f.Transform("public a b")
	require.Error(t, err)
	got, err := f.Transform("public a b")
	require.NoError(t, err)
	assert.Equal(t, "public a b", got)
}

func TestFilterConcurrentFirstUse(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	f := NewFilter(func() (at.Mappings, error) {
		loads.Add(1)
		<-release
		return fooMappings(), nil
	})

	var wg sync.WaitGroup
	results := make([]string, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.Transform("public net.minecraft.Foo bar")
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "public a.b.Baz qux", results[i])
	}
}
