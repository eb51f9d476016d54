package querystate

import (
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesRawQuery(t *testing.T) {
	s, err := New("?q=slow&area=Checkout,Search")
	require.NoError(t, err)
	assert.Equal(t, "slow", s.Get("q"))
	assert.Equal(t, "Checkout,Search", s.Get("area"))

	_, err = New("%zz")
	assert.Error(t, err)
}

func TestStore_UpdateReceivesCopy(t *testing.T) {
	s := FromValues(url.Values{"q": {"a"}})
	var seen url.Values
	s.Update(func(prev url.Values) url.Values {
		seen = prev
		prev.Set("q", "b")
		return prev
	})
	seen.Set("q", "mutated after the fact")
	assert.Equal(t, "b", s.Get("q"))
	assert.Equal(t, uint64(1), s.Version())
}

func TestStore_SetEmptyDeletes(t *testing.T) {
	s := FromValues(url.Values{"q": {"a"}, "page": {"3"}})
	s.Set("q", "")
	assert.Equal(t, "page=3", s.Encode())
}

func TestStore_NilUpdateClears(t *testing.T) {
	s := FromValues(url.Values{"q": {"a"}})
	s.Update(func(url.Values) url.Values { return nil })
	assert.Equal(t, "", s.Encode())
}

func TestStore_UpdateReturnsPrivateCopy(t *testing.T) {
	s := FromValues(nil)
	got := s.Set("a", "1")
	got.Set("a", "changed")
	assert.Equal(t, "a=1", s.Encode())
	assert.Equal(t, uint64(1), s.Version())
}

func TestStress_ConcurrentWritersMerge(t *testing.T) {
	s := FromValues(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Update(func(prev url.Values) url.Values {
				prev.Set("k"+strconv.Itoa(i), "v")
				prev.Del("page")
				return prev
			})
		}(i)
	}
	wg.Wait()

	v := s.Values()
	assert.Len(t, v, 50)
	assert.Equal(t, uint64(50), s.Version())
}
