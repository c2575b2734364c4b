package cache

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyKeepsRawQuery(t *testing.T) {
	require.Equal(t, "psalms_data_", Key(""))
	require.Equal(t, "psalms_data_stanzas=5&stanzas=6", Key("stanzas=5&stanzas=6"))
	require.NotEqual(t, Key("page=1&per_page=10"), Key("per_page=10&page=1"))
	require.Equal(t, "psalms_data_stanzas=%205", Key("stanzas=%205"))
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Hour).WithClock(func() time.Time { return now })

	_, ok, err := m.Get(t.Context(), "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(t.Context(), "k", []byte(`[1]`)))
	got, ok, err := m.Get(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`[1]`), got)

	now = now.Add(59 * time.Minute)
	_, ok, _ = m.Get(t.Context(), "k")
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(t.Context(), "k")
	require.False(t, ok)
	require.Equal(t, 0, m.Len())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	m := NewMemoryStore(time.Minute)
	payload := []byte("abc")
	require.NoError(t, m.Set(t.Context(), "k", payload))
	payload[0] = 'x'

	got, ok, err := m.Get(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _, _ := m.Get(t.Context(), "k")
	require.Equal(t, "abc", string(again))
}

func TestMemoryStoreLastWriterWins(t *testing.T) {
	m := NewMemoryStore(time.Minute)
	require.NoError(t, m.Set(t.Context(), "k", []byte("one")))
	require.NoError(t, m.Set(t.Context(), "k", []byte("two")))
	got, _, _ := m.Get(t.Context(), "k")
	require.Equal(t, "two", string(got))
}

var natsKeyAlphabet = regexp.MustCompile(`^[-/_=\.a-zA-Z0-9]+$`)

func TestEncodeKeyFitsNATSAlphabet(t *testing.T) {
	for _, raw := range []string{"", "stanzas=5&stanzas=6", "api_key=a b&page=1", "x=%E2%9C%93*>"} {
		encoded := encodeKey(Key(raw))
		require.Regexp(t, natsKeyAlphabet, encoded)

		decoded, err := base64.RawURLEncoding.DecodeString(encoded)
		require.NoError(t, err)
		require.Equal(t, Key(raw), string(decoded))
	}
	require.NotEqual(t, encodeKey(Key("a=1&b=2")), encodeKey(Key("b=2&a=1")))
}

func TestMemoryStoreSweepsUnreadKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Hour).WithClock(func() time.Time { return now })

	for i := range 1000 {
		require.NoError(t, m.Set(t.Context(), Key(fmt.Sprintf("junk=%d", i)), []byte(`[]`)))
	}
	require.Equal(t, 1000, m.Len())

	now = now.Add(2 * time.Hour)
	for i := range sweepEvery {
		require.NoError(t, m.Set(t.Context(), Key(fmt.Sprintf("fresh=%d", i)), []byte(`[]`)))
	}
	require.LessOrEqual(t, m.Len(), sweepEvery)

	_, ok, err := m.Get(t.Context(), Key("fresh=0"))
	require.NoError(t, err)
	require.True(t, ok)
}
