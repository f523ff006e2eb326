package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	"github.com/SyedDaiam9101/conditioning-service/internal/enhancerpb"
)

func sampleEntries() []*enhancerpb.Entry {
	return []*enhancerpb.Entry{{
		Embedding: &enhancerpb.Tensor{Shape: []int64{1, 1, 2}, DType: "float32", Data: make([]byte, 8)},
		Metadata:  []byte{0xa0},
	}}
}

func TestKey_Deterministic(t *testing.T) {
	p := enhance.DefaultParameters()

	a, err := Key(sampleEntries(), p)
	require.NoError(t, err)
	b, err := Key(sampleEntries(), p)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, KeyPrefix))
	assert.Len(t, a, len(KeyPrefix)+64)
}

func TestKey_SensitiveToInputs(t *testing.T) {
	p := enhance.DefaultParameters()
	base, err := Key(sampleEntries(), p)
	require.NoError(t, err)

	seeded := p
	seeded.Seed = 7
	k, err := Key(sampleEntries(), seeded)
	require.NoError(t, err)
	assert.NotEqual(t, base, k)

	entries := sampleEntries()
	entries[0].Embedding.Data[0] = 1
	k, err = Key(entries, p)
	require.NoError(t, err)
	assert.NotEqual(t, base, k)

	entries = sampleEntries()
	entries[0].Metadata = []byte{0xf6}
	k, err = Key(entries, p)
	require.NoError(t, err)
	assert.NotEqual(t, base, k)
}

func TestCompression_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("conditioning"), 512)

	packed := compress(payload)
	assert.Less(t, len(packed), len(payload))

	out, err := decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = decompress([]byte("not zstd"))
	assert.Error(t, err)
}

func TestNilCache(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrNoClient))
	assert.True(t, errors.Is(c.Set(ctx, "k", nil, time.Minute), ErrNoClient))
	assert.NoError(t, c.Close())
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := New(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
