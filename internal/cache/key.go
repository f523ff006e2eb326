// internal/cache/key.go
package cache

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	"github.com/SyedDaiam9101/conditioning-service/internal/enhancerpb"
)

// KeyPrefix namespaces every key the cache writes.
const KeyPrefix = "enhance:"

// ErrNoClient is returned by a Cache that has no Redis connection.
var ErrNoClient = errors.New("cache client is nil")

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

type keyMaterial struct {
	Entries    []*enhancerpb.Entry    `cbor:"1,keyasint"`
	Parameters *enhancerpb.Parameters `cbor:"2,keyasint"`
}

// Key derives the cache key for a collection enhanced with fully resolved
// parameters. Equal inputs produce equal keys because the encoding is
// deterministic and the pipeline is seeded.
func Key(entries []*enhancerpb.Entry, params enhance.Parameters) (string, error) {
	raw, err := enhancerpb.Marshal(keyMaterial{
		Entries:    entries,
		Parameters: enhancerpb.ParametersFrom(params),
	})
	if err != nil {
		return "", fmt.Errorf("encode key material: %w", err)
	}
	sum := blake3.Sum256(raw)
	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}

func compress(data []byte) []byte {
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

func decompress(data []byte) ([]byte, error) {
	return decoder.DecodeAll(data, nil)
}
