package ps

import (
	"encoding/json"
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/pkg/errors"

	"github.com/nickyhof/DemoDB/core"
)

// Fingerprint is a 64-bit checksum of a server's canonical JSON encoding.
// Map keys are encoded in sorted order, so equal servers have equal
// fingerprints.
type Fingerprint uint64

func (fingerprint Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(fingerprint))
}

func encodeServer(server core.Server) ([]byte, error) {
	data, err := json.Marshal(server)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode server")
	}
	return data, nil
}

// FingerprintOf hashes the given server.
func FingerprintOf(server core.Server) (Fingerprint, error) {
	data, err := encodeServer(server)
	if err != nil {
		return 0, err
	}
	return fingerprintBytes(data), nil
}

func fingerprintBytes(data []byte) Fingerprint {
	h := xxhash.New64()
	h.Write(data)
	return Fingerprint(h.Sum64())
}
