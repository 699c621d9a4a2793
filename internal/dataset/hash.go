package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/wonny/salesbonus/internal/contracts"
)

// Hash fingerprints a dataset: sha256 over its canonical JSON encoding.
// Equal datasets hash equally regardless of the source format.
func Hash(ds *contracts.Dataset) (string, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("marshal dataset: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
