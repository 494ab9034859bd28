package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// fingerprintInputs is the canonical representation hashed into a
// fingerprint. Field order matters for the JSON serialization, so new
// fields must be appended, never inserted.
type fingerprintInputs struct {
	Input    Data   `json:"input"`
	InputExt string `json:"input_ext"`
	Ext      string `json:"ext"`
	Stage    string `json:"stage"`
}

// ComputeFingerprint computes the deterministic cache key for a stage
// invocation. It covers everything that can affect the stage's output:
// the ordered input fragments, the resolved input and output extensions,
// and the stage identity. Two invocations with equal fingerprints can
// safely share an artifact.
func ComputeFingerprint(input Data, inputExt, outputExt, stageName string) (string, error) {
	if outputExt == "" {
		return "", fmt.Errorf("fingerprint requires a resolved output extension")
	}
	if stageName == "" {
		return "", fmt.Errorf("fingerprint requires a stage name")
	}

	payload := fingerprintInputs{
		Input:    input,
		InputExt: inputExt,
		Ext:      outputExt,
		Stage:    stageName,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint inputs: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
