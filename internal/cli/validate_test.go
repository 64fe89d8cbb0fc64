package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/openbrace/enclaveapi"
)

// runToFile runs the request and writes the response next to it
func runToFile(t *testing.T, requestPath, name string, extraArgs ...string) string {
	t.Helper()
	outPath := filepath.Join(t.TempDir(), name)
	args := append([]string{"run", "--out", outPath}, extraArgs...)
	args = append(args, requestPath)
	_, err := execute(t, args...)
	assert.NoError(t, err)
	return outPath
}

func TestValidateHonestResponse(t *testing.T) {
	requestPath := writeFile(t, "request.yaml", twoAgentRequestYAML)

	for _, name := range []string{"response.json", "response.cbor"} {
		t.Run(name, func(t *testing.T) {
			responsePath := runToFile(t, requestPath, name)

			output, err := execute(t, "validate", requestPath, responsePath)
			assert.NoError(t, err)
			check.True(t, strings.Contains(output, "VALIDATION: ✓ PASSED"))
			check.False(t, strings.Contains(output, "Attestation:"))
		})
	}
}

func TestValidateJSON(t *testing.T) {
	requestPath := writeFile(t, "request.yaml", twoAgentRequestYAML)
	responsePath := runToFile(t, requestPath, "response.json")

	output, err := execute(t, "--format", "json", "validate", requestPath, responsePath)
	assert.NoError(t, err)

	var result struct {
		Status string           `json:"status"`
		Data   ValidationReport `json:"data"`
	}
	assert.NoError(t, json.Unmarshal([]byte(output), &result))
	check.Equal(t, "ok", result.Status)
	check.True(t, result.Data.Valid)
	assert.NotNil(t, result.Data.Properties)
	check.True(t, result.Data.Properties.Prices)
	check.True(t, result.Data.Attestation == nil)
}

func TestValidateTamperedResponse(t *testing.T) {
	requestPath := writeFile(t, "request.yaml", twoAgentRequestYAML)
	responsePath := runToFile(t, requestPath, "response.json")

	resp, err := enclaveapi.LoadAuctionResponse(responsePath)
	assert.NoError(t, err)
	resp.TotalWelfare = 42
	data, err := json.Marshal(resp)
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(responsePath, data, 0o600))

	output, err := execute(t, "--format", "json", "validate", requestPath, responsePath)
	check.Error(t, err)
	check.Equal(t, ExitFailure, GetExitCode(err))

	var result struct {
		Status string           `json:"status"`
		Data   ValidationReport `json:"data"`
	}
	assert.NoError(t, json.Unmarshal([]byte(output), &result))
	check.Equal(t, "invalid", result.Status)
	check.False(t, result.Data.Valid)
	check.False(t, result.Data.Properties.Welfare)
}

func TestValidateLocalAttestation(t *testing.T) {
	requestPath := writeFile(t, "request.yaml", twoAgentRequestYAML)
	responsePath := runToFile(t, requestPath, "response.json", "--attest", AttestLocal)

	// Properties alone hold
	_, err := execute(t, "validate", requestPath, responsePath)
	assert.NoError(t, err)

	// The local root is not the Nitro root, so the chain check fails
	output, err := execute(t, "validate", "--attestation", requestPath, responsePath)
	check.Error(t, err)
	check.Equal(t, ExitFailure, GetExitCode(err))
	check.True(t, strings.Contains(output, "PCRs Valid:              false"))
	check.True(t, strings.Contains(output, "Certificate Valid:       false"))
	check.True(t, strings.Contains(output, "Signature Valid:         true"))
	check.True(t, strings.Contains(output, "Prices Hash Valid:       true"))
	check.True(t, strings.Contains(output, "VALIDATION: ✗ FAILED"))

	// Debug-mode measurements are trusted only when supplied explicitly
	zero := strings.Repeat("0", 96)
	pcrsPath := writeFile(t, "pcrs.json", `{"pcr_sets":[{"pcr0":"`+zero+`","pcr1":"`+zero+`","pcr2":"`+zero+`","commit_hash":"local"}]}`)
	output, err = execute(t, "validate", "--attestation", "--pcrs", pcrsPath, requestPath, responsePath)
	check.Error(t, err)
	check.True(t, strings.Contains(output, "PCRs Valid:              true"))
}

func TestValidateErrors(t *testing.T) {
	requestPath := writeFile(t, "request.yaml", twoAgentRequestYAML)
	unattestedPath := runToFile(t, requestPath, "response.json")
	unknownGoodPath := writeFile(t, "unknown.yaml", unknownGoodRequestYAML)
	attestedPath := runToFile(t, requestPath, "attested.json", "--attest", AttestLocal)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing response", args: []string{"validate", requestPath, filepath.Join(t.TempDir(), "missing.json")}},
		{name: "invalid request", args: []string{"validate", unknownGoodPath, unattestedPath}},
		{name: "no attestation to check", args: []string{"validate", "--attestation", requestPath, unattestedPath}},
		{name: "missing pcrs file", args: []string{"validate", "--attestation", "--pcrs", filepath.Join(t.TempDir(), "pcrs.json"), requestPath, attestedPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			check.Error(t, err)
			check.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
