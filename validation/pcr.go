package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	enclaveapi "github.com/cloudx-io/openbrace/enclaveapi"
)

//go:embed pcrs.json
var defaultPCRConfig []byte

// DefaultPCRSets returns the PCR sets compiled into the binary from pcrs.json.
// The list may be empty, in which case no enclave image is trusted until sets
// are supplied. All-zero (debug-mode) measurements are never accepted here.
func DefaultPCRSets() ([]PCRSet, error) {
	var config PCRConfig
	if err := json.Unmarshal(defaultPCRConfig, &config); err != nil {
		return nil, fmt.Errorf("embedded PCR config: %w", err)
	}
	for i, set := range config.PCRSets {
		if set.IsDebug() {
			return nil, fmt.Errorf("embedded PCR config: set #%d (commit: %s) is a debug-mode measurement", i, set.CommitHash)
		}
	}
	return config.PCRSets, nil
}

// LoadPCRsFromFile loads known PCR sets from a JSON file
func LoadPCRsFromFile(path string) ([]PCRSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCR config file: %w", err)
	}
	return parsePCRConfig(data)
}

func parsePCRConfig(data []byte) ([]PCRSet, error) {
	var config PCRConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse PCR config: %w", err)
	}

	if len(config.PCRSets) == 0 {
		return nil, fmt.Errorf("no PCR sets found in config file")
	}

	return config.PCRSets, nil
}

// IsDebug reports whether PCR0-2 are all zero, as reported by an enclave
// started in debug mode.
func (s PCRSet) IsDebug() bool {
	return isZeroHex(s.PCR0) && isZeroHex(s.PCR1) && isZeroHex(s.PCR2)
}

func isZeroHex(value string) bool {
	return value != "" && strings.Trim(value, "0") == ""
}

// ValidatePCRs checks PCR0-2 against the known sets.
// Returns the index of the first matching set, or (false, -1).
func ValidatePCRs(pcrs enclaveapi.PCRs, knownSets []PCRSet) (bool, int) {
	for i, knownSet := range knownSets {
		if pcrs.ImageFileHash == knownSet.PCR0 &&
			pcrs.KernelHash == knownSet.PCR1 &&
			pcrs.ApplicationHash == knownSet.PCR2 {
			return true, i
		}
	}
	return false, -1
}
