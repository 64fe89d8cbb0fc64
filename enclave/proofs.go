package enclave

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	nitro "github.com/edgebitio/nitro-enclaves-sdk-go"

	"github.com/cloudx-io/openbrace/core"
	"github.com/cloudx-io/openbrace/enclaveapi"
)

// GenerateResultProofs digests the request and the claimed result and attests them.
// Each digest gets its own nonce, which is embedded next to it in the user data.
func GenerateResultProofs(attester EnclaveAttester, req enclaveapi.AuctionRequest, resp enclaveapi.AuctionResponse) (enclaveapi.AttestationCOSE, error) {
	requestNonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request nonce: %w", err)
	}

	allocationNonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate allocation nonce: %w", err)
	}

	pricesNonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate prices nonce: %w", err)
	}

	agents, goods, err := req.ToCore()
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	allocation, err := resp.CoreAllocation(goods)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild allocation: %w", err)
	}

	userData := &enclaveapi.AuctionAttestationUserData{
		AuctionID:              req.AuctionID,
		RunID:                  resp.RunID,
		RequestHash:            core.ComputeRequestHash(req.AuctionID, req.Epsilon, agents, goods, requestNonce),
		RequestNonce:           requestNonce,
		AllocationHash:         core.ComputeAllocationHash(allocation, allocationNonce),
		AllocationNonce:        allocationNonce,
		PricesHash:             core.ComputePricesHash(resp.Prices, pricesNonce),
		PricesNonce:            pricesNonce,
		IsFeasible:             resp.IsFeasible,
		IsIndividuallyRational: resp.IsIndividuallyRational,
		IsOrdinalEfficient:     resp.IsOrdinalEfficient,
		TotalWelfare:           resp.TotalWelfare,
		Timestamp:              time.Now(),
	}

	return GenerateAttestation(attester, userData)
}

// generateSecureRandomBytes reads from crypto/rand, which inside an enclave is
// fed by the NSM-seeded kernel entropy pool
func generateSecureRandomBytes(length int) ([]byte, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("entropy generation failed: %w", err)
	}
	return randomBytes, nil
}

func generateNonce() (string, error) {
	randomBytes, err := generateSecureRandomBytes(32) // 256 bits of entropy
	if err != nil {
		return "", fmt.Errorf("failed to generate secure nonce - %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}

// GenerateAttestation embeds the user data in an attestation from the attester
func GenerateAttestation(attester EnclaveAttester, userData *enclaveapi.AuctionAttestationUserData) (enclaveapi.AttestationCOSE, error) {
	if attester == nil {
		return nil, fmt.Errorf("enclave attester is nil")
	}

	userDataBytes, err := json.Marshal(userData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user data: %w", err)
	}
	randomNonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate attestation nonce: %w", err)
	}

	attestationCBOR, err := attester.Attest(nitro.AttestationOptions{
		UserData: userDataBytes,
		Nonce:    []byte(randomNonce),
	})
	if err != nil {
		log.Printf("ERROR: Attestation failed: %v", err)
		return nil, fmt.Errorf("attestation failed: %w", err)
	}

	log.Printf("INFO: Attestation generated for run %s: %d bytes", userData.RunID, len(attestationCBOR))

	return enclaveapi.AttestationCOSE(attestationCBOR), nil
}
