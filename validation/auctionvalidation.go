package validation

import (
	"crypto/x509"
	"fmt"

	"github.com/cloudx-io/openbrace/core"
	enclaveapi "github.com/cloudx-io/openbrace/enclaveapi"
)

// AuctionValidationInput contains all inputs needed for auction attestation validation
type AuctionValidationInput struct {
	AttestationCOSEGzip enclaveapi.AttestationCOSEGzip // Optional; defaults to the response's attestation_cose_base64
	Request             *enclaveapi.AuctionRequest
	Response            *enclaveapi.AuctionResponse
	KnownPCRs           []PCRSet       // Empty means the embedded pcrs.json
	Roots               *x509.CertPool // Nil means the AWS Nitro root CA
}

// ValidateAuctionAttestation validates an auction attestation and verifies:
// - The request hash matches the supplied request
// - The allocation and prices hashes match the supplied response
// - The attested run, property flags and welfare match the response
//
// Returns:
//   - AuctionValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if validation cannot be performed (e.g., malformed input, missing attestation)
func ValidateAuctionAttestation(input *AuctionValidationInput) (*AuctionValidationResult, error) {
	if input == nil || input.Request == nil || input.Response == nil {
		return nil, fmt.Errorf("request and response are required")
	}

	attestationCOSEBase64, err := resolveAttestation(input)
	if err != nil {
		return nil, err
	}

	baseResult, err := validateCommonAttestation(attestationCOSEBase64, attestationTrust{
		knownPCRs: input.KnownPCRs,
		roots:     input.Roots,
	})
	if err != nil {
		return nil, err
	}

	coseBytes, err := attestationCOSEBase64.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode COSE bytes: %w", err)
	}
	auctionAttestation, err := coseBytes.ParseAuctionAttestation()
	if err != nil {
		return nil, fmt.Errorf("failed to parse auction attestation: %w", err)
	}

	result := &AuctionValidationResult{
		BaseValidationResult: *baseResult,
	}

	if auctionAttestation.UserData == nil {
		result.ValidationDetails = append(result.ValidationDetails, "Attestation user data missing")
		return result, nil
	}

	agents, goods, err := input.Request.ToCore()
	if err != nil {
		return nil, fmt.Errorf("convert request: %w", err)
	}
	allocation, err := input.Response.CoreAllocation(goods)
	if err != nil {
		return nil, fmt.Errorf("rebuild claimed allocation: %w", err)
	}

	result.RequestHashValid = validateRequestHash(input.Request, agents, goods, auctionAttestation, result)
	result.AllocationHashValid = validateAllocationHash(allocation, auctionAttestation, result)
	result.PricesHashValid = validatePricesHash(input.Response, auctionAttestation, result)
	result.ClaimsValid = validateAttestedClaims(input.Response, auctionAttestation, result)

	return result, nil
}

func resolveAttestation(input *AuctionValidationInput) (enclaveapi.AttestationCOSEBase64, error) {
	if input.AttestationCOSEGzip != "" {
		attestationCOSE, err := input.AttestationCOSEGzip.Decompress()
		if err != nil {
			return "", fmt.Errorf("decompress attestation: %w", err)
		}
		return attestationCOSE.EncodeBase64(), nil
	}
	if input.Response.AttestationCOSEBase64 == "" {
		return "", fmt.Errorf("response %s carries no attestation", input.Response.RunID)
	}
	return input.Response.AttestationCOSEBase64, nil
}

func validateRequestHash(req *enclaveapi.AuctionRequest, agents []*core.Agent, goods []core.Good, attestation *enclaveapi.AuctionAttestationDoc, result *AuctionValidationResult) bool {
	nonce := attestation.UserData.RequestNonce
	if nonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Request nonce missing from attestation")
		return false
	}

	computedHash := core.ComputeRequestHash(req.AuctionID, req.Epsilon, agents, goods, nonce)
	if computedHash == attestation.UserData.RequestHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Request hash validation passed: %s", computedHash))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Request hash mismatch: computed %s, attestation has %s", computedHash, attestation.UserData.RequestHash))
	return false
}

func validateAllocationHash(allocation *core.Allocation, attestation *enclaveapi.AuctionAttestationDoc, result *AuctionValidationResult) bool {
	nonce := attestation.UserData.AllocationNonce
	if nonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Allocation nonce missing from attestation")
		return false
	}

	computedHash := core.ComputeAllocationHash(allocation, nonce)
	if computedHash == attestation.UserData.AllocationHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Allocation hash validation passed: %s", computedHash))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Allocation hash mismatch: computed %s, attestation has %s", computedHash, attestation.UserData.AllocationHash))
	return false
}

func validatePricesHash(resp *enclaveapi.AuctionResponse, attestation *enclaveapi.AuctionAttestationDoc, result *AuctionValidationResult) bool {
	nonce := attestation.UserData.PricesNonce
	if nonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Prices nonce missing from attestation")
		return false
	}

	computedHash := core.ComputePricesHash(resp.Prices, nonce)
	if computedHash == attestation.UserData.PricesHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Prices hash validation passed: %s", computedHash))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Prices hash mismatch: computed %s, attestation has %s", computedHash, attestation.UserData.PricesHash))
	return false
}

func validateAttestedClaims(resp *enclaveapi.AuctionResponse, attestation *enclaveapi.AuctionAttestationDoc, result *AuctionValidationResult) bool {
	userData := attestation.UserData
	valid := true

	if userData.AuctionID != resp.AuctionID || userData.RunID != resp.RunID {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Run mismatch: attestation is for %s/%s, response is %s/%s",
			userData.AuctionID, userData.RunID, resp.AuctionID, resp.RunID))
		valid = false
	}

	if userData.IsFeasible != resp.IsFeasible ||
		userData.IsIndividuallyRational != resp.IsIndividuallyRational ||
		userData.IsOrdinalEfficient != resp.IsOrdinalEfficient {
		result.ValidationDetails = append(result.ValidationDetails, "Property flags differ between attestation and response")
		valid = false
	}

	if !core.AmountsMatch(userData.TotalWelfare, resp.TotalWelfare) {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Welfare mismatch: attestation has %.4f, response has %.4f",
			userData.TotalWelfare, resp.TotalWelfare))
		valid = false
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, "Attested run, property flags and welfare match the response")
	}
	return valid
}
