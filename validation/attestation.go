package validation

import (
	"crypto/x509"
	"fmt"

	enclaveapi "github.com/cloudx-io/openbrace/enclaveapi"
)

// attestationTrust names what an attestation must chain to and measure as.
// Nil roots mean the AWS Nitro root CA; empty PCR sets mean the embedded defaults.
type attestationTrust struct {
	knownPCRs []PCRSet
	roots     *x509.CertPool
}

// validateCommonAttestation checks PCRs, the certificate chain at the attestation
// time, and the COSE signature
func validateCommonAttestation(attestationCOSEBase64 enclaveapi.AttestationCOSEBase64, trust attestationTrust) (*BaseValidationResult, error) {
	coseBytes, err := attestationCOSEBase64.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode COSE bytes: %w", err)
	}

	attestationDoc, _, err := coseBytes.ParseAttestationDoc()
	if err != nil {
		return nil, fmt.Errorf("parse attestation document: %w", err)
	}

	result := &BaseValidationResult{
		ValidationDetails: []string{},
	}

	knownPCRs := trust.knownPCRs
	if len(knownPCRs) == 0 {
		knownPCRs, err = DefaultPCRSets()
		if err != nil {
			return nil, fmt.Errorf("failed to load PCR configuration: %w", err)
		}
	}

	pcrMatch, matchedSet := ValidatePCRs(attestationDoc.PCRs, knownPCRs)
	result.PCRsValid = pcrMatch
	if len(knownPCRs) == 0 {
		result.ValidationDetails = append(result.ValidationDetails, "No known PCR sets configured")
	}
	if !pcrMatch {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("PCR0: %s (no match)", attestationDoc.PCRs.ImageFileHash))
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("PCR1: %s (no match)", attestationDoc.PCRs.KernelHash))
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("PCR2: %s (no match)", attestationDoc.PCRs.ApplicationHash))
	} else {
		result.ValidationDetails = append(result.ValidationDetails, "PCR measurements valid")
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Matched PCR set: #%d (commit: %s)",
			matchedSet, knownPCRs[matchedSet].CommitHash))
	}

	switch {
	case attestationDoc.Certificate == "":
		result.ValidationDetails = append(result.ValidationDetails, "Missing certificate")
	case len(attestationDoc.CABundle) == 0:
		result.ValidationDetails = append(result.ValidationDetails, "Missing CA bundle")
	default:
		err = ValidateCertificateChain(attestationDoc.Certificate, attestationDoc.CABundle, attestationDoc.Timestamp, trust.roots)
		if err != nil {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Certificate chain validation failed: %v", err))
		} else {
			result.CertificateValid = true
			result.ValidationDetails = append(result.ValidationDetails, "Certificate chain verified")
		}
	}

	if attestationDoc.Certificate == "" {
		result.ValidationDetails = append(result.ValidationDetails, "COSE signature not checked: no certificate")
		return result, nil
	}

	err = VerifyCOSESignature(attestationCOSEBase64, attestationDoc.Certificate)
	if err != nil {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("COSE signature verification failed: %v", err))
	} else {
		result.SignatureValid = true
		result.ValidationDetails = append(result.ValidationDetails, "COSE signature verified")
	}

	return result, nil
}
