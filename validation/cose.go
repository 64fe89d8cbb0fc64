package validation

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/veraison/go-cose"

	enclaveapi "github.com/cloudx-io/openbrace/enclaveapi"
	"github.com/cloudx-io/openbrace/enclaveapi/parsing"
)

// VerifyCOSESignature verifies a COSE_Sign1 signature given base64-encoded COSE bytes and certificate
func VerifyCOSESignature(coseB64 enclaveapi.AttestationCOSEBase64, certB64 string) error {
	coseBytes, err := coseB64.Decode()
	if err != nil {
		return fmt.Errorf("decode COSE bytes: %w", err)
	}

	certDER, err := base64.StdEncoding.DecodeString(certB64)
	if err != nil {
		return fmt.Errorf("decode certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return fmt.Errorf("parse certificate: %w", err)
	}

	// Nitro attestations are untagged COSE_Sign1 arrays, parsed by hand
	sign1, err := parsing.DecodeCOSESign1(coseBytes)
	if err != nil {
		return err
	}

	// ES384 (ECDSA P-384 with SHA-384)
	ecdsaKey, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("certificate public key is not ECDSA")
	}

	sigStructureBytes, err := parsing.SigStructure(sign1.Protected, sign1.Payload)
	if err != nil {
		return err
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES384, ecdsaKey)
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}

	err = verifier.Verify(sigStructureBytes, sign1.Signature)
	if err != nil {
		return fmt.Errorf("COSE signature verification failed: %w", err)
	}

	return nil
}
