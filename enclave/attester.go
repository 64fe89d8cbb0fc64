package enclave

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"log"
	"math/big"
	"time"

	nitro "github.com/edgebitio/nitro-enclaves-sdk-go"
	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/openbrace/enclaveapi/parsing"
)

// EnclaveAttester interface for dependency injection and testing
type EnclaveAttester interface {
	Attest(options nitro.AttestationOptions) ([]byte, error)
}

// NSMAttester returns the Nitro Secure Module handle. Fails outside an enclave.
func NSMAttester() (EnclaveAttester, error) {
	handle, err := nitro.GetOrInitializeHandle()
	if err != nil {
		return nil, fmt.Errorf("NSM not available: %w", err)
	}
	return handle, nil
}

const (
	localModuleID = "openbrace-local"

	// pcrLength is the size of a SHA-384 measurement
	pcrLength = 48

	localCertValidity = 24 * time.Hour
)

// LocalAttester produces Nitro-shaped attestations outside an enclave.
// PCRs are all zero, as in a debug-mode enclave, and the certificate chain
// ends in an ephemeral root that only Roots() vouches for.
type LocalAttester struct {
	root   *x509.Certificate
	leaf   *x509.Certificate
	signer cose.Signer
	now    func() time.Time
}

// NewLocalAttester creates a fresh P-384 root and signing certificate.
func NewLocalAttester() (*LocalAttester, error) {
	now := time.Now()

	rootKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate root key: %w", err)
	}
	rootTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: localModuleID + "-root"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(localCertValidity),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey)
	if err != nil {
		return nil, fmt.Errorf("create root certificate: %w", err)
	}
	root, err := x509.ParseCertificate(rootDER)
	if err != nil {
		return nil, fmt.Errorf("parse root certificate: %w", err)
	}

	leafKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: localModuleID},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(localCertValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, root, &leafKey.PublicKey, rootKey)
	if err != nil {
		return nil, fmt.Errorf("create signing certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, fmt.Errorf("parse signing certificate: %w", err)
	}

	signer, err := cose.NewSigner(cose.AlgorithmES384, leafKey)
	if err != nil {
		return nil, fmt.Errorf("create COSE signer: %w", err)
	}

	log.Printf("INFO: Local attester initialized (module %s, valid until %s)", localModuleID, leaf.NotAfter.Format(time.RFC3339))

	return &LocalAttester{
		root:   root,
		leaf:   leaf,
		signer: signer,
		now:    time.Now,
	}, nil
}

// Roots returns a pool holding only the attester's root certificate
func (a *LocalAttester) Roots() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(a.root)
	return pool
}

// Attest signs a Nitro-shaped attestation document as an untagged COSE_Sign1 array
func (a *LocalAttester) Attest(options nitro.AttestationOptions) ([]byte, error) {
	pcrs := make(map[uint64][]byte, 5)
	for i := uint64(0); i <= 4; i++ {
		pcrs[i] = make([]byte, pcrLength)
	}

	doc := parsing.NitroAttestationDocument{
		ModuleID:    localModuleID,
		Digest:      "SHA384",
		Timestamp:   uint64(a.now().UnixMilli()),
		PCRs:        pcrs,
		Certificate: a.leaf.Raw,
		CABundle:    [][]byte{a.root.Raw},
		UserData:    options.UserData,
		Nonce:       options.Nonce,
	}
	payload, err := cbor.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal attestation document: %w", err)
	}

	protected, err := cbor.Marshal(map[int64]int64{
		1: int64(cose.AlgorithmES384),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal protected header: %w", err)
	}

	toBeSigned, err := parsing.SigStructure(protected, payload)
	if err != nil {
		return nil, err
	}
	signature, err := a.signer.Sign(rand.Reader, toBeSigned)
	if err != nil {
		return nil, fmt.Errorf("sign attestation: %w", err)
	}

	return cbor.Marshal([]any{
		protected,
		map[any]any{},
		payload,
		signature,
	})
}
