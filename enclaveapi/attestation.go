package enclaveapi

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudx-io/openbrace/enclaveapi/parsing"
)

// AttestationCOSE is a raw COSE_Sign1 attestation as returned by the attester
type AttestationCOSE []byte

// AttestationCOSEBase64 is AttestationCOSE in standard base64, as carried in JSON responses
type AttestationCOSEBase64 string

// AttestationCOSEURLBase64 is AttestationCOSE in unpadded URL-safe base64
type AttestationCOSEURLBase64 string

// AttestationCOSEGzip is gzip-compressed AttestationCOSE in unpadded URL-safe base64
type AttestationCOSEGzip string

// EncodeBase64 encodes the COSE bytes as standard base64
func (a AttestationCOSE) EncodeBase64() AttestationCOSEBase64 {
	return AttestationCOSEBase64(base64.StdEncoding.EncodeToString(a))
}

// EncodeURLSafe encodes the COSE bytes as unpadded URL-safe base64
func (a AttestationCOSE) EncodeURLSafe() AttestationCOSEURLBase64 {
	return AttestationCOSEURLBase64(base64.RawURLEncoding.EncodeToString(a))
}

// CompressGzip gzips the COSE bytes and encodes them URL-safe.
// The gzip header carries no timestamp, so equal input gives equal output.
func (a AttestationCOSE) CompressGzip() (AttestationCOSEGzip, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(a); err != nil {
		return "", fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gzip close: %w", err)
	}
	return AttestationCOSEGzip(base64.RawURLEncoding.EncodeToString(buf.Bytes())), nil
}

// ParseAttestationDoc extracts the Nitro document from the COSE_Sign1 payload.
// Returns the structured document and the raw user data bytes.
func (a AttestationCOSE) ParseAttestationDoc() (AttestationDoc, []byte, error) {
	payload, err := parsing.ExtractCOSEPayload(a)
	if err != nil {
		return AttestationDoc{}, nil, fmt.Errorf("extract COSE payload: %w", err)
	}

	raw, err := parsing.DecodeNitroDocument(payload)
	if err != nil {
		return AttestationDoc{}, nil, err
	}

	pcrs := parsing.ExtractPCRs(raw.PCRs)
	doc := AttestationDoc{
		ModuleID:        raw.ModuleID,
		Timestamp:       time.UnixMilli(int64(raw.Timestamp)).UTC(),
		DigestAlgorithm: raw.Digest,
		PCRs: PCRs{
			ImageFileHash:   pcrs[0],
			KernelHash:      pcrs[1],
			ApplicationHash: pcrs[2],
			IAMRoleHash:     pcrs[3],
			InstanceIDHash:  pcrs[4],
			SigningCertHash: pcrs[8],
		},
		Certificate: base64.StdEncoding.EncodeToString(raw.Certificate),
		CABundle:    parsing.EncodeCertificateBundle(raw.CABundle),
		PublicKey:   base64.StdEncoding.EncodeToString(raw.PublicKey),
		Nonce:       hex.EncodeToString(raw.Nonce),
	}

	return doc, raw.UserData, nil
}

// ParseAuctionAttestation parses the document and decodes its auction user data
func (a AttestationCOSE) ParseAuctionAttestation() (*AuctionAttestationDoc, error) {
	doc, userDataBytes, err := a.ParseAttestationDoc()
	if err != nil {
		return nil, err
	}

	result := &AuctionAttestationDoc{AttestationDoc: doc}
	if len(userDataBytes) == 0 {
		return result, nil
	}

	var userData AuctionAttestationUserData
	if err := json.Unmarshal(userDataBytes, &userData); err != nil {
		return nil, fmt.Errorf("parse user data: %w", err)
	}
	result.UserData = &userData
	return result, nil
}

// Decode decodes standard base64 into raw COSE bytes
func (b AttestationCOSEBase64) Decode() (AttestationCOSE, error) {
	data, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, fmt.Errorf("decode COSE base64: %w", err)
	}
	return AttestationCOSE(data), nil
}

// CompressGzip decodes and re-encodes as gzip URL-safe base64
func (b AttestationCOSEBase64) CompressGzip() (AttestationCOSEGzip, error) {
	coseBytes, err := b.Decode()
	if err != nil {
		return "", err
	}
	return coseBytes.CompressGzip()
}

// Decode decodes URL-safe base64, restoring any stripped padding
func (u AttestationCOSEURLBase64) Decode() (AttestationCOSE, error) {
	s := string(u)
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode COSE base64url: %w", err)
	}
	return AttestationCOSE(data), nil
}

func (u AttestationCOSEURLBase64) String() string {
	return string(u)
}

// Decompress decodes and gunzips into raw COSE bytes
func (g AttestationCOSEGzip) Decompress() (AttestationCOSE, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(string(g))
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read gzip data: %w", err)
	}
	return AttestationCOSE(data), nil
}

func (g AttestationCOSEGzip) String() string {
	return string(g)
}
