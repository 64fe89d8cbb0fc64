package parsing

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// COSESign1 holds the four members of an untagged COSE_Sign1 array:
// [protected, unprotected, payload, signature]
type COSESign1 struct {
	Protected []byte
	Payload   []byte
	Signature []byte
}

// DecodeCOSESign1 splits an untagged COSE_Sign1 4-element array.
// The unprotected header map is not returned.
func DecodeCOSESign1(coseBytes []byte) (*COSESign1, error) {
	var coseArray []any
	err := cbor.Unmarshal(coseBytes, &coseArray)
	if err != nil {
		return nil, fmt.Errorf("parse COSE array: %w", err)
	}

	if len(coseArray) != 4 {
		return nil, fmt.Errorf("invalid COSE_Sign1 structure: expected 4 elements, got %d", len(coseArray))
	}

	protected, ok := coseArray[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid protected headers in COSE structure")
	}

	payload, ok := coseArray[2].([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid payload in COSE structure")
	}

	signature, ok := coseArray[3].([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid signature in COSE structure")
	}

	return &COSESign1{Protected: protected, Payload: payload, Signature: signature}, nil
}

// ExtractCOSEPayload returns the payload (element 2) of a COSE_Sign1 array
func ExtractCOSEPayload(coseBytes []byte) ([]byte, error) {
	sign1, err := DecodeCOSESign1(coseBytes)
	if err != nil {
		return nil, err
	}
	return sign1.Payload, nil
}

// SigStructure builds the COSE_Sign1 Sig_structure with empty external_aad:
// ["Signature1", protected, external_aad, payload]
func SigStructure(protected, payload []byte) ([]byte, error) {
	sigStructure := []any{
		"Signature1",
		protected,
		[]byte{},
		payload,
	}

	data, err := cbor.Marshal(sigStructure)
	if err != nil {
		return nil, fmt.Errorf("marshal Sig_structure: %w", err)
	}
	return data, nil
}
