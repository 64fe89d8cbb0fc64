package enclaveapi

import (
	"time"
)

// PCRs represents the Platform Configuration Registers from AWS Nitro Enclaves
type PCRs struct {
	// PCR0: Hash of the Enclave Image File (EIF)
	ImageFileHash string `json:"0"`

	// PCR1: Hash of the Linux kernel and initial RAM data (initramfs)
	KernelHash string `json:"1"`

	// PCR2: Hash of user applications, excluding the boot ramfs
	ApplicationHash string `json:"2"`

	// PCR3: Hash of the IAM role assigned to the parent instance
	IAMRoleHash string `json:"3"`

	// PCR4: Hash of the parent instance's ID
	InstanceIDHash string `json:"4"`

	// PCR8: Hash of the enclave image file's signing certificate
	SigningCertHash string `json:"8,omitempty"`
}

// AttestationDoc represents the structured attestation data from AWS Nitro Enclaves
type AttestationDoc struct {
	ModuleID string `json:"module_id"`

	Timestamp time.Time `json:"timestamp"`

	// Digest algorithm used (e.g., "SHA384")
	DigestAlgorithm string `json:"digest"`

	PCRs PCRs `json:"pcrs"`

	// Base64 DER certificate whose key signed the COSE envelope
	Certificate string `json:"certificate"`

	// Base64 DER intermediates, root first
	CABundle []string `json:"cabundle"`

	PublicKey string `json:"public_key"`

	Nonce string `json:"nonce"`
}

// AuctionAttestationDoc is an attestation document carrying auction result proofs
type AuctionAttestationDoc struct {
	AttestationDoc
	UserData *AuctionAttestationUserData `json:"user_data"`
}

// AuctionAttestationUserData is the result summary embedded in the attestation.
// Digests are salted with their own nonce so a verifier holding the request and
// response can recompute them.
type AuctionAttestationUserData struct {
	AuctionID              string    `json:"auction_id"`
	RunID                  string    `json:"run_id"`
	RequestHash            string    `json:"request_hash"`
	RequestNonce           string    `json:"request_nonce"`
	AllocationHash         string    `json:"allocation_hash"`
	AllocationNonce        string    `json:"allocation_nonce"`
	PricesHash             string    `json:"prices_hash"`
	PricesNonce            string    `json:"prices_nonce"`
	IsFeasible             bool      `json:"is_feasible"`
	IsIndividuallyRational bool      `json:"is_individually_rational"`
	IsOrdinalEfficient     bool      `json:"is_ordinal_efficient"`
	TotalWelfare           float64   `json:"total_welfare"`
	Timestamp              time.Time `json:"timestamp"`
}

// GoodSpec declares one indivisible good.
type GoodSpec struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// PreferenceSpec values one bundle of goods for an agent.
type PreferenceSpec struct {
	Bundle []string `json:"bundle" yaml:"bundle"`
	Value  float64  `json:"value" yaml:"value"`
}

// AgentSpec declares an agent, its endowment and its preference catalog.
// Preferences are registered in the listed order.
type AgentSpec struct {
	ID          string           `json:"id" yaml:"id"`
	Endowment   []string         `json:"endowment" yaml:"endowment"`
	Preferences []PreferenceSpec `json:"preferences" yaml:"preferences"`
}

// AuctionRequest is the input of one auction run
type AuctionRequest struct {
	Type      string      `json:"type" yaml:"type"`
	AuctionID string      `json:"auction_id" yaml:"auction_id"`
	Epsilon   float64     `json:"epsilon" yaml:"epsilon"`
	Goods     []GoodSpec  `json:"goods" yaml:"goods"`
	Agents    []AgentSpec `json:"agents" yaml:"agents"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
}

// AllocationEntry is the bundle assigned to one agent
type AllocationEntry struct {
	AgentID string   `json:"agent_id" cbor:"1,keyasint"`
	Goods   []string `json:"goods" cbor:"2,keyasint"`
}

// AuctionResponse is the output of one auction run
type AuctionResponse struct {
	Type                   string                `json:"type" cbor:"1,keyasint"`
	Success                bool                  `json:"success" cbor:"2,keyasint"`
	Message                string                `json:"message" cbor:"3,keyasint"`
	AuctionID              string                `json:"auction_id" cbor:"4,keyasint"`
	RunID                  string                `json:"run_id" cbor:"5,keyasint"`
	Allocation             []AllocationEntry     `json:"allocation" cbor:"6,keyasint"`
	Prices                 map[string]float64    `json:"prices" cbor:"7,keyasint"`
	TotalWelfare           float64               `json:"total_welfare" cbor:"8,keyasint"`
	IsFeasible             bool                  `json:"is_feasible" cbor:"9,keyasint"`
	IsIndividuallyRational bool                  `json:"is_individually_rational" cbor:"10,keyasint"`
	IsOrdinalEfficient     bool                  `json:"is_ordinal_efficient" cbor:"11,keyasint"`
	AttestationCOSEBase64  AttestationCOSEBase64 `json:"attestation_cose_base64,omitempty" cbor:"12,keyasint,omitempty"`
	ProcessingTime         int64                 `json:"processing_time_ms" cbor:"13,keyasint"`
}

const (
	RequestType  = "auction_request"
	ResponseType = "auction_response"
)
