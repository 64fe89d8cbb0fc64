package validation

// BaseValidationResult contains the checks common to every attestation
type BaseValidationResult struct {
	PCRsValid         bool
	CertificateValid  bool
	SignatureValid    bool
	ValidationDetails []string
}

// AuctionValidationResult contains validation results specific to auction attestations
type AuctionValidationResult struct {
	BaseValidationResult
	RequestHashValid    bool
	AllocationHashValid bool
	PricesHashValid     bool
	ClaimsValid         bool
}

// IsValid returns true if all auction validation checks passed
func (r *AuctionValidationResult) IsValid() bool {
	return r.PCRsValid && r.CertificateValid && r.SignatureValid &&
		r.RequestHashValid && r.AllocationHashValid && r.PricesHashValid && r.ClaimsValid
}

// PropertyValidationResult is the outcome of re-deriving a result from its request
type PropertyValidationResult struct {
	CoverageValid             bool
	ReproducedValid           bool
	FeasibilityValid          bool
	IndividuallyRationalValid bool
	OrdinalEfficiencyValid    bool
	WelfareValid              bool
	PricesValid               bool
	ClaimsConsistent          bool
	ValidationDetails         []string
}

// IsValid returns true if all property checks passed
func (r *PropertyValidationResult) IsValid() bool {
	return r.CoverageValid && r.ReproducedValid && r.FeasibilityValid && r.IndividuallyRationalValid &&
		r.OrdinalEfficiencyValid && r.WelfareValid && r.PricesValid && r.ClaimsConsistent
}

// PCRSet represents a known-good set of PCR measurements
type PCRSet struct {
	PCR0       string `json:"pcr0"`
	PCR1       string `json:"pcr1"`
	PCR2       string `json:"pcr2"`
	CommitHash string `json:"commit_hash"` // openbrace commit used to build the enclave image
}

// PCRConfig represents the PCR configuration file structure
type PCRConfig struct {
	PCRSets []PCRSet `json:"pcr_sets"`
}
