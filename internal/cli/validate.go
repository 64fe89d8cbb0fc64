package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudx-io/openbrace/enclaveapi"
	"github.com/cloudx-io/openbrace/validation"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Attestation bool
	PCRsPath    string
}

// ValidationReport is the JSON payload of the validate command.
type ValidationReport struct {
	Valid       bool               `json:"valid"`
	Properties  *PropertiesReport  `json:"properties"`
	Attestation *AttestationReport `json:"attestation,omitempty"`
}

// PropertiesReport mirrors validation.PropertyValidationResult.
type PropertiesReport struct {
	Valid                 bool     `json:"valid"`
	Coverage              bool     `json:"coverage_valid"`
	Reproduced            bool     `json:"reproduced_valid"`
	Feasibility           bool     `json:"feasibility_valid"`
	IndividualRationality bool     `json:"individual_rationality_valid"`
	OrdinalEfficiency     bool     `json:"ordinal_efficiency_valid"`
	Welfare               bool     `json:"welfare_valid"`
	Prices                bool     `json:"prices_valid"`
	Claims                bool     `json:"claims_consistent"`
	Details               []string `json:"details"`
}

// AttestationReport mirrors validation.AuctionValidationResult.
type AttestationReport struct {
	Valid          bool     `json:"valid"`
	PCRs           bool     `json:"pcrs_valid"`
	Certificate    bool     `json:"certificate_valid"`
	Signature      bool     `json:"signature_valid"`
	RequestHash    bool     `json:"request_hash_valid"`
	AllocationHash bool     `json:"allocation_hash_valid"`
	PricesHash     bool     `json:"prices_hash_valid"`
	Claims         bool     `json:"claims_valid"`
	Details        []string `json:"details"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <request> <response>",
		Short: "Validate a claimed auction result",
		Long: `Re-derive coverage, the allocation, feasibility, individual rationality,
ordinal efficiency, welfare and prices of a response from its request.

With --attestation the response's Nitro attestation is also checked against
the AWS Nitro root CA and the known PCR measurements.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Attestation, "attestation", false, "also validate the response's attestation")
	cmd.Flags().StringVar(&opts.PCRsPath, "pcrs", "", "known PCR sets JSON (defaults to the embedded pcrs.json)")

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *ValidateOptions, requestPath, responsePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	req, err := enclaveapi.LoadAuctionRequest(requestPath)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidInput, "load request", err)
	}
	resp, err := enclaveapi.LoadAuctionResponse(responsePath)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidInput, "load response", err)
	}

	input, err := validation.NewResultValidationInput(req, resp)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidInput, "invalid request", err)
	}
	properties, err := validation.ValidateAuctionResult(input)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidInput, "validate result", err)
	}
	formatter.VerboseLog("Property checks complete for auction %s run %s", resp.AuctionID, resp.RunID)

	report := &ValidationReport{Properties: newPropertiesReport(properties)}
	report.Valid = properties.IsValid()

	if opts.Attestation {
		attestation, err := validateAttestation(opts, req, resp)
		if err != nil {
			return formatter.Fail(ErrCodeAttestation, "validate attestation", err)
		}
		formatter.VerboseLog("Attestation checks complete for run %s", resp.RunID)
		report.Attestation = newAttestationReport(attestation)
		report.Valid = report.Valid && attestation.IsValid()
	}

	if formatter.Format == "json" {
		status := "ok"
		if !report.Valid {
			status = "invalid"
		}
		if err := formatter.encodeJSON(CLIResponse{Status: status, Data: report}); err != nil {
			return formatter.Fail(ErrCodeOutput, "encode report", err)
		}
	} else {
		outputReportText(formatter, report)
	}

	if !report.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for run %s", resp.RunID))
	}
	return nil
}

func validateAttestation(opts *ValidateOptions, req *enclaveapi.AuctionRequest, resp *enclaveapi.AuctionResponse) (*validation.AuctionValidationResult, error) {
	var knownPCRs []validation.PCRSet
	if opts.PCRsPath != "" {
		sets, err := validation.LoadPCRsFromFile(opts.PCRsPath)
		if err != nil {
			return nil, err
		}
		knownPCRs = sets
	}

	return validation.ValidateAuctionAttestation(&validation.AuctionValidationInput{
		Request:   req,
		Response:  resp,
		KnownPCRs: knownPCRs,
	})
}

func newPropertiesReport(result *validation.PropertyValidationResult) *PropertiesReport {
	return &PropertiesReport{
		Valid:                 result.IsValid(),
		Coverage:              result.CoverageValid,
		Reproduced:            result.ReproducedValid,
		Feasibility:           result.FeasibilityValid,
		IndividualRationality: result.IndividuallyRationalValid,
		OrdinalEfficiency:     result.OrdinalEfficiencyValid,
		Welfare:               result.WelfareValid,
		Prices:                result.PricesValid,
		Claims:                result.ClaimsConsistent,
		Details:               result.ValidationDetails,
	}
}

func newAttestationReport(result *validation.AuctionValidationResult) *AttestationReport {
	return &AttestationReport{
		Valid:          result.IsValid(),
		PCRs:           result.PCRsValid,
		Certificate:    result.CertificateValid,
		Signature:      result.SignatureValid,
		RequestHash:    result.RequestHashValid,
		AllocationHash: result.AllocationHashValid,
		PricesHash:     result.PricesHashValid,
		Claims:         result.ClaimsValid,
		Details:        result.ValidationDetails,
	}
}

func outputReportText(formatter *OutputFormatter, report *ValidationReport) {
	w := formatter.Writer

	fmt.Fprintln(w, "BRACE Result Validator")
	fmt.Fprintln(w, "======================")
	fmt.Fprintln(w)

	p := report.Properties
	fmt.Fprintln(w, "Properties:")
	fmt.Fprintf(w, "  Coverage Valid:          %v\n", p.Coverage)
	fmt.Fprintf(w, "  Reproduced:              %v\n", p.Reproduced)
	fmt.Fprintf(w, "  Feasible:                %v\n", p.Feasibility)
	fmt.Fprintf(w, "  Individually Rational:   %v\n", p.IndividualRationality)
	fmt.Fprintf(w, "  Ordinal Efficient:       %v\n", p.OrdinalEfficiency)
	fmt.Fprintf(w, "  Welfare Valid:           %v\n", p.Welfare)
	fmt.Fprintf(w, "  Prices Valid:            %v\n", p.Prices)
	fmt.Fprintf(w, "  Claims Consistent:       %v\n", p.Claims)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Details:")
	for _, detail := range p.Details {
		fmt.Fprintf(w, "  - %s\n", detail)
	}

	if a := report.Attestation; a != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Attestation:")
		fmt.Fprintf(w, "  PCRs Valid:              %v\n", a.PCRs)
		fmt.Fprintf(w, "  Certificate Valid:       %v\n", a.Certificate)
		fmt.Fprintf(w, "  Signature Valid:         %v\n", a.Signature)
		fmt.Fprintf(w, "  Request Hash Valid:      %v\n", a.RequestHash)
		fmt.Fprintf(w, "  Allocation Hash Valid:   %v\n", a.AllocationHash)
		fmt.Fprintf(w, "  Prices Hash Valid:       %v\n", a.PricesHash)
		fmt.Fprintf(w, "  Claims Valid:            %v\n", a.Claims)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Details:")
		for _, detail := range a.Details {
			fmt.Fprintf(w, "  - %s\n", detail)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "======================")
	if report.Valid {
		fmt.Fprintln(w, "VALIDATION: ✓ PASSED")
	} else {
		fmt.Fprintln(w, "VALIDATION: ✗ FAILED")
	}
}
