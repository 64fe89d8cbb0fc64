package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudx-io/openbrace/enclave"
	"github.com/cloudx-io/openbrace/enclaveapi"
)

// DefaultEpsilonEnv supplies epsilon for requests that leave it unset (zero).
const DefaultEpsilonEnv = "BRACE_DEFAULT_EPSILON"

// Attestation modes accepted by run --attest.
const (
	AttestNone  = "none"
	AttestLocal = "local"
	AttestNSM   = "nsm"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Epsilon float64
	Attest  string
	Out     string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <request>",
		Short: "Run an auction request",
		Long: `Run the BRACE mechanism over an auction request (YAML or JSON) and print
the allocation, prices, welfare and property flags.

Epsilon comes from --epsilon, then the request, then ` + DefaultEpsilonEnv + `
when the request leaves it at zero.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuction(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Epsilon, "epsilon", 0, "override the request's epsilon")
	cmd.Flags().StringVar(&opts.Attest, "attest", AttestNone, "attestation source (none|local|nsm)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the response to a file (.cbor for CBOR, JSON otherwise)")

	return cmd
}

func runAuction(rootOpts *RootOptions, opts *RunOptions, requestPath string, cmd *cobra.Command) error {
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

	epsilon, err := resolveEpsilon(cmd.Flags().Changed("epsilon"), opts.Epsilon, req.Epsilon)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidInput, "resolve epsilon", err)
	}
	req.Epsilon = epsilon

	if _, _, err := req.ToCore(); err != nil {
		return formatter.Fail(ErrCodeInvalidInput, "invalid request", err)
	}

	attester, err := newAttester(opts.Attest)
	if err != nil {
		return formatter.Fail(ErrCodeAttestation, "attester unavailable", err)
	}

	formatter.VerboseLog("Running auction %s: %d agents, %d goods, epsilon=%g, attest=%s",
		req.AuctionID, len(req.Agents), len(req.Goods), req.Epsilon, opts.Attest)

	resp := enclave.ProcessAuction(attester, *req)
	if !resp.Success {
		return formatter.Fail(ErrCodeAttestation, "auction failed", fmt.Errorf("%s", resp.Message))
	}

	if opts.Out != "" {
		if err := writeResponse(opts.Out, &resp); err != nil {
			return formatter.Fail(ErrCodeOutput, "write response", err)
		}
		formatter.VerboseLog("Response written to %s", opts.Out)
	}

	if formatter.Format == "json" {
		return formatter.encodeJSON(CLIResponse{Status: "ok", Data: resp})
	}
	outputResponseText(formatter, &resp)
	return nil
}

// resolveEpsilon picks the flag value when set, else the request value,
// else the environment default when the request value is zero.
func resolveEpsilon(flagSet bool, flagValue, requestValue float64) (float64, error) {
	if flagSet {
		return flagValue, nil
	}
	if requestValue != 0 {
		return requestValue, nil
	}

	envValue, ok, err := getOptionalEnvFloat(DefaultEpsilonEnv)
	if err != nil {
		return 0, err
	}
	if ok {
		return envValue, nil
	}
	return requestValue, nil
}

// Helper function for optional environment variable parsing
func getOptionalEnvFloat(key string) (float64, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid value for %s: %s (must be a valid number)", key, value)
	}

	log.Printf("INFO: Using %s=%g from environment", key, floatValue)
	return floatValue, true, nil
}

func newAttester(mode string) (enclave.EnclaveAttester, error) {
	switch mode {
	case AttestNone:
		return nil, nil
	case AttestLocal:
		attester, err := enclave.NewLocalAttester()
		if err != nil {
			return nil, err
		}
		return attester, nil
	case AttestNSM:
		return enclave.NSMAttester()
	default:
		return nil, fmt.Errorf("unknown attestation mode %q: must be one of none, local, nsm", mode)
	}
}

func writeResponse(path string, resp *enclaveapi.AuctionResponse) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		data, err = enclaveapi.EncodeResponseCBOR(resp)
	} else {
		data, err = json.MarshalIndent(resp, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func outputResponseText(formatter *OutputFormatter, resp *enclaveapi.AuctionResponse) {
	w := formatter.Writer

	fmt.Fprintln(w, "BRACE Auction Result")
	fmt.Fprintln(w, "====================")
	fmt.Fprintf(w, "Auction: %s\n", resp.AuctionID)
	fmt.Fprintf(w, "Run:     %s\n", resp.RunID)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Allocation:")
	for _, entry := range resp.Allocation {
		fmt.Fprintf(w, "  %s: {%s}\n", entry.AgentID, strings.Join(entry.Goods, ","))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prices:")
	goodIDs := make([]string, 0, len(resp.Prices))
	for goodID := range resp.Prices {
		goodIDs = append(goodIDs, goodID)
	}
	sort.Strings(goodIDs)
	for _, goodID := range goodIDs {
		fmt.Fprintf(w, "  %s: %.4f\n", goodID, resp.Prices[goodID])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Total Welfare:           %.4f\n", resp.TotalWelfare)
	fmt.Fprintf(w, "  Feasible:                %v\n", resp.IsFeasible)
	fmt.Fprintf(w, "  Individually Rational:   %v\n", resp.IsIndividuallyRational)
	fmt.Fprintf(w, "  Ordinal Efficient:       %v\n", resp.IsOrdinalEfficient)
	fmt.Fprintf(w, "  Attested:                %v\n", resp.AttestationCOSEBase64 != "")
	fmt.Fprintf(w, "  Processing Time:         %dms\n", resp.ProcessingTime)
}
