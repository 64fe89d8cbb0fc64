package enclave

import (
	"fmt"
	"log"
	"time"

	"github.com/cloudx-io/openbrace/core"
	"github.com/cloudx-io/openbrace/enclaveapi"
)

// ProcessAuction runs one auction request end to end.
// A nil attester skips attestation; any other failure yields an unsuccessful response.
func ProcessAuction(attester EnclaveAttester, req enclaveapi.AuctionRequest) enclaveapi.AuctionResponse {
	startTime := time.Now()
	log.Printf("INFO: Processing auction %s with %d agents and %d goods", req.AuctionID, len(req.Agents), len(req.Goods))

	agents, goods, err := req.ToCore()
	if err != nil {
		log.Printf("ERROR: Rejected auction %s: %v", req.AuctionID, err)
		resp := enclaveapi.NewFailureResponse(req.AuctionID, fmt.Sprintf("Invalid auction request: %v", err))
		resp.ProcessingTime = time.Since(startTime).Milliseconds()
		return resp
	}

	result := core.NewCombinatorialAuction(agents, goods, req.Epsilon).Run()
	resp := enclaveapi.NewAuctionResponse(&req, agents, result)

	log.Printf("INFO: Auction %s run %s: welfare=%.4f feasible=%t rational=%t efficient=%t",
		req.AuctionID, resp.RunID, resp.TotalWelfare,
		resp.IsFeasible, resp.IsIndividuallyRational, resp.IsOrdinalEfficient)

	if attester == nil {
		log.Printf("WARNING: No attester configured, auction %s result is unattested", req.AuctionID)
		resp.ProcessingTime = time.Since(startTime).Milliseconds()
		return resp
	}

	attestation, err := GenerateResultProofs(attester, req, resp)
	processingTime := time.Since(startTime).Milliseconds()
	if err != nil {
		log.Printf("ERROR: Attestation failed for auction %s: %v", req.AuctionID, err)
		failed := enclaveapi.NewFailureResponse(req.AuctionID, fmt.Sprintf("Enclave processing failed: %v", err))
		failed.ProcessingTime = processingTime
		return failed
	}

	resp.AttestationCOSEBase64 = attestation.EncodeBase64()
	resp.ProcessingTime = processingTime

	log.Printf("INFO: Auction %s complete: processing=%dms", req.AuctionID, processingTime)
	return resp
}
