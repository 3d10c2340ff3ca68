// Package client builds jsonrpc clients for the collaborator services and the
// pipeline daemon itself.
package client

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/api/apistruct"
)

// NewPaymentsRPC creates a new http jsonrpc client for the payments ledger.
func NewPaymentsRPC(ctx context.Context, addr string, requestHeader http.Header) (api.PaymentsAPI, jsonrpc.ClientCloser, error) {
	var res apistruct.PaymentsStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Payments",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
		jsonrpc.WithErrors(api.RPCErrors),
	)

	return &res, closer, err
}

// NewRegistryRPC creates a new http jsonrpc client for the provider registry.
func NewRegistryRPC(ctx context.Context, addr string, requestHeader http.Header) (api.RegistryAPI, jsonrpc.ClientCloser, error) {
	var res apistruct.RegistryStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Registry",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
		jsonrpc.WithErrors(api.RPCErrors),
	)

	return &res, closer, err
}

// NewTransferRPC creates a new http jsonrpc client for the storage transfer
// service.
func NewTransferRPC(ctx context.Context, addr string, requestHeader http.Header) (api.TransferAPI, jsonrpc.ClientCloser, error) {
	var res apistruct.TransferStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Transfer",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
		jsonrpc.WithErrors(api.RPCErrors),
	)

	return &res, closer, err
}

// NewChainRPC creates a new http jsonrpc client for the signer-facing chain
// service.
func NewChainRPC(ctx context.Context, addr string, requestHeader http.Header) (api.ChainAPI, jsonrpc.ClientCloser, error) {
	var res apistruct.ChainStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Chain",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
		jsonrpc.WithErrors(api.RPCErrors),
	)

	return &res, closer, err
}

// NewPipelineRPC creates a new http jsonrpc client for a running pipeline
// daemon.
func NewPipelineRPC(ctx context.Context, addr string, requestHeader http.Header) (api.PipelineAPI, jsonrpc.ClientCloser, error) {
	var res apistruct.PipelineStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Pipeline",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
		jsonrpc.WithErrors(api.RPCErrors),
	)

	return &res, closer, err
}
