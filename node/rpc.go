package node

import (
	"net"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/zera-audit/zera-pipeline/api"
)

// ServeRPC exposes the pipeline surface over http jsonrpc on addr. It returns
// once the listener is bound; the returned server is the caller's to shut
// down.
func ServeRPC(pa api.PipelineAPI, addr string) (*http.Server, error) {
	rpcServer := jsonrpc.NewServer(jsonrpc.WithServerErrors(api.RPCErrors))
	rpcServer.Register("Pipeline", pa)

	mux := http.NewServeMux()
	mux.Handle("/rpc/v0", rpcServer)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("rpc server: %s", err)
		}
	}()

	log.Infow("rpc server listening", "addr", listener.Addr())
	return srv, nil
}
