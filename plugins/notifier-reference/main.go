package main

import (
	"context"

	"focusd/internal/modules/notify/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

// Reference notifier: deterministic answers for integration tests. It
// confirms procrastination nags and denies everything else.
type server struct{}

func (s *server) GetMetadata(context.Context, *rpc.Empty) (*rpc.Metadata, error) {
	return &rpc.Metadata{Name: "reference", Version: "1.0.0"}, nil
}

func (s *server) Notify(_ context.Context, in *rpc.NotifyRequest) (*rpc.NotifyResponse, error) {
	if in.Kind == "procrastination_nag" {
		return &rpc.NotifyResponse{Answer: "yes"}, nil
	}
	return &rpc.NotifyResponse{Answer: "no"}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: rpc.HandshakeConfig,
		Plugins:         rpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
