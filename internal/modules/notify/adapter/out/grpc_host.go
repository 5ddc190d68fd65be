package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"focusd/internal/modules/notify/adapter/out/rpc"
	"focusd/internal/modules/notify/domain"
	notifyout "focusd/internal/modules/notify/port/out"
	reminderdomain "focusd/internal/modules/reminder/domain"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 60 * time.Second
)

type GRPCHost struct{}

func NewGRPCHost() notifyout.Host {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultStartTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultStartTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version}, nil
}

// Deliver blocks until the user answered the prompt or the call timed
// out; a timeout counts as no answer, not an error.
func (h *GRPCHost) Deliver(ctx context.Context, manifest domain.Manifest, prompt reminderdomain.Prompt) (reminderdomain.Answer, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return "", err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := client.Notify(callCtx, &rpc.NotifyRequest{
		Kind:             string(prompt.Kind),
		Message:          prompt.Message,
		PredictedMinutes: prompt.PredictedMin,
		Escalation:       int32(prompt.Escalation),
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return reminderdomain.AnswerNone, nil
		}
		return "", fmt.Errorf("deliver prompt: %w", err)
	}
	switch reminderdomain.Answer(response.Answer) {
	case reminderdomain.AnswerYes, reminderdomain.AnswerNo, reminderdomain.AnswerNone:
		return reminderdomain.Answer(response.Answer), nil
	default:
		return "", fmt.Errorf("notifier returned unknown answer %q", response.Answer)
	}
}

func (h *GRPCHost) connect(manifest domain.Manifest) (rpc.NotifierClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  rpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          rpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start notifier client: %w", err)
	}
	raw, err := rpcClient.Dispense(rpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense notifier: %w", err)
	}
	typed, ok := raw.(rpc.NotifierClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("notifier rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
