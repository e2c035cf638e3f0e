package llmwire

import (
	"context"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/llmwire/llmwire/internal/registry"
	"github.com/llmwire/llmwire/provider"
	"github.com/llmwire/llmwire/provider/openai"
)

// DefaultProvider is assumed when a Model carries an empty provider field.
const DefaultProvider = "openai"

var providers = registry.New[provider.Provider]()

// Register makes a provider implementation available under the given
// name. Registering a name twice replaces the earlier implementation.
func Register(name string, p provider.Provider) {
	providers.Add(name, p)
}

// GetModel builds a model selector. Pure constructor: nothing is
// validated, invalid combinations surface as provider-call failures.
func GetModel(providerName, name string) provider.Model {
	return provider.GetModel(providerName, name)
}

// Complete issues one blocking request against the model's provider and
// returns the translated response. Failures are returned unretried.
func Complete(ctx context.Context, model provider.Model, chatCtx provider.Context) (*provider.Completion, error) {
	p, err := providerFor(model)
	if err != nil {
		return nil, err
	}
	return p.Complete(ctx, model, chatCtx)
}

// Stream opens a streaming session against the model's provider. It
// returns immediately; failures, including an unknown provider name, are
// delivered as a terminal Error event on the session.
func Stream(ctx context.Context, model provider.Model, chatCtx provider.Context) *provider.Stream {
	p, err := providerFor(model)
	if err != nil {
		return failedStream(model, err)
	}
	return p.Stream(ctx, model, chatCtx)
}

func providerFor(model provider.Model) (provider.Provider, error) {
	name := model.Provider
	if name == "" {
		name = DefaultProvider
	}

	if p, ok := providers.Get(name); ok {
		return p, nil
	}
	if name == DefaultProvider {
		p, _ := providers.GetOrAdd(name, func() provider.Provider { return openai.FromEnv() })
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

func failedStream(model provider.Model, err error) *provider.Stream {
	session := provider.NewStream(model)
	go func() {
		session.Emit(provider.Start{
			SessionID: session.ID(),
			Model:     model.Name,
			Timestamp: strfmt.DateTime(time.Now()),
		})
		session.Emit(provider.Error{
			SessionID: session.ID(),
			Err:       err,
			Timestamp: strfmt.DateTime(time.Now()),
		})
		session.CloseWith(provider.Completion{}, err)
	}()
	return session
}
