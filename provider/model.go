package provider

// Model selects a provider implementation and a model name within it. It
// is an opaque selector: nothing is validated here, invalid combinations
// surface only as provider-call failures.
type Model struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

// GetModel builds a model selector. Pure constructor, never fails.
func GetModel(provider, name string) Model {
	return Model{Provider: provider, Name: name}
}
