package embedding

import "context"

// Task distinguishes embeddings generated for indexing from embeddings
// generated for querying. Some providers tune vectors per task.
type Task int

const (
	// TaskDocument embeds text for storage in the index.
	TaskDocument Task = iota + 1
	// TaskQuery embeds a search query.
	TaskQuery
)

// AuthMode identifies how the process authenticates to the provider.
// Model availability differs between the two, so fallback state is
// tracked per mode.
type AuthMode int

const (
	// AuthAPIKey authenticates with a static API key.
	AuthAPIKey AuthMode = iota + 1
	// AuthServiceIdentity authenticates with ambient service credentials.
	AuthServiceIdentity
)

// APIVersion is the provider protocol version used for a call.
type APIVersion string

const (
	// APIVersionV1 is the stable protocol surface.
	APIVersionV1 APIVersion = "v1"
	// APIVersionV1Beta exposes newer models before they reach v1.
	APIVersionV1Beta APIVersion = "v1beta"
)

// Request is one batched embedding call against a specific model and
// protocol version.
type Request struct {
	Texts      []string
	Model      string
	APIVersion APIVersion
	Task       Task
	Dimension  int
}

// Backend is the transport to an embedding provider. Implementations must
// wrap failures with ErrModelUnavailable or ErrTransient so the client can
// classify them; anything else is treated as fatal for the batch.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, req Request) ([][]float32, error)
}
