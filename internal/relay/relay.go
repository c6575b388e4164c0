// Package relay implements the upstream relay: it maps validated inbound
// requests onto provider API calls and pipes the responses back, choosing
// between streamed passthrough and buffered JSON.
package relay

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/fenrirlab/groqrelay/internal/catalog"
)

// Options configures a relay Client.
type Options struct {
	// BaseURL is the upstream API root, e.g. "https://api.groq.com/openai/v1"
	BaseURL string

	// Catalog is the immutable model catalog
	Catalog *catalog.Catalog

	// ValidateModels rejects model ids missing from the catalog before any
	// upstream call. Disabled in live-catalog deployments, which delegate
	// validation to the provider.
	ValidateModels bool

	// SpeechModel is forced for audio transcription/translation
	SpeechModel string

	// ModelsCacheTTL bounds how long a live models listing is reused
	ModelsCacheTTL time.Duration

	Logger *zap.Logger
}

// Client performs the outbound provider calls. It is safe for concurrent use
// and holds no per-request state.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	catalog        *catalog.Catalog
	validateModels bool
	speechModel    string
	modelsCache    *ristretto.Cache[string, []byte]
	modelsTTL      time.Duration
	logger         *zap.Logger
}

// New creates a relay client.
func New(opts Options) (*Client, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1 << 10,
		MaxCost:     16 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				// DisableCompression required for streaming passthrough
				DisableCompression: true,
			},
		},
		catalog:        opts.Catalog,
		validateModels: opts.ValidateModels,
		speechModel:    opts.SpeechModel,
		modelsCache:    cache,
		modelsTTL:      opts.ModelsCacheTTL,
		logger:         logger,
	}, nil
}
