package elastic

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/internal/config"
)

// NewClient creates an Elasticsearch client for the search index and
// verifies the cluster answers before handing it out.
func NewClient(ctx context.Context, cfg config.ElasticConfig, logger *zap.Logger) (*elasticsearch.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	logger.Info("connected to elasticsearch", zap.Strings("addresses", cfg.Addresses))
	return client, nil
}
