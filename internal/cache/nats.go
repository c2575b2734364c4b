package cache

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/psalter/internal/config"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

// NATSStore keeps list payloads in a JetStream key-value bucket. Expiry is
// the bucket TTL; NATS KV has no per-key TTL on Put.
type NATSStore struct {
	conn    *nats.Conn
	kv      jetstream.KeyValue
	timeout time.Duration
}

// NewNATSStore connects to NATS and creates or updates the cache bucket.
func NewNATSStore(ctx context.Context, cfg config.CacheConfig) (*NATSStore, error) {
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("psalter"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCache, "failed to connect to NATS").
			WithContext("url", cfg.NATSURL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryCache, "failed to create JetStream context").Build()
	}

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(setupCtx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "Cached psalm list responses",
		History:     1,
		TTL:         cfg.TTL.Std(),
	})
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryCache, "failed to initialize KV bucket").
			WithContext("bucket", cfg.Bucket).
			Build()
	}

	slog.Info("NATS cache initialized",
		slog.String("url", cfg.NATSURL),
		slog.String("bucket", cfg.Bucket),
		slog.Duration("ttl", cfg.TTL.Std()))

	return &NATSStore{conn: conn, kv: kv, timeout: cfg.Timeout.Std()}, nil
}

// encodeKey maps an arbitrary logical key onto the NATS key alphabet.
func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func (s *NATSStore) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *NATSStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	entry, err := s.kv.Get(ctx, encodeKey(key))
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.WrapError(err, errors.CategoryCache, "failed to get cache entry").Build()
	}
	return entry.Value(), true, nil
}

func (s *NATSStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if _, err := s.kv.Put(ctx, encodeKey(key), value); err != nil {
		return errors.WrapError(err, errors.CategoryCache, "failed to put cache entry").Build()
	}
	return nil
}

// Close releases the NATS connection. Entries stay in the bucket until they expire.
func (s *NATSStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
