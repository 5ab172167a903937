package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"textbook-tutor/internal/domain/entity"
)

// Payload keys shared with the ingestion pipeline.
const (
	payloadContent    = "content"
	payloadSource     = "source_file"
	payloadChunkIndex = "chunk_index"
)

type QdrantOptions struct {
	URL    string // e.g. https://xyz.cloud.qdrant.io:6334; wins over Host/Port
	Host   string
	Port   int
	APIKey string
}

// NewQdrantClient connects over gRPC, either to a cloud URL or a local host.
func NewQdrantClient(opts QdrantOptions) (*qdrant.Client, error) {
	cfg := &qdrant.Config{Host: opts.Host, Port: opts.Port, APIKey: opts.APIKey}
	if opts.URL != "" {
		u, err := url.Parse(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing qdrant url: %w", err)
		}
		cfg.Host = u.Hostname()
		cfg.UseTLS = u.Scheme == "https"
		if p := u.Port(); p != "" {
			if cfg.Port, err = strconv.Atoi(p); err != nil {
				return nil, fmt.Errorf("parsing qdrant port: %w", err)
			}
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	return qdrant.NewClient(cfg)
}

// QdrantStore is the textbook passage collection.
type QdrantStore struct {
	client         *qdrant.Client
	collectionName string
	logger         zerolog.Logger
}

func NewQdrantStore(client *qdrant.Client, collectionName string, logger zerolog.Logger) *QdrantStore {
	return &QdrantStore{
		client:         client,
		collectionName: collectionName,
		logger:         logger.With().Str("component", "qdrant").Logger(),
	}
}

func (s *QdrantStore) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	// Keyword index on the source file keeps per-chapter filters cheap.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      payloadSource,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not create source_file index (might already exist)")
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int) ([]entity.Passage, error) {
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	passages := make([]entity.Passage, 0, len(res))
	for _, hit := range res {
		p := passageFromPayload(hit.Payload)
		if p.Content == "" {
			continue
		}
		p.Score = hit.Score
		passages = append(passages, p)
	}
	return passages, nil
}

func (s *QdrantStore) Upsert(ctx context.Context, passages []entity.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("upsert: %d passages but %d vectors", len(passages), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(passages))
	for i, p := range passages {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payloadFromPassage(p),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func (s *QdrantStore) Health(ctx context.Context) (entity.CollectionHealth, error) {
	health := entity.CollectionHealth{Name: s.collectionName}

	info, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			health.Status = "missing"
			return health, nil
		}
		return health, fmt.Errorf("qdrant collection info: %w", err)
	}

	health.Exists = true
	health.Status = info.GetStatus().String()
	health.PointsCount = info.GetPointsCount()
	return health, nil
}

func payloadFromPassage(p entity.Passage) map[string]*qdrant.Value {
	return qdrant.NewValueMap(map[string]any{
		payloadContent:    p.Content,
		payloadSource:     p.SourceID,
		payloadChunkIndex: int64(p.ChunkIndex),
	})
}

func passageFromPayload(payload map[string]*qdrant.Value) entity.Passage {
	return entity.Passage{
		Content:    payload[payloadContent].GetStringValue(),
		SourceID:   payload[payloadSource].GetStringValue(),
		ChunkIndex: int(payload[payloadChunkIndex].GetIntegerValue()),
	}
}
