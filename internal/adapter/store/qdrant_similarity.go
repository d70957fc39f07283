package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.uber.org/zap"
)

// QdrantSimilarity stores one embedding per analyzed request and answers
// "when did this user last ask something this similar". It feeds the gate's
// recent-similar rule; it is not a response cache.
type QdrantSimilarity struct {
	client         *qdrant.Client
	collectionName string
	scoreThreshold float32
	log            *zap.Logger
}

func NewQdrantSimilarity(client *qdrant.Client, collectionName string, scoreThreshold float64, log *zap.Logger) *QdrantSimilarity {
	return &QdrantSimilarity{
		client:         client,
		collectionName: collectionName,
		scoreThreshold: float32(scoreThreshold),
		log:            log,
	}
}

// InitCollection ensures the collection and the created_at index exist.
func (s *QdrantSimilarity) InitCollection(ctx context.Context, dim uint64) error {
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

	// Index created_at so the freshness window filter stays a range scan.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "created_at",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		s.log.Warn("could not create created_at index (may already exist)", zap.Error(err))
	}
	return nil
}

func (s *QdrantSimilarity) LastSimilar(ctx context.Context, userID string, vector []float32, window time.Duration) (time.Time, bool, error) {
	cutoff := time.Now().Add(-window).Unix()
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("user_id", userID),
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: "created_at",
						Range: &qdrant.Range{
							Gte: qdrant.PtrOf(float64(cutoff)),
						},
					},
				},
			},
		},
	}

	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: &s.scoreThreshold,
	})
	if err != nil {
		return time.Time{}, false, err
	}
	if len(res) == 0 {
		return time.Time{}, false, nil
	}

	createdAt := res[0].Payload["created_at"].GetIntegerValue()
	if createdAt == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(createdAt, 0), true, nil
}

func (s *QdrantSimilarity) Record(ctx context.Context, userID string, vector []float32) error {
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"user_id":    userID,
					"created_at": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		s.log.Warn("similarity record failed", zap.Error(err))
	}
	return err
}
