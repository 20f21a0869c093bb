package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// VectorIndexService is the nearest-neighbor store over candidate embeddings.
// One point per candidate and signal kind; upserting the same candidate/kind
// pair replaces the previous vector.
type VectorIndexService interface {
	InitCollection() error
	UpsertCandidate(ctx context.Context, candidateID string, kind string, text string, embedding []float32) error
	SearchCandidates(ctx context.Context, queryEmbedding []float32, threshold float32, limit int) ([]CandidateHit, error)
}

// Signal kinds stored in the index.
const (
	SignalInterview = "interview"
	SignalResume    = "resume"
)

type CandidateHit struct {
	CandidateID string
	Score       float32
	Kind        string
	Text        string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewVectorIndexService(urlStr, apiKey, collectionName string) (VectorIndexService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements VectorIndexService.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertCandidate implements VectorIndexService.
func (q *qdrantService) UpsertCandidate(ctx context.Context, candidateID string, kind string, text string, embedding []float32) error {
	// Deterministic point id so re-finalizing replaces the old signal.
	pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(candidateID+"/"+kind))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"candidate_id": candidateID,
			"kind":         kind,
			"text":         text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchCandidates implements VectorIndexService.
func (q *qdrantService) SearchCandidates(ctx context.Context, queryEmbedding []float32, threshold float32, limit int) ([]CandidateHit, error) {
	// Resume and interview signals both feed matching; the matcher keeps the
	// strongest hit per candidate.
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(threshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var hits []CandidateHit
	for _, point := range searchResult {
		payload := point.Payload

		hit := CandidateHit{Score: point.Score}

		if v, ok := payload["candidate_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.CandidateID = val.StringValue
			}
		}
		if v, ok := payload["kind"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Kind = val.StringValue
			}
		}
		if v, ok := payload["text"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Text = val.StringValue
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}
