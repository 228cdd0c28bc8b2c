package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	contractsCollection  = "contracts"
	areasCollection      = "areas"
	spotPricesCollection = "spot_prices"
)

// FirestoreProvider implements Database using Google Cloud Firestore. Every
// document stores its value as a JSON string in the "json" field.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore registers the firestore flags.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// the firestore client only reads the emulator from the environment
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	if f.projectID == "" && os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		return errors.New("firestore-project-id is required with the emulator")
	}
	return nil
}

// Init creates the Firestore client. It must be called before any other
// method.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) spotPrices(area string) (*firestore.CollectionRef, error) {
	if area == "" {
		return nil, fmt.Errorf("area cannot be empty")
	}
	return f.client.Collection(areasCollection).Doc(area).Collection(spotPricesCollection), nil
}

// decodeJSON unmarshals the "json" field of a document into v.
func decodeJSON(ctx context.Context, doc *firestore.DocumentSnapshot, v any) error {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "doc missing json", slog.String("path", doc.Ref.Path), slog.Any("err", err))
		return fmt.Errorf("document %s missing 'json' field: %w", doc.Ref.ID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "doc json not string", slog.String("path", doc.Ref.Path))
		return fmt.Errorf("document %s 'json' field is not a string", doc.Ref.ID)
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal doc json", slog.String("path", doc.Ref.Path), slog.Any("err", err))
		return fmt.Errorf("failed to unmarshal document %s: %w", doc.Ref.ID, err)
	}
	return nil
}

func docVersion(doc *firestore.DocumentSnapshot) int {
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			return int(vInt)
		}
	}
	return 0
}

// GetContract retrieves a contract from the "contracts" collection.
func (f *FirestoreProvider) GetContract(ctx context.Context, id string) (types.Contract, error) {
	if id == "" {
		return types.Contract{}, fmt.Errorf("%w: empty id", ErrContractNotFound)
	}
	doc, err := f.client.Collection(contractsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Contract{}, fmt.Errorf("%w: %s", ErrContractNotFound, id)
		}
		return types.Contract{}, fmt.Errorf("failed to get contract %s: %w", id, err)
	}

	var c types.Contract
	if err := decodeJSON(ctx, doc, &c); err != nil {
		return types.Contract{}, err
	}
	return c, nil
}

// ListContracts retrieves all contracts sorted by name. Malformed documents
// are skipped.
func (f *FirestoreProvider) ListContracts(ctx context.Context) ([]types.Contract, error) {
	iter := f.client.Collection(contractsCollection).Documents(ctx)
	defer iter.Stop()

	var contracts []types.Contract
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating contracts: %w", err)
		}

		var c types.Contract
		if err := decodeJSON(ctx, doc, &c); err != nil {
			continue
		}
		contracts = append(contracts, c)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].Name < contracts[j].Name
	})
	return contracts, nil
}

// UpsertContract adds or replaces a contract. UpdatedAt is set to now when it
// is zero.
func (f *FirestoreProvider) UpsertContract(ctx context.Context, c types.Contract) error {
	if err := ValidateContract(c); err != nil {
		return err
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal contract: %w", err)
	}
	_, err = f.client.Collection(contractsCollection).Doc(c.ID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"name":      c.Name,
		"company":   c.Company,
		"timestamp": c.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert contract %s: %w", c.ID, err)
	}
	return nil
}

// UpsertSpotPrices adds or updates hourly prices. The document ID is the
// RFC3339 start time so ID range queries are time range queries.
func (f *FirestoreProvider) UpsertSpotPrices(ctx context.Context, area string, prices []types.SpotPrice, version int) error {
	if len(prices) == 0 {
		return nil
	}
	coll, err := f.spotPrices(area)
	if err != nil {
		return err
	}

	bw := f.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(prices))
	for _, p := range prices {
		if p.TSStart.IsZero() {
			bw.End()
			return fmt.Errorf("spot price missing tsStart")
		}
		jsonBytes, err := json.Marshal(p)
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to marshal spot price: %w", err)
		}
		docID := p.TSStart.UTC().Format(time.RFC3339)
		job, err := bw.Set(coll.Doc(docID), map[string]interface{}{
			"json":      string(jsonBytes),
			"timestamp": p.TSStart,
			"version":   version,
		})
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to queue spot price %s: %w", docID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to upsert spot price: %w", err)
		}
	}
	return nil
}

// GetSpotPriceHistory retrieves prices starting in [start, end).
func (f *FirestoreProvider) GetSpotPriceHistory(ctx context.Context, area string, start, end time.Time) ([]types.SpotPrice, error) {
	coll, err := f.spotPrices(area)
	if err != nil {
		return nil, err
	}
	startDocID := start.UTC().Format(time.RFC3339)
	endDocID := end.UTC().Format(time.RFC3339)

	iter := coll.
		Where(firestore.DocumentID, ">=", coll.Doc(startDocID)).
		Where(firestore.DocumentID, "<", coll.Doc(endDocID)).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var prices []types.SpotPrice
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating spot prices: %w", err)
		}

		var p types.SpotPrice
		if err := decodeJSON(ctx, doc, &p); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// GetLatestSpotPriceTime implements Database.
func (f *FirestoreProvider) GetLatestSpotPriceTime(ctx context.Context, area string) (time.Time, int, error) {
	coll, err := f.spotPrices(area)
	if err != nil {
		return time.Time{}, 0, err
	}
	iter := coll.
		OrderBy("timestamp", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return time.Time{}, 0, nil
	}
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to get latest spot price doc: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, doc.Ref.ID)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid spot price doc id %s: %w", doc.Ref.ID, err)
	}
	return ts, docVersion(doc), nil
}
