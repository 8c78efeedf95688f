package schedule

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const tableSeedApplication = "reserve"

type bootstrapSeedDocument struct {
	Tables []tableSeed `json:"tables"`
}

type tableSeed struct {
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
	Room     string `json:"room"`
}

func loadTableSeeds(seedFS embed.FS) ([]tableSeed, error) {
	seedBytes, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode table seed file: %w", err)
	}

	if len(doc.Tables) == 0 {
		return nil, errors.New("table seed file does not contain tables")
	}

	return doc.Tables, nil
}

// ApplyTableSeeds ensures the predefined table inventory exists.
func ApplyTableSeeds(ctx context.Context, repo TableRepo, seedFS embed.FS, logger apt.Logger) error {
	if repo == nil {
		return errors.New("table repository is required")
	}

	seedDocs, err := loadTableSeeds(seedFS)
	if err != nil {
		return err
	}

	tracker, err := trackerFromRepo(repo)
	if err != nil {
		return err
	}

	var defs []seed.Seed
	for _, s := range seedDocs {
		seedData := s
		if strings.TrimSpace(seedData.Number) == "" || seedData.Capacity <= 0 {
			logger.Info("Skipping invalid seed table", "number", seedData.Number, "capacity", seedData.Capacity)
			continue
		}

		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2025-01-12_table_%s", seedIdentifier(seedData.Number)),
			Description: fmt.Sprintf("Ensure table %s exists", seedData.Number),
			Run: func(ctx context.Context) error {
				return seedData.ensureTable(ctx, repo, logger)
			},
		})
	}

	if len(defs) == 0 {
		logger.Info("No table seeds to apply")
		return nil
	}

	logger.Info("Applying table seeds")
	if err := seed.Apply(ctx, tracker, defs, tableSeedApplication); err != nil {
		return err
	}
	logger.Info("Table seeds applied successfully")
	return nil
}

func trackerFromRepo(repo TableRepo) (seed.Tracker, error) {
	provider, ok := repo.(mongoDatabaseProvider)
	if !ok {
		return nil, errors.New("table repository does not expose MongoDB access for seeding")
	}
	db := provider.GetDatabase()
	if db == nil {
		return nil, errors.New("table repository database is not initialized")
	}
	return seed.NewMongoTracker(db), nil
}

type mongoDatabaseProvider interface {
	GetDatabase() *mongo.Database
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}

	replacer := strings.NewReplacer("-", "_", " ", "_", "/", "_", "\\", "_")
	value = replacer.Replace(value)

	var builder strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			builder.WriteRune(r)
		}
	}

	result := builder.String()
	if result == "" {
		return "seed"
	}
	return result
}

func (s tableSeed) ensureTable(ctx context.Context, repo TableRepo, logger apt.Logger) error {
	number := strings.TrimSpace(s.Number)

	tables, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list existing tables: %w", err)
	}

	for _, existing := range tables {
		if existing.Number == number {
			logger.Info("Seed table already exists", "number", number)
			return nil
		}
	}

	table := NewTable()
	table.Number = number
	table.Capacity = s.Capacity
	table.Room = s.Room
	table.CreatedBy = "seed:bootstrap"
	table.UpdatedBy = "seed:bootstrap"
	table.BeforeCreate()

	if err := repo.Create(ctx, table); err != nil {
		return fmt.Errorf("create seed table %s: %w", number, err)
	}

	logger.Info("Seed table created", "number", number, "id", table.ID.String())
	return nil
}

// SeedingFunc returns a lifecycle OnStart-compatible function which applies
// the table seeds in the background.
func SeedingFunc(seedCtx context.Context, repo TableRepo, seedFS embed.FS, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting table seeding in background")
		go func() {
			if err := ApplyTableSeeds(seedCtx, repo, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("❌ Table seeds failed: %v", err)
			} else if err == nil {
				logger.Info("✓ Table seeding completed successfully")
			}
		}()
		return nil
	}
}

// StopFunc returns a lifecycle OnStop-compatible function which cancels any
// background seeding goroutine.
func StopFunc(cancelFunc context.CancelFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if cancelFunc != nil {
			cancelFunc()
		}
		return nil
	}
}
