//go:build integration

package social

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	migration "Foodgram/cmd/database/migrate"
	"Foodgram/domain"
	"Foodgram/entities"
	"Foodgram/internal/database"
	"Foodgram/pkg/recipe"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=foodgram password=foodgram dbname=foodgram sslmode=disable", host, port.Port())
	db, err := database.OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func TestPostgresConcurrentFavoritesKeepOneRow(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	svc := newTestService(db)

	alice := seedUser(t, db, "alice")
	pie := seedRecipe(t, db, alice, "Pie", 0)

	const workers = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.AddFavorite(ctx, alice, pie)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrAlreadyFavorited):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d adds succeeded, want exactly 1", succeeded)
	}

	var rows int64
	db.Model(&entities.Favorite{}).Count(&rows)
	if rows != 1 {
		t.Fatalf("favorites has %d rows, want 1", rows)
	}
}

func TestPostgresRejectsSelfFollowRow(t *testing.T) {
	db := newPostgresDB(t)
	alice := seedUser(t, db, "alice")

	// Bypass the service to prove the store enforces the rule on its own.
	id := uuid.MustParse(alice)
	follow := &entities.Follow{UserID: id, AuthorID: id}
	if err := db.Omit("User", "Author").Create(follow).Error; err == nil {
		t.Fatalf("store accepted a self follow")
	}
}

func TestPostgresReadersNeverSeePartialComposition(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	repo := recipe.NewRecipeRepository(db)

	alice := seedUser(t, db, "alice")
	stew := seedRecipe(t, db, alice, "Stew", 0)

	ingredients := make([]uuid.UUID, 0, 3)
	for _, name := range []string{"Beans", "Carrot", "Onion"} {
		ingredient := &entities.Ingredient{Name: name, MeasurementUnit: "g"}
		if err := db.Create(ingredient).Error; err != nil {
			t.Fatalf("create ingredient: %v", err)
		}
		ingredients = append(ingredients, ingredient.ID)
	}

	// Composition n holds n+2 lines, each with amount n+1.
	lines := func(n int) []*entities.RecipeIngredient {
		res := make([]*entities.RecipeIngredient, 0, n+2)
		for _, id := range ingredients[:n+2] {
			res = append(res, &entities.RecipeIngredient{IngredientID: id, Amount: n + 1})
		}
		return res
	}
	target := &entities.Recipe{ID: uuid.MustParse(stew), Name: "Stew", Text: "Cook it.", CookingTime: 5}
	if err := repo.UpdateRecipe(ctx, target, nil, lines(0)); err != nil {
		t.Fatalf("initial composition: %v", err)
	}

	done := make(chan struct{})
	writerErr := make(chan error, 1)
	go func() {
		defer close(done)
		for i := 1; i <= 40; i++ {
			if err := repo.UpdateRecipe(ctx, target, nil, lines(i%2)); err != nil {
				writerErr <- err
				return
			}
		}
	}()

	const readers = 4
	var wg sync.WaitGroup
	partial := make(chan string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				got, err := repo.GetRecipeDetail(ctx, stew)
				if err != nil {
					partial <- fmt.Sprintf("read: %v", err)
					return
				}
				n := len(got.Ingredients) - 2
				if n != 0 && n != 1 {
					partial <- fmt.Sprintf("observed %d lines", len(got.Ingredients))
					return
				}
				for _, line := range got.Ingredients {
					if line.Amount != n+1 {
						partial <- fmt.Sprintf("observed amount %d among %d lines", line.Amount, len(got.Ingredients))
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(partial)

	select {
	case err := <-writerErr:
		t.Fatalf("update: %v", err)
	default:
	}
	for msg := range partial {
		t.Fatalf("reader saw a partial composition: %s", msg)
	}
}
