package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	migration "Foodgram/cmd/database/migrate"
	"Foodgram/domain"
	"Foodgram/internal/database"
	"Foodgram/internal/utils"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "catalog_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func newTestService(t *testing.T) CatalogService {
	t.Helper()
	utils.InitValidator()
	return NewCatalogService(NewCatalogRepository(newTestDB(t)), utils.Validate)
}

func TestLoadIngredientsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	file := "name;measurement_unit\nSugar;g\nSalt;g\nSalt;g\nMilk;ml\n;g\n"
	report, err := LoadIngredients(ctx, svc, strings.NewReader(file), DefaultDelimiter)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if report.Read != 5 || report.Created != 3 || report.Skipped != 2 {
		t.Fatalf("first load report = %+v, want read 5 created 3 skipped 2", report)
	}

	report, err = LoadIngredients(ctx, svc, strings.NewReader(file), DefaultDelimiter)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if report.Created != 0 {
		t.Fatalf("second load created %d rows, want 0", report.Created)
	}

	all, err := svc.SearchIngredients(ctx, "")
	if err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("stored %d ingredients, want 3", len(all))
	}
}

func TestLoadIngredientsWithoutHeader(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	report, err := LoadIngredients(ctx, svc, strings.NewReader("flour,g\neggs,pcs\n"), ',')
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.Created != 2 {
		t.Fatalf("created %d, want 2", report.Created)
	}
}

func TestSameNameDifferentUnitAreDistinct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.UpsertIngredients(ctx, []domain.IngredientRequest{
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "pinch"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created != 2 {
		t.Fatalf("created %d, want 2", created)
	}
}

func TestSearchIngredientsByPrefix(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.UpsertIngredients(ctx, []domain.IngredientRequest{
		{Name: "Sugar", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "Saffron", MeasurementUnit: "g"},
		{Name: "Sea_weed", MeasurementUnit: "g"},
		{Name: "Seabass", MeasurementUnit: "g"},
		{Name: "Basil", MeasurementUnit: "g"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := svc.SearchIngredients(ctx, "SA")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Saffron" || got[1].Name != "salt" {
		t.Fatalf("search SA = %+v, want [Saffron salt]", got)
	}

	got, err = svc.SearchIngredients(ctx, "sea_")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Sea_weed" {
		t.Fatalf("search sea_ = %+v, want only Sea_weed", got)
	}
}

func TestGetIngredientNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetIngredient(context.Background(), "6f1b7a1e-9f55-4c1d-8a55-3a0f7f4f0c11")
	if !errors.Is(err, domain.ErrIngredientNotFound) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ingredient not found", err)
	}
	_, err = svc.GetIngredient(context.Background(), "not-a-uuid")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found for malformed id", err)
	}
}

func TestLoadTags(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	file := `
- name: Breakfast
  color: "#E26C2D"
  slug: breakfast
- name: Dinner
  color: "#49B64E"
  slug: dinner
`
	report, err := LoadTags(ctx, svc, strings.NewReader(file))
	if err != nil {
		t.Fatalf("load tags: %v", err)
	}
	if report.Created != 2 {
		t.Fatalf("created %d, want 2", report.Created)
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Slug != "breakfast" || tags[1].Slug != "dinner" {
		t.Fatalf("tags = %+v", tags)
	}

	tag, err := svc.GetTag(ctx, tags[1].ID)
	if err != nil || tag.Name != "Dinner" {
		t.Fatalf("get tag = %+v, %v", tag, err)
	}
	tag, err = svc.GetTag(ctx, strings.ToUpper(tags[1].ID))
	if err != nil || tag.ID != tags[1].ID {
		t.Fatalf("get tag by upper-case id = %+v, %v", tag, err)
	}
}

func TestLoadTagsSkipsRenamedSlug(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := LoadTags(ctx, svc, strings.NewReader("- name: Breakfast\n  color: \"#E26C2D\"\n  slug: breakfast\n")); err != nil {
		t.Fatalf("first load: %v", err)
	}

	file := `
- name: Breakfast
  color: "#E26C2D"
  slug: morning
- name: Supper
  color: "#8775D2"
  slug: supper
`
	report, err := LoadTags(ctx, svc, strings.NewReader(file))
	if err != nil {
		t.Fatalf("reload with renamed slug: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("created %d, want 1", report.Created)
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Slug != "breakfast" || tags[1].Slug != "supper" {
		t.Fatalf("tags = %+v", tags)
	}
}

func TestLoadTagsRejectsBadColor(t *testing.T) {
	svc := newTestService(t)

	file := "- name: Lunch\n  color: \"#FFF\"\n  slug: lunch\n"
	_, err := LoadTags(context.Background(), svc, strings.NewReader(file))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}
