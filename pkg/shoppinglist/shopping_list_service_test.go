package shoppinglist

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	migration "Foodgram/cmd/database/migrate"
	"Foodgram/domain"
	"Foodgram/entities"
	"Foodgram/internal/database"
	"Foodgram/pkg/recipe"
	"Foodgram/pkg/social"
	"Foodgram/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    ShoppingListService
	social social.SocialService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "shopping_list_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	users := user.NewUserRepository(db)
	socialService := social.NewSocialService(social.NewSocialRepository(db), recipe.NewRecipeRepository(db), users)
	return &fixture{
		db:     db,
		svc:    NewShoppingListService(NewShoppingListRepository(db), socialService, users),
		social: socialService,
	}
}

func (f *fixture) user(t *testing.T, username string) string {
	t.Helper()
	u := &entities.User{Email: username + "@foodgram.test", Username: username, Password: "x", Role: domain.RoleUser}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID.String()
}

func (f *fixture) ingredient(t *testing.T, name, unit string) uuid.UUID {
	t.Helper()
	i := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	if err := f.db.Create(i).Error; err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	return i.ID
}

func (f *fixture) recipe(t *testing.T, authorID string, lines map[uuid.UUID]int) string {
	t.Helper()
	r := &entities.Recipe{AuthorID: uuid.MustParse(authorID), Name: "Dish", Text: "Cook it.", CookingTime: 1}
	if err := f.db.Omit("Author", "Tags", "Ingredients").Create(r).Error; err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	for ingredientID, amount := range lines {
		line := &entities.RecipeIngredient{RecipeID: r.ID, IngredientID: ingredientID, Amount: amount}
		if err := f.db.Omit("Ingredient").Create(line).Error; err != nil {
			t.Fatalf("create line: %v", err)
		}
	}
	return r.ID.String()
}

func (f *fixture) cart(t *testing.T, userID string, recipeIDs ...string) {
	t.Helper()
	for _, id := range recipeIDs {
		if _, err := f.social.AddToCart(context.Background(), userID, id); err != nil {
			t.Fatalf("add to cart: %v", err)
		}
	}
}

func TestBuildShoppingListSumsPerIngredient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	chef := f.user(t, "chef")
	sugar := f.ingredient(t, "Sugar", "g")
	salt := f.ingredient(t, "Salt", "g")
	a := f.recipe(t, chef, map[uuid.UUID]int{sugar: 100, salt: 5})
	b := f.recipe(t, chef, map[uuid.UUID]int{salt: 3})
	f.cart(t, chef, a, b)

	items, err := f.svc.BuildShoppingList(ctx, chef)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []domain.ShoppingListItem{
		{IngredientID: salt.String(), Name: "Salt", TotalAmount: 8, MeasurementUnit: "g"},
		{IngredientID: sugar.String(), Name: "Sugar", TotalAmount: 100, MeasurementUnit: "g"},
	}
	if len(items) != len(want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	f := newFixture(t)
	chef := f.user(t, "chef")

	items, err := f.svc.BuildShoppingList(context.Background(), chef)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("items = %#v, want empty slice", items)
	}
}

func TestBuildShoppingListKeepsUnitsApart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	chef := f.user(t, "chef")
	grams := f.ingredient(t, "Flour", "g")
	cups := f.ingredient(t, "Flour", "cup")
	f.cart(t, chef,
		f.recipe(t, chef, map[uuid.UUID]int{grams: 200, cups: 1}),
		f.recipe(t, chef, map[uuid.UUID]int{grams: 50}),
	)

	items, err := f.svc.BuildShoppingList(ctx, chef)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := domain.FormatShoppingList(items); got != "Flour, 1 cup\nFlour, 250 g" {
		t.Fatalf("list = %q", got)
	}
}

func TestBuildShoppingListOnlyUsesOwnCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	milk := f.ingredient(t, "Milk", "ml")
	f.cart(t, alice, f.recipe(t, bob, map[uuid.UUID]int{milk: 200}))
	f.cart(t, bob, f.recipe(t, bob, map[uuid.UUID]int{milk: 50}))

	items, err := f.svc.BuildShoppingList(ctx, alice)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(items) != 1 || items[0].TotalAmount != 200 {
		t.Fatalf("items = %+v", items)
	}
}

func TestExportShoppingList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	chef := f.user(t, "chef")
	sugar := f.ingredient(t, "Sugar", "g")
	salt := f.ingredient(t, "Salt", "g")
	f.cart(t, chef,
		f.recipe(t, chef, map[uuid.UUID]int{sugar: 100, salt: 5}),
		f.recipe(t, chef, map[uuid.UUID]int{salt: 3}),
	)

	name, body, err := f.svc.ExportShoppingList(ctx, chef)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if name != "chef_shopping_list.txt" {
		t.Fatalf("filename = %q", name)
	}
	if body != "Salt, 8 g\nSugar, 100 g" {
		t.Fatalf("body = %q", body)
	}

	_, upper, err := f.svc.ExportShoppingList(ctx, strings.ToUpper(chef))
	if err != nil || upper != body {
		t.Fatalf("export by upper-case id = %q, %v", upper, err)
	}

	if _, _, err := f.svc.ExportShoppingList(ctx, ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("anonymous export = %v, want permission denied", err)
	}
	if _, _, err := f.svc.ExportShoppingList(ctx, uuid.NewString()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("unknown user export = %v, want user not found", err)
	}
}
