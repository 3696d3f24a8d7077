// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"clubsite/internal/database"
	"clubsite/internal/models"
	"clubsite/internal/slug"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "clubsite")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "clubsite")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// unique returns a short random suffix for fixture names.
func unique() string {
	return uuid.NewString()[:8]
}

// testAccount inserts an account that is removed, with its posts and
// history, when the test ends.
func testAccount(t *testing.T, db *sql.DB, role models.Role) *models.Account {
	t.Helper()
	s := NewAccountStore(db)
	a, err := s.Create(context.Background(), &models.Account{
		FirstName: "Test",
		LastName:  "Member",
		Email:     "member-" + unique() + "@store-test.local",
		Role:      role,
	}, "pass")
	if err != nil {
		t.Fatalf("create test account: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM edit_history WHERE editor_id = $1", a.ID)
		db.Exec("DELETE FROM comments WHERE author_id = $1", a.ID)
		db.Exec("DELETE FROM blog_posts WHERE author_id = $1", a.ID)
		db.Exec("DELETE FROM profiles WHERE id = $1", a.ID)
	})
	return a
}

// testCategory inserts a category with a unique slug. It is removed after
// the posts cleaned up by testAccount, so register it first.
func testCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	name = name + " " + unique()
	c, err := NewCategoryStore(db).Create(context.Background(), name, slug.Generate(name))
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM blog_posts WHERE category_id = $1", c.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// testPost inserts a post owned by author in category.
func testPost(t *testing.T, db *sql.DB, author *models.Account, cat *models.Category, title string) *models.Post {
	t.Helper()
	p, err := NewPostStore(db).Create(context.Background(), &models.Post{
		Title:      title,
		Slug:       slug.Generate(title + " " + unique()),
		Excerpt:    "excerpt",
		Content:    "body",
		AuthorID:   author.ID,
		CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}
