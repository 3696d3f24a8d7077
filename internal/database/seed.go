package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"clubsite/internal/slug"
)

//go:embed seed.yaml
var seedFile []byte

// SeedData is the development content applied by Seed.
type SeedData struct {
	Categories []string   `yaml:"categories"`
	Posts      []SeedPost `yaml:"posts"`
}

// SeedPost is one sample post. Category refers to a category by name.
type SeedPost struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Featured bool   `yaml:"featured"`
	Excerpt  string `yaml:"excerpt"`
	Content  string `yaml:"content"`
}

// SeedAdmin is the account that owns seeded content.
type SeedAdmin struct {
	Email    string
	Password string
}

// ParseSeed decodes seed YAML.
func ParseSeed(b []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	for i, p := range data.Posts {
		if p.Title == "" || p.Category == "" {
			return nil, fmt.Errorf("parse seed data: post %d needs a title and a category", i)
		}
	}
	return &data, nil
}

// Seed populates the database with the embedded development data and an
// admin account. Rows that already exist are left alone, so Seed is safe
// to run on every start.
func Seed(ctx context.Context, db *sql.DB, admin SeedAdmin) error {
	data, err := ParseSeed(seedFile)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	adminID, err := seedAdmin(ctx, tx, admin)
	if err != nil {
		return err
	}

	categoryIDs := make(map[string]int64, len(data.Categories))
	for _, name := range data.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, slug) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			name, slug.Generate(name),
		); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
		var id int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE slug = $1`, slug.Generate(name),
		).Scan(&id); err != nil {
			return fmt.Errorf("seed category %q lookup: %w", name, err)
		}
		categoryIDs[name] = id
	}

	inserted := 0
	for _, p := range data.Posts {
		catID, ok := categoryIDs[p.Category]
		if !ok {
			return fmt.Errorf("seed post %q: unknown category %q", p.Title, p.Category)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO blog_posts (title, slug, excerpt, content, author_id, category_id, is_featured)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (slug) DO NOTHING
		`, p.Title, slug.Generate(p.Title), p.Excerpt, p.Content, adminID, catID, p.Featured)
		if err != nil {
			return fmt.Errorf("seed post %q: %w", p.Title, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded",
		"admin", admin.Email,
		"categories", len(categoryIDs),
		"new_posts", inserted,
	)
	return nil
}

// seedAdmin creates the admin account unless its email is taken and
// returns its id either way.
func seedAdmin(ctx context.Context, tx *sql.Tx, admin SeedAdmin) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("seed bcrypt: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (first_name, last_name, email, password_hash, role)
		VALUES ('Club', 'Admin', $1, $2, 'admin')
		ON CONFLICT ((LOWER(email))) DO NOTHING
	`, admin.Email, string(hash)); err != nil {
		return "", fmt.Errorf("seed insert admin: %w", err)
	}

	var id string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM profiles WHERE LOWER(email) = LOWER($1)`, admin.Email,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("seed admin lookup: %w", err)
	}
	return id, nil
}
