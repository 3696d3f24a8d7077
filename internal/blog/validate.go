package blog

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"clubsite/internal/models"
	"clubsite/internal/slug"
)

// Validation limits for posts, categories and accounts.
const (
	maxTitleLen        = 300
	maxExcerptLen      = 1_000
	maxBodyLen         = 100_000
	maxImageURLLen     = 2_000
	maxCategoryNameLen = 100
	maxNameLen         = 100
	maxDescriptionLen  = 500
	minPasswordLen     = 8
	maxPasswordLen     = 72 // bcrypt ignores anything longer
)

func (v *validator) title(title string) {
	title = strings.TrimSpace(title)
	v.check(title != "", "title", "Title is required.")
	v.check(utf8.RuneCountInString(title) <= maxTitleLen, "title", "Title is too long (max 300 characters).")
	v.check(title == "" || slug.Generate(title) != "", "title", "Title must contain a letter or digit.")
}

func (v *validator) excerpt(excerpt string) {
	v.check(utf8.RuneCountInString(excerpt) <= maxExcerptLen, "excerpt", "Excerpt is too long (max 1,000 characters).")
}

func (v *validator) content(body string) {
	v.check(utf8.RuneCountInString(body) <= maxBodyLen, "content", "Body is too long (max 100,000 characters).")
}

func (v *validator) categoryID(id int64) {
	v.check(id > 0, "category_id", "Category is required.")
}

func (v *validator) imageURL(u *string) {
	if u == nil {
		return
	}
	v.check(len(*u) <= maxImageURLLen, "image_url", "Image URL is too long.")
}

func validateDraft(d PostDraft) error {
	v := newValidator()
	v.title(d.Title)
	v.excerpt(d.Excerpt)
	v.content(d.Content)
	v.categoryID(d.CategoryID)
	v.imageURL(d.ImageURL)
	return v.err()
}

func validatePatch(p PostPatch) error {
	v := newValidator()
	if p.Title != nil {
		v.title(*p.Title)
	}
	if p.Excerpt != nil {
		v.excerpt(*p.Excerpt)
	}
	if p.Content != nil {
		v.content(*p.Content)
	}
	if p.CategoryID != nil {
		v.categoryID(*p.CategoryID)
	}
	v.imageURL(p.ImageURL)
	if p.ChangeDescription != nil {
		v.check(utf8.RuneCountInString(*p.ChangeDescription) <= maxDescriptionLen,
			"change_description", "Change description is too long (max 500 characters).")
	}
	return v.err()
}

func validateCategoryName(name string) error {
	v := newValidator()
	name = strings.TrimSpace(name)
	v.check(name != "", "name", "Category name is required.")
	v.check(utf8.RuneCountInString(name) <= maxCategoryNameLen, "name", "Category name is too long (max 100 characters).")
	s := slug.Generate(name)
	v.check(name == "" || s != "", "name", "Category name must contain a letter or digit.")
	v.check(s != models.AllCategorySlug, "name", `"All" is reserved.`)
	return v.err()
}

func validateRegistration(in Registration) error {
	v := newValidator()
	v.check(strings.TrimSpace(in.FirstName) != "", "first_name", "First name is required.")
	v.check(utf8.RuneCountInString(in.FirstName) <= maxNameLen, "first_name", "First name is too long.")
	v.check(utf8.RuneCountInString(in.LastName) <= maxNameLen, "last_name", "Last name is too long.")
	addr, err := mail.ParseAddress(in.Email)
	v.check(err == nil && addr.Address == strings.TrimSpace(in.Email), "email", "A valid email address is required.")
	v.check(len(in.Password) >= minPasswordLen, "password", "Password must be at least 8 characters.")
	v.check(len(in.Password) <= maxPasswordLen, "password", "Password is too long (max 72 bytes).")
	return v.err()
}
