package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCategoryRepo struct {
	categories map[uint]*models.Category
	updated    []*models.Category
}

func (f *fakeCategoryRepo) GetAll(context.Context) ([]models.Category, error) {
	var all []models.Category
	for _, c := range f.categories {
		all = append(all, *c)
	}
	return all, nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id uint) (*models.Category, error) {
	if c, ok := f.categories[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *models.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *models.Category) error {
	f.categories[category.ID] = category
	f.updated = append(f.updated, category)
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uint) error {
	delete(f.categories, id)
	return nil
}

func updateCategoryRequest(id string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/categories/"+id, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func TestUpdateCategoryPost(t *testing.T) {
	repo := &fakeCategoryRepo{categories: map[uint]*models.Category{
		3: {ID: 3, Name: "Furniture", Slug: "furniture", DisplayOrder: 0},
	}}
	h := NewAdminHandler(nil, repo, nil, nil, nil, nil, "", nil)

	rec := httptest.NewRecorder()
	h.UpdateCategoryPost(rec, updateCategoryRequest("3", url.Values{
		"name":          {"Home Goods"},
		"display_order": {"2"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "status=success")
	require.Len(t, repo.updated, 1)
	assert.Equal(t, "Home Goods", repo.categories[3].Name)
	assert.Equal(t, "home-goods", repo.categories[3].Slug)
	assert.Equal(t, 2, repo.categories[3].DisplayOrder)
}

func TestUpdateCategoryPostUnknownCategory(t *testing.T) {
	repo := &fakeCategoryRepo{categories: map[uint]*models.Category{}}
	h := NewAdminHandler(nil, repo, nil, nil, nil, nil, "", nil)

	rec := httptest.NewRecorder()
	h.UpdateCategoryPost(rec, updateCategoryRequest("99", url.Values{"name": {"Books"}}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, repo.updated)
}

func TestUpdateCategoryPostMissingName(t *testing.T) {
	repo := &fakeCategoryRepo{categories: map[uint]*models.Category{
		3: {ID: 3, Name: "Furniture", Slug: "furniture"},
	}}
	h := NewAdminHandler(nil, repo, nil, nil, nil, nil, "", nil)

	rec := httptest.NewRecorder()
	h.UpdateCategoryPost(rec, updateCategoryRequest("3", url.Values{"name": {""}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "status=error")
	assert.Empty(t, repo.updated)
	assert.Equal(t, "Furniture", repo.categories[3].Name)
}
