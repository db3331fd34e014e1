package admin

import (
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brynwhyman/sell-my-stuff/app/helpers"
	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
)

type AdminCategoriesPageData struct {
	Title         string
	Categories    []models.Category
	CSRFField     template.HTML
	Message       string
	MessageStatus string
}

func (h *AdminHandler) CategoriesPage(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		log.Printf("Admin CategoriesPage: failed to fetch categories: %v", err)
		http.Error(w, "Failed to fetch categories", http.StatusInternalServerError)
		return
	}

	data := AdminCategoriesPageData{
		Title:         "Categories",
		Categories:    categories,
		CSRFField:     csrf.TemplateField(r),
		Message:       r.URL.Query().Get("message"),
		MessageStatus: r.URL.Query().Get("status"),
	}
	_ = h.render.HTML(w, http.StatusOK, "admin/categories", data)
}

func (h *AdminHandler) AddCategoryPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectCategories(w, r, "error", "Invalid form submission.")
		return
	}

	name := r.PostFormValue("name")
	if name == "" || len(name) > 100 {
		h.redirectCategories(w, r, "error", "Name is required and must be at most 100 characters.")
		return
	}

	displayOrder, _ := strconv.Atoi(r.PostFormValue("display_order"))

	category := &models.Category{
		Name:         name,
		Slug:         helpers.GenerateSlug(name),
		Description:  r.PostFormValue("description"),
		DisplayOrder: displayOrder,
	}

	if err := h.categoryRepo.Create(r.Context(), category); err != nil {
		log.Printf("Admin AddCategoryPost: failed to create category %q: %v", name, err)
		h.redirectCategories(w, r, "error", "Failed to create category.")
		return
	}

	h.redirectCategories(w, r, "success", "Category created.")
}

func (h *AdminHandler) UpdateCategoryPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	category, err := h.categoryRepo.GetByID(r.Context(), uint(id))
	if err != nil {
		log.Printf("Admin UpdateCategoryPost: failed to fetch category %d: %v", id, err)
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.redirectCategories(w, r, "error", "Invalid form submission.")
		return
	}

	name := r.PostFormValue("name")
	if name == "" || len(name) > 100 {
		h.redirectCategories(w, r, "error", "Name is required and must be at most 100 characters.")
		return
	}

	displayOrder, _ := strconv.Atoi(r.PostFormValue("display_order"))

	category.Name = name
	category.Slug = helpers.GenerateSlug(name)
	category.DisplayOrder = displayOrder

	if err := h.categoryRepo.Update(r.Context(), category); err != nil {
		log.Printf("Admin UpdateCategoryPost: failed to update category %d: %v", id, err)
		h.redirectCategories(w, r, "error", "Failed to update category.")
		return
	}

	h.redirectCategories(w, r, "success", "Category updated.")
}

// DeleteCategoryPost removes a category. Items keep existing; their category
// reference is nulled by the foreign key.
func (h *AdminHandler) DeleteCategoryPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.categoryRepo.Delete(r.Context(), uint(id)); err != nil {
		log.Printf("Admin DeleteCategoryPost: failed to delete category %d: %v", id, err)
		h.redirectCategories(w, r, "error", "Failed to delete category.")
		return
	}

	h.redirectCategories(w, r, "success", "Category deleted.")
}

func (h *AdminHandler) redirectCategories(w http.ResponseWriter, r *http.Request, status, message string) {
	http.Redirect(w, r, "/admin/categories?status="+status+"&message="+url.QueryEscape(message), http.StatusSeeOther)
}
