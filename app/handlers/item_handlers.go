package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/brynwhyman/sell-my-stuff/app/repositories"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

const itemsPerPage = 12

type ItemHandler struct {
	itemRepo     repositories.ItemRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	render       *render.Render
}

func NewItemHandler(itemRepo repositories.ItemRepositoryImpl, categoryRepo repositories.CategoryRepositoryImpl, r *render.Render) *ItemHandler {
	return &ItemHandler{itemRepo, categoryRepo, r}
}

type ItemListPageData struct {
	Title          string
	Items          []models.Item
	Categories     []models.Category
	ActiveCategory string
	CurrentPage    int
	TotalPages     int
	Message        string
	MessageStatus  string
}

type ItemDetailPageData struct {
	Title         string
	Item          models.Item
	Message       string
	MessageStatus string
}

// Items lists all items, live and sold, newest first, with an optional
// category filter. An unknown category slug shows everything.
func (h *ItemHandler) Items(w http.ResponseWriter, r *http.Request) {
	categorySlug := r.URL.Query().Get("category")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * itemsPerPage

	var (
		items []models.Item
		total int64
		err   error
	)

	activeCategory := ""
	if categorySlug != "" {
		if _, catErr := h.categoryRepo.GetBySlug(r.Context(), categorySlug); catErr == nil {
			activeCategory = categorySlug
		}
	}

	if activeCategory != "" {
		items, total, err = h.itemRepo.GetByCategorySlugPaginated(r.Context(), activeCategory, itemsPerPage, offset)
	} else {
		items, total, err = h.itemRepo.GetPaginated(r.Context(), itemsPerPage, offset)
	}
	if err != nil {
		log.Printf("Items: failed to fetch items: %v", err)
		http.Error(w, "Failed to fetch items", http.StatusInternalServerError)
		return
	}

	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		log.Printf("Items: failed to fetch categories: %v", err)
	}

	data := ItemListPageData{
		Title:          "For Sale",
		Items:          items,
		Categories:     categories,
		ActiveCategory: activeCategory,
		CurrentPage:    page,
		TotalPages:     int((total + itemsPerPage - 1) / itemsPerPage),
		Message:        r.URL.Query().Get("message"),
		MessageStatus:  r.URL.Query().Get("status"),
	}

	_ = h.render.HTML(w, http.StatusOK, "items", data)
}

func (h *ItemHandler) ItemDetail(w http.ResponseWriter, r *http.Request) {
	itemSlug := mux.Vars(r)["slug"]
	if itemSlug == "" {
		http.NotFound(w, r)
		return
	}

	item, err := h.itemRepo.GetBySlug(r.Context(), itemSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("ItemDetail: failed to fetch item %s: %v", itemSlug, err)
		http.Error(w, "Failed to fetch item", http.StatusInternalServerError)
		return
	}

	data := ItemDetailPageData{
		Title:         item.Title,
		Item:          *item,
		Message:       r.URL.Query().Get("message"),
		MessageStatus: r.URL.Query().Get("status"),
	}

	_ = h.render.HTML(w, http.StatusOK, "item", data)
}

func (h *ItemHandler) HowToBuy(w http.ResponseWriter, r *http.Request) {
	_ = h.render.HTML(w, http.StatusOK, "how-to-buy", ItemListPageData{Title: "How to Buy"})
}
