package admin

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AdminItemsPageData struct {
	Title         string
	Items         []models.Item
	CurrentPage   int
	TotalPages    int
	CSRFField     template.HTML
	Message       string
	MessageStatus string
}

type AdminItemFormPageData struct {
	Title         string
	Item          models.Item
	Categories    []models.Category
	Errors        map[string]string
	CSRFField     template.HTML
	Message       string
	MessageStatus string
}

const adminItemsPerPage = 25

func (h *AdminHandler) ItemsPage(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	items, total, err := h.itemRepo.GetPaginated(r.Context(), adminItemsPerPage, (page-1)*adminItemsPerPage)
	if err != nil {
		log.Printf("Admin ItemsPage: failed to fetch items: %v", err)
		http.Error(w, "Failed to fetch items", http.StatusInternalServerError)
		return
	}

	data := AdminItemsPageData{
		Title:         "Items",
		Items:         items,
		CurrentPage:   page,
		TotalPages:    int((total + adminItemsPerPage - 1) / adminItemsPerPage),
		CSRFField:     csrf.TemplateField(r),
		Message:       r.URL.Query().Get("message"),
		MessageStatus: r.URL.Query().Get("status"),
	}
	_ = h.render.HTML(w, http.StatusOK, "admin/items", data)
}

func (h *AdminHandler) EditItemPage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFromPath(w, r)
	if !ok {
		return
	}

	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		log.Printf("Admin EditItemPage: failed to fetch categories: %v", err)
	}

	data := AdminItemFormPageData{
		Title:         "Edit Item",
		Item:          *item,
		Categories:    categories,
		Errors:        map[string]string{},
		CSRFField:     csrf.TemplateField(r),
		Message:       r.URL.Query().Get("message"),
		MessageStatus: r.URL.Query().Get("status"),
	}
	_ = h.render.HTML(w, http.StatusOK, "admin/item-form", data)
}

func (h *AdminHandler) EditItemPost(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFromPath(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.redirectItem(w, r, item.ID, "error", "Invalid form submission.")
		return
	}

	title := r.PostFormValue("title")
	if title == "" || len(title) > 200 {
		h.redirectItem(w, r, item.ID, "error", "Title is required and must be at most 200 characters.")
		return
	}

	price, err := decimal.NewFromString(r.PostFormValue("price"))
	if err != nil || price.LessThan(decimal.NewFromFloat(0.01)) {
		h.redirectItem(w, r, item.ID, "error", "Price must be at least 0.01.")
		return
	}

	item.Title = title
	item.Description = r.PostFormValue("description")
	item.Price = price

	item.CategoryID = nil
	if rawCategory := r.PostFormValue("category_id"); rawCategory != "" {
		if id, parseErr := strconv.ParseUint(rawCategory, 10, 64); parseErr == nil {
			categoryID := uint(id)
			item.CategoryID = &categoryID
		}
	}

	if err := h.itemRepo.Update(r.Context(), item); err != nil {
		log.Printf("Admin EditItemPost: failed to update item %d: %v", item.ID, err)
		h.redirectItem(w, r, item.ID, "error", "Failed to update item.")
		return
	}

	h.redirectItem(w, r, item.ID, "success", "Item updated.")
}

// RetryPaymentLinkPost issues a payment link for an item that is missing one,
// e.g. because the provider call failed at listing time.
func (h *AdminHandler) RetryPaymentLinkPost(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFromPath(w, r)
	if !ok {
		return
	}

	if item.StripePaymentLinkID != "" {
		h.redirectItem(w, r, item.ID, "error", "Item already has a payment link.")
		return
	}

	details, err := h.provider.CreatePaymentLinkForItem(r.Context(), item)
	if err != nil {
		log.Printf("Admin RetryPaymentLinkPost: failed for item %d: %v", item.ID, err)
		h.redirectItem(w, r, item.ID, "error", "Payment link creation failed.")
		return
	}

	if err := h.itemRepo.UpdateStripeFields(r.Context(), item.ID, details.PaymentLinkID, details.PaymentLinkURL, details.ProductID, details.PriceID); err != nil {
		log.Printf("Admin RetryPaymentLinkPost: failed to store link fields for item %d: %v", item.ID, err)
		h.redirectItem(w, r, item.ID, "error", "Payment link created but could not be stored.")
		return
	}

	h.redirectItem(w, r, item.ID, "success", "Payment link created.")
}

func (h *AdminHandler) SetPrimaryImagePost(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFromPath(w, r)
	if !ok {
		return
	}

	imageID, err := strconv.ParseUint(mux.Vars(r)["imageID"], 10, 64)
	if err != nil {
		h.redirectItem(w, r, item.ID, "error", "Invalid image.")
		return
	}

	if err := h.imageRepo.SetPrimary(r.Context(), item.ID, uint(imageID)); err != nil {
		log.Printf("Admin SetPrimaryImagePost: failed for item %d image %d: %v", item.ID, imageID, err)
		h.redirectItem(w, r, item.ID, "error", "Failed to update primary image.")
		return
	}

	h.redirectItem(w, r, item.ID, "success", "Primary image updated.")
}

func (h *AdminHandler) DeleteImagePost(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFromPath(w, r)
	if !ok {
		return
	}

	imageID, err := strconv.ParseUint(mux.Vars(r)["imageID"], 10, 64)
	if err != nil {
		h.redirectItem(w, r, item.ID, "error", "Invalid image.")
		return
	}

	if err := h.imageRepo.Delete(r.Context(), uint(imageID)); err != nil {
		log.Printf("Admin DeleteImagePost: failed for item %d image %d: %v", item.ID, imageID, err)
		h.redirectItem(w, r, item.ID, "error", "Failed to delete image.")
		return
	}

	h.redirectItem(w, r, item.ID, "success", "Image deleted.")
}

func (h *AdminHandler) itemFromPath(w http.ResponseWriter, r *http.Request) (*models.Item, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	item, err := h.itemRepo.GetByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		log.Printf("Admin: failed to fetch item %d: %v", id, err)
		http.Error(w, "Failed to fetch item", http.StatusInternalServerError)
		return nil, false
	}
	return item, true
}

func (h *AdminHandler) redirectItem(w http.ResponseWriter, r *http.Request, itemID uint, status, message string) {
	http.Redirect(w, r,
		"/admin/items/"+strconv.FormatUint(uint64(itemID), 10)+"?status="+status+"&message="+url.QueryEscape(message),
		http.StatusSeeOther)
}
