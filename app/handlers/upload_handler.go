package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/brynwhyman/sell-my-stuff/app/helpers"
	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/brynwhyman/sell-my-stuff/app/repositories"
	"github.com/brynwhyman/sell-my-stuff/app/services"
	"github.com/brynwhyman/sell-my-stuff/app/utils/sessions"
	"github.com/brynwhyman/sell-my-stuff/app/utils/storage"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

const (
	maxImageBytes     = 5 << 20
	maxImagesPerItem  = 8
	maxUploadFormSize = 48 << 20
)

// currency is fixed; the form never exposes it.
const itemCurrency = "NZD"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type UploadHandler struct {
	itemRepo           repositories.ItemRepositoryImpl
	categoryRepo       repositories.CategoryRepositoryImpl
	imageRepo          repositories.ItemImageRepositoryImpl
	provider           services.PaymentProvider
	imageStorage       storage.ImageStorage
	sessionStore       sessions.SessionStore
	uploadPasswordHash string
	validator          *validator.Validate
	render             *render.Render
}

func NewUploadHandler(
	itemRepo repositories.ItemRepositoryImpl,
	categoryRepo repositories.CategoryRepositoryImpl,
	imageRepo repositories.ItemImageRepositoryImpl,
	provider services.PaymentProvider,
	imageStorage storage.ImageStorage,
	sessionStore sessions.SessionStore,
	uploadPasswordHash string,
	r *render.Render,
) *UploadHandler {
	return &UploadHandler{
		itemRepo:           itemRepo,
		categoryRepo:       categoryRepo,
		imageRepo:          imageRepo,
		provider:           provider,
		imageStorage:       imageStorage,
		sessionStore:       sessionStore,
		uploadPasswordHash: uploadPasswordHash,
		validator:          validator.New(),
		render:             r,
	}
}

type ItemForm struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
	CategoryID  string
	Price       string `validate:"required"`
}

type UploadLoginPageData struct {
	Title         string
	CSRFField     template.HTML
	Message       string
	MessageStatus string
}

type AddItemPageData struct {
	Title         string
	Form          ItemForm
	Categories    []models.Category
	Errors        map[string]string
	CSRFField     template.HTML
	Message       string
	MessageStatus string
}

func (h *UploadHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := UploadLoginPageData{
		Title:         "Add an Item",
		CSRFField:     csrf.TemplateField(r),
		Message:       r.URL.Query().Get("message"),
		MessageStatus: r.URL.Query().Get("status"),
	}
	_ = h.render.HTML(w, http.StatusOK, "upload-login", data)
}

func (h *UploadHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/add-item/login?status=error&message="+url.QueryEscape("Invalid form submission."), http.StatusSeeOther)
		return
	}

	password := r.PostFormValue("password")
	if h.uploadPasswordHash == "" || !helpers.PasswordCompare(h.uploadPasswordHash, []byte(password)) {
		log.Println("UploadHandler: failed upload login attempt")
		http.Redirect(w, r, "/add-item/login?status=error&message="+url.QueryEscape("Incorrect password."), http.StatusSeeOther)
		return
	}

	if err := h.sessionStore.SetUploadAuthenticated(w, r); err != nil {
		log.Printf("UploadHandler: failed to save session: %v", err)
	}
	http.Redirect(w, r, "/add-item", http.StatusSeeOther)
}

func (h *UploadHandler) AddItemPage(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		log.Printf("AddItemPage: failed to fetch categories: %v", err)
	}

	data := AddItemPageData{
		Title:         "Add an Item",
		Categories:    categories,
		Errors:        map[string]string{},
		CSRFField:     csrf.TemplateField(r),
		Message:       r.URL.Query().Get("message"),
		MessageStatus: r.URL.Query().Get("status"),
	}
	_ = h.render.HTML(w, http.StatusOK, "add-item", data)
}

func (h *UploadHandler) AddItemPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFormSize); err != nil {
		http.Redirect(w, r, "/add-item?status=error&message="+url.QueryEscape("Invalid form submission."), http.StatusSeeOther)
		return
	}

	form := ItemForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		CategoryID:  r.PostFormValue("category_id"),
		Price:       r.PostFormValue("price"),
	}

	if err := h.validator.Struct(&form); err != nil {
		var validationErrors validator.ValidationErrors
		errors.As(err, &validationErrors)
		h.renderFormWithErrors(w, r, form, helpers.FormatValidationErrors(validationErrors))
		return
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil || price.LessThan(decimal.NewFromFloat(0.01)) {
		h.renderFormWithErrors(w, r, form, map[string]string{"price": "Price must be at least 0.01."})
		return
	}

	item := &models.Item{
		Title:       form.Title,
		Description: form.Description,
		Price:       price,
		Currency:    itemCurrency,
		Status:      models.ItemStatusLive,
	}

	if form.CategoryID != "" {
		if category, catErr := h.lookupCategory(r, form.CategoryID); catErr == nil {
			item.CategoryID = &category.ID
		}
	}

	itemSlug, err := h.itemRepo.EnsureUniqueSlug(r.Context(), helpers.GenerateSlug(form.Title))
	if err != nil {
		log.Printf("AddItemPost: failed to generate slug: %v", err)
		http.Redirect(w, r, "/add-item?status=error&message="+url.QueryEscape("Failed to save item."), http.StatusSeeOther)
		return
	}
	item.Slug = itemSlug

	if err := h.itemRepo.Create(r.Context(), item); err != nil {
		log.Printf("AddItemPost: failed to save item: %v", err)
		http.Redirect(w, r, "/add-item?status=error&message="+url.QueryEscape("Failed to save item."), http.StatusSeeOther)
		return
	}

	h.uploadImages(r, item)

	// A missed payment link never blocks the listing. The item exists in
	// LIVE state and the admin screen offers a retry.
	if details, linkErr := h.provider.CreatePaymentLinkForItem(r.Context(), item); linkErr != nil {
		log.Printf("AddItemPost: failed to create payment link for item %d: %v", item.ID, linkErr)
		http.Redirect(w, r, "/item/"+item.Slug+"?status=warning&message="+url.QueryEscape("Item saved, but the payment link could not be created."), http.StatusSeeOther)
		return
	} else if err := h.itemRepo.UpdateStripeFields(r.Context(), item.ID, details.PaymentLinkID, details.PaymentLinkURL, details.ProductID, details.PriceID); err != nil {
		log.Printf("AddItemPost: failed to store payment link fields for item %d: %v", item.ID, err)
	}

	http.Redirect(w, r, "/item/"+item.Slug+"?status=success&message="+url.QueryEscape("Item listed."), http.StatusSeeOther)
}

func (h *UploadHandler) renderFormWithErrors(w http.ResponseWriter, r *http.Request, form ItemForm, formErrors map[string]string) {
	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		log.Printf("AddItemPost: failed to fetch categories: %v", err)
	}
	data := AddItemPageData{
		Title:      "Add an Item",
		Form:       form,
		Categories: categories,
		Errors:     formErrors,
		CSRFField:  csrf.TemplateField(r),
	}
	_ = h.render.HTML(w, http.StatusOK, "add-item", data)
}

func (h *UploadHandler) lookupCategory(r *http.Request, slugOrID string) (*models.Category, error) {
	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].Slug == slugOrID || fmt.Sprintf("%d", categories[i].ID) == slugOrID {
			return &categories[i], nil
		}
	}
	return nil, errors.New("category not found")
}

func (h *UploadHandler) uploadImages(r *http.Request, item *models.Item) {
	if h.imageStorage == nil {
		return
	}
	if r.MultipartForm == nil {
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxImagesPerItem {
		files = files[:maxImagesPerItem]
	}

	for i, header := range files {
		contentType := header.Header.Get("Content-Type")
		if err := ValidateImageUpload(contentType, header.Size); err != nil {
			log.Printf("AddItemPost: skipping image %q for item %d: %v", header.Filename, item.ID, err)
			continue
		}

		file, err := header.Open()
		if err != nil {
			log.Printf("AddItemPost: failed to open upload %q: %v", header.Filename, err)
			continue
		}
		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		file.Close()
		if err != nil || int64(len(data)) > maxImageBytes {
			log.Printf("AddItemPost: failed to read upload %q for item %d", header.Filename, item.ID)
			continue
		}

		imageURL, objectKey, err := h.imageStorage.Upload(r.Context(), header.Filename, contentType, data)
		if err != nil {
			log.Printf("AddItemPost: failed to store image %q for item %d: %v", header.Filename, item.ID, err)
			continue
		}

		image := &models.ItemImage{
			ItemID:    item.ID,
			URL:       imageURL,
			ObjectKey: objectKey,
			SortOrder: i,
			IsPrimary: i == 0,
		}
		if err := h.imageRepo.Create(r.Context(), image); err != nil {
			log.Printf("AddItemPost: failed to save image record for item %d: %v", item.ID, err)
		}
	}
}

// ValidateImageUpload enforces the allowed content types and the 5 MiB cap.
func ValidateImageUpload(contentType string, size int64) error {
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("file type %q not supported", contentType)
	}
	if size > maxImageBytes {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, maxImageBytes)
	}
	return nil
}
