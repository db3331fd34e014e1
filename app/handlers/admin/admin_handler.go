package admin

import (
	"html/template"
	"log"
	"net/http"
	"net/url"

	"github.com/brynwhyman/sell-my-stuff/app/helpers"
	"github.com/brynwhyman/sell-my-stuff/app/repositories"
	"github.com/brynwhyman/sell-my-stuff/app/services"
	"github.com/brynwhyman/sell-my-stuff/app/utils/sessions"
	"github.com/gorilla/csrf"
	"github.com/unrolled/render"
)

type AdminHandler struct {
	itemRepo          repositories.ItemRepositoryImpl
	categoryRepo      repositories.CategoryRepositoryImpl
	imageRepo         repositories.ItemImageRepositoryImpl
	eventRepo         repositories.WebhookEventRepositoryImpl
	provider          services.PaymentProvider
	sessionStore      sessions.SessionStore
	adminPasswordHash string
	render            *render.Render
}

func NewAdminHandler(
	itemRepo repositories.ItemRepositoryImpl,
	categoryRepo repositories.CategoryRepositoryImpl,
	imageRepo repositories.ItemImageRepositoryImpl,
	eventRepo repositories.WebhookEventRepositoryImpl,
	provider services.PaymentProvider,
	sessionStore sessions.SessionStore,
	adminPasswordHash string,
	r *render.Render,
) *AdminHandler {
	return &AdminHandler{
		itemRepo:          itemRepo,
		categoryRepo:      categoryRepo,
		imageRepo:         imageRepo,
		eventRepo:         eventRepo,
		provider:          provider,
		sessionStore:      sessionStore,
		adminPasswordHash: adminPasswordHash,
		render:            r,
	}
}

type AdminLoginPageData struct {
	Title         string
	CSRFField     template.HTML
	Message       string
	MessageStatus string
}

func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := AdminLoginPageData{
		Title:         "Admin Login",
		CSRFField:     csrf.TemplateField(r),
		Message:       r.URL.Query().Get("message"),
		MessageStatus: r.URL.Query().Get("status"),
	}
	_ = h.render.HTML(w, http.StatusOK, "admin/login", data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/login?status=error&message="+url.QueryEscape("Invalid form submission."), http.StatusSeeOther)
		return
	}

	password := r.PostFormValue("password")
	if h.adminPasswordHash == "" || !helpers.PasswordCompare(h.adminPasswordHash, []byte(password)) {
		log.Println("AdminHandler: failed admin login attempt")
		http.Redirect(w, r, "/admin/login?status=error&message="+url.QueryEscape("Incorrect password."), http.StatusSeeOther)
		return
	}

	if err := h.sessionStore.SetAdminAuthenticated(w, r); err != nil {
		log.Printf("AdminHandler: failed to save session: %v", err)
	}
	http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.ClearSession(w, r); err != nil {
		log.Printf("AdminHandler: failed to clear session: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
