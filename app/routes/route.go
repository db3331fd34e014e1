package routes

import (
	"net/http"

	adminhandlers "github.com/brynwhyman/sell-my-stuff/app/handlers/admin"

	"github.com/brynwhyman/sell-my-stuff/app/configs"
	"github.com/brynwhyman/sell-my-stuff/app/handlers"
	"github.com/brynwhyman/sell-my-stuff/app/middlewares"
	"github.com/brynwhyman/sell-my-stuff/app/repositories"
	"github.com/brynwhyman/sell-my-stuff/app/services"
	"github.com/brynwhyman/sell-my-stuff/app/utils/renderer"
	"github.com/brynwhyman/sell-my-stuff/app/utils/sessions"
	"github.com/brynwhyman/sell-my-stuff/app/utils/storage"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type RouterDeps struct {
	ENV          configs.ENV
	SessionKeys  *configs.SessionKeys
	ImageStorage storage.ImageStorage
}

func NewRouter(db *gorm.DB, deps RouterDeps) *mux.Router {
	itemRepo := repositories.NewItemRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	imageRepo := repositories.NewItemImageRepository(db)
	eventRepo := repositories.NewWebhookEventRepository(db)

	stripeSvc := services.NewStripeService(deps.ENV.StripeSecretKey,
		"Thanks for your purchase! We'll be in touch to arrange pickup.")
	mailer := services.NewMailer(services.MailerConfig{
		Host:       deps.ENV.EmailHost,
		Port:       deps.ENV.EmailPort,
		Username:   deps.ENV.EmailUsername,
		Password:   deps.ENV.EmailPassword,
		From:       deps.ENV.EmailFrom,
		AdminEmail: deps.ENV.AdminEmail,
	})
	saleSvc := services.NewSaleService(itemRepo, stripeSvc, mailer)

	sessionStore := sessions.NewCookieSessionStore(deps.SessionKeys.AuthKey, deps.SessionKeys.EncKey)
	render := renderer.New()

	itemHandler := handlers.NewItemHandler(itemRepo, categoryRepo, render)
	uploadHandler := handlers.NewUploadHandler(itemRepo, categoryRepo, imageRepo, stripeSvc,
		deps.ImageStorage, sessionStore, deps.ENV.UploadPasswordHash, render)
	webhookHandler := handlers.NewWebhookHandler(deps.ENV.StripeWebhookSecret, saleSvc, eventRepo)
	adminHandler := adminhandlers.NewAdminHandler(itemRepo, categoryRepo, imageRepo, eventRepo,
		stripeSvc, sessionStore, deps.ENV.AdminPasswordHash, render)

	router := mux.NewRouter()

	// The webhook endpoint authenticates with the provider's signature, not
	// a CSRF token, so it sits outside the protected subrouter.
	router.HandleFunc("/webhooks/stripe", webhookHandler.StripeWebhookPost).Methods("POST")

	site := router.PathPrefix("/").Subrouter()
	site.Use(csrf.Protect(deps.SessionKeys.AuthKey, csrf.Secure(deps.ENV.AppEnv == "production")))
	site.Use(middlewares.MethodOverrideMiddleware)

	site.HandleFunc("/", itemHandler.Items).Methods("GET")
	site.HandleFunc("/item/{slug}", itemHandler.ItemDetail).Methods("GET")
	site.HandleFunc("/how-to-buy", itemHandler.HowToBuy).Methods("GET")

	site.HandleFunc("/add-item/login", uploadHandler.LoginPage).Methods("GET")
	site.HandleFunc("/add-item/login", uploadHandler.LoginPost).Methods("POST")

	upload := site.PathPrefix("/add-item").Subrouter()
	upload.Use(middlewares.UploadAuthMiddleware(sessionStore))
	upload.HandleFunc("", uploadHandler.AddItemPage).Methods("GET")
	upload.HandleFunc("", uploadHandler.AddItemPost).Methods("POST")

	site.HandleFunc("/admin/login", adminHandler.LoginPage).Methods("GET")
	site.HandleFunc("/admin/login", adminHandler.LoginPost).Methods("POST")

	admin := site.PathPrefix("/admin").Subrouter()
	admin.Use(middlewares.AdminAuthMiddleware(sessionStore))
	admin.HandleFunc("/logout", adminHandler.Logout).Methods("POST")
	admin.HandleFunc("/items", adminHandler.ItemsPage).Methods("GET")
	admin.HandleFunc("/items/{id}", adminHandler.EditItemPage).Methods("GET")
	admin.HandleFunc("/items/{id}", adminHandler.EditItemPost).Methods("POST")
	admin.HandleFunc("/items/{id}/payment-link", adminHandler.RetryPaymentLinkPost).Methods("POST")
	admin.HandleFunc("/items/{id}/images/{imageID}/primary", adminHandler.SetPrimaryImagePost).Methods("POST")
	admin.HandleFunc("/items/{id}/images/{imageID}/delete", adminHandler.DeleteImagePost).Methods("POST")
	admin.HandleFunc("/categories", adminHandler.CategoriesPage).Methods("GET")
	admin.HandleFunc("/categories", adminHandler.AddCategoryPost).Methods("POST")
	admin.HandleFunc("/categories/{id}", adminHandler.UpdateCategoryPost).Methods("POST")
	admin.HandleFunc("/categories/{id}/delete", adminHandler.DeleteCategoryPost).Methods("POST")
	admin.HandleFunc("/webhooks", adminHandler.WebhooksPage).Methods("GET")

	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	return router
}
