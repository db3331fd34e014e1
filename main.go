package main

import (
	"log"
	"net/http"
	"os"

	"github.com/brynwhyman/sell-my-stuff/app/cmd"
	"github.com/brynwhyman/sell-my-stuff/app/configs"
	"github.com/brynwhyman/sell-my-stuff/app/routes"
	"github.com/brynwhyman/sell-my-stuff/app/utils/storage"
)

func main() {
	env := configs.LoadEnv()

	if len(os.Args) > 1 {
		cmd.RunCli(env)
		return
	}

	sessionKeys, err := configs.LoadSessionKeys(env)
	if err != nil {
		log.Fatal("Session keys failed to load:", err)
	}

	db, err := configs.OpenConnection(env)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	log.Println("Database connected.")

	var imageStorage storage.ImageStorage
	if env.MinIOEndpoint != "" {
		minioStorage, err := storage.NewMinioStorage(env.MinIOEndpoint, env.MinIOAccessKey, env.MinIOSecretKey, env.MinIOBucket, env.MinIOUseSSL)
		if err != nil {
			log.Fatal("Image storage failed to initialize:", err)
		}
		imageStorage = minioStorage
		log.Println("Image storage connected.")
	} else {
		log.Println("Warning: MINIO_ENDPOINT not set, image uploads disabled")
	}

	if env.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET not set, webhook deliveries will be rejected")
	}

	router := routes.NewRouter(db, routes.RouterDeps{
		ENV:          env,
		SessionKeys:  sessionKeys,
		ImageStorage: imageStorage,
	})

	server := http.Server{
		Addr:    env.Port,
		Handler: router,
	}

	log.Printf("Server starting on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Server stopped:", err)
	}
}
