package main

import (
	"context"
	"flag"
	"log"

	"go-media-cms/internal/config"
	"go-media-cms/internal/repository"
	"go-media-cms/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if *email == "" || len(*password) < 6 {
		log.Fatal("usage: reset-password -email <email> -password <new password, min 6 chars>")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// 3. Find the account
	ctx := context.Background()
	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("❌ User %s not found: %v", *email, err)
	}

	// 4. Set the password and end existing sessions
	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	user.ClearResetToken()
	user.TokenVersion = uuid.New().String()
	user.UpdatedBy = "reset-password"
	if err := users.Update(ctx, user); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Password for %s has been reset; existing sessions were signed out", user.Email)
}
