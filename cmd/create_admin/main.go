package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jovote/models"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_admin <username> <password> [email]")
		os.Exit(2)
	}
	username := os.Args[1]
	password := os.Args[2]
	email := ""
	if len(os.Args) > 3 {
		email = os.Args[3]
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var role models.Role
	if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
		role = models.Role{Name: "administrator", Description: "full access"}
		db.Create(&role)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}

	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		// Reset credentials on the existing account instead of failing.
		existing.HashedPassword = hpw
		existing.RoleID = &role.ID
		if email != "" {
			existing.Email = email
		}
		if err := db.Save(&existing).Error; err != nil {
			log.Fatalf("failed to update admin: %v", err)
		}
		fmt.Printf("updated admin %s (id=%d)\n", username, existing.ID)
		return
	}

	user := models.User{Username: username, Email: email, HashedPassword: hpw, RoleID: &role.ID}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	fmt.Printf("created admin %s (id=%d)\n", username, user.ID)
}
