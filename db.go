package main

import (
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jovote/models"
	"jovote/pkg/blobstore"
	"jovote/pkg/journal"
	"jovote/pkg/mailer"
	"jovote/pkg/security"
)

var (
	db       *gorm.DB
	journals *journal.Service
	blobs    blobstore.Store
	mail     mailer.Mailer
	monitor  *security.Monitor
	limiter  security.CounterStore
)

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
		if err := db.AutoMigrate(&models.PublishedJournal{}); err != nil {
			log.Printf("migration warning (published_journals): %v", err)
		}
		if err := db.AutoMigrate(&models.ContactMessage{}); err != nil {
			log.Printf("migration warning (contact_messages): %v", err)
		}
	}
	seedDB()
}

// initServices wires the collaborators around the shared gorm handle. Called
// after initDB in main and from the test bootstrap.
func initServices() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0o755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
	blobBase := os.Getenv("BLOB_BASE_URL")
	if blobBase == "" {
		blobBase = "https://assets.local/jovote"
	}
	blobs = blobstore.NewLocalStore(base, blobBase)
	mail = mailer.LogMailer{}
	limiter = security.NewMemoryCounter()
	monitor = security.NewMonitor(security.NewMemoryCounter())

	journals = journal.NewService(db, blobs)
	if p := os.Getenv("DOI_PREFIX"); p != "" {
		journals.DOIPrefix = p
	}
}

func seedRoles() {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

func seedDB() {
	seedRoles()

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// find administrator role id
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = "admin123"
			log.Println("ADMIN_PASSWORD not set; seeding admin with the default dev password")
		}
		rid := role.ID
		admin := models.User{
			Username: "admin",
			Email:    os.Getenv("EDITOR_EMAIL"),
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin")
	}
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
