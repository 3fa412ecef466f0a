package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portify/internal/auth"
	"portify/internal/config"
	"portify/internal/database"
)

// The admin CLI has two modes: bootstrap one account with a generated
// password, or reconcile the denormalized counters against the event rows.
func main() {
	var (
		email    = flag.String("email", "", "account email (required unless --recount)")
		username = flag.String("username", "", "public username (required unless --recount)")
		name     = flag.String("name", "", "display name (defaults to username)")
		recount  = flag.Bool("recount", false, "recompute click/visit counters from event rows")
	)
	flag.Parse()

	cfg := config.MustLoad()
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	if *recount {
		if err := recountCounters(db); err != nil {
			log.Fatalf("recount counters: %v", err)
		}
		return
	}

	if *email == "" || *username == "" {
		log.Fatal("missing required flags: --email and --username")
	}
	if err := bootstrapAccount(db, *email, *username, *name); err != nil {
		log.Fatalf("bootstrap account: %v", err)
	}
}

func bootstrapAccount(db *gorm.DB, email, username, name string) error {
	username = database.NormalizeUsername(username)

	var existing database.User
	switch err := db.Where("username = ? OR email = ?", username, email).First(&existing).Error; {
	case err == nil:
		return fmt.Errorf("account %q already exists", username)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return fmt.Errorf("query account: %w", err)
	}

	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate password: %w", err)
	}
	password := base64.RawURLEncoding.EncodeToString(raw)

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if name == "" {
		name = username
	}
	user := database.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Username:     username,
		Theme:        database.DefaultTheme,
		Template:     database.TemplateMinimal,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	log.Printf("account created: id=%s username=%s", user.ID, user.Username)
	log.Printf("generated password (store it now, it is not shown again): %s", password)
	return nil
}

// recountCounters rewrites the legacy counters from the append-only event
// tables. Useful after a partial restore or if the two ever drifted.
func recountCounters(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`UPDATE users SET profile_visit_count = (
			SELECT COUNT(*) FROM profile_visits WHERE profile_visits.user_id = users.id
		)`).Error
		if err != nil {
			return fmt.Errorf("recount profile visits: %w", err)
		}

		err = tx.Exec(`UPDATE projects SET click_count = (
			SELECT COUNT(*) FROM project_clicks WHERE project_clicks.project_id = projects.id
		)`).Error
		if err != nil {
			return fmt.Errorf("recount project clicks: %w", err)
		}

		log.Printf("counters reconciled against event rows")
		return nil
	})
}
