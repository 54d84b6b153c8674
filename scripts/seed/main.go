// Command seed loads a development database with an admin account and a
// small roster so the portal can be exercised locally.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/thebethel/portal-api/internal/models"
	"github.com/thebethel/portal-api/pkg/config"
	"github.com/thebethel/portal-api/pkg/database"
)

func main() {
	adminEmail := flag.String("admin-email", "admin@example.com", "email for the seeded admin account")
	adminPassword := flag.String("admin-password", "changeme123", "password for the seeded admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seedAdmin(ctx, db, *adminEmail, *adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if err := seedStudents(ctx, db); err != nil {
		log.Fatalf("failed to seed students: %v", err)
	}
	log.Println("seed complete")
}

func seedAdmin(ctx context.Context, db *sqlx.DB, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, true, $6, $6)
         ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), email, string(hash), "Portal Admin", string(models.RoleAdmin), now)
	return err
}

func seedStudents(ctx context.Context, db *sqlx.DB) error {
	students := []models.Student{
		{StudentID: "STU-001", FullName: "Amara Obi", ClassType: models.ClassBeginner, Location: "Lagos"},
		{StudentID: "STU-002", FullName: "Tunde Bakare", ClassType: models.ClassPrimary, Location: "Lagos"},
		{StudentID: "STU-003", FullName: "Chidinma Eze", ClassType: models.ClassSecondary, Location: "Abuja"},
	}
	now := time.Now().UTC()
	for _, s := range students {
		_, err := db.ExecContext(ctx,
			`INSERT INTO students (id, student_id, full_name, class_type, location, attendance_dates, absent_dates, current_streak, dollar_points, active, created_at, updated_at)
             VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, true, $8, $8)
             ON CONFLICT (student_id) DO NOTHING`,
			uuid.NewString(), s.StudentID, s.FullName, string(s.ClassType), s.Location,
			pq.StringArray{}, pq.StringArray{}, now)
		if err != nil {
			return err
		}
	}
	return nil
}
