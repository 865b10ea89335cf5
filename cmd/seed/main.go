package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/eduflex-backend/config"
	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	pginfra "github.com/oksasatya/eduflex-backend/internal/infrastructure/postgres"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     entity.Role
}

var users = []seedUser{
	{"Admin", "admin@eduflex.local", "admin123", entity.RoleAdmin},
	{"Prof Demo", "professor@eduflex.local", "professor123", entity.RoleProfessor},
	{"Student Demo", "student@eduflex.local", "student123", entity.RoleStudent},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife, cfg.DBTimeout)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pginfra.NewUserRepository(pool)
	courseRepo := pginfra.NewCourseRepository(pool)

	ids := map[entity.Role]string{}
	for _, su := range users {
		hash, err := helpers.HashPassword(su.password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u := &entity.User{Name: su.name, Email: su.email, PasswordHash: hash, Role: su.role}
		err = userRepo.Create(ctx, u)
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			existing, gerr := userRepo.GetByEmail(ctx, su.email)
			if gerr != nil {
				log.Fatalf("failed to load %s: %v", su.email, gerr)
			}
			ids[su.role] = existing.ID
			fmt.Printf("user exists: id=%s email=%s role=%s\n", existing.ID, su.email, existing.Role)
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed %s: %v", su.email, err)
		}
		ids[su.role] = u.ID
		fmt.Printf("seeded user: id=%s email=%s role=%s password=%s\n", u.ID, su.email, su.role, su.password)
	}

	owned, err := courseRepo.ListByOwner(ctx, ids[entity.RoleProfessor])
	if err != nil {
		log.Fatalf("failed to list courses: %v", err)
	}
	if len(owned) > 0 {
		fmt.Println("demo course already present")
		return
	}
	c := &entity.Course{Title: "Introduction to Go", Description: "Types, interfaces and concurrency.", ProfessorID: ids[entity.RoleProfessor]}
	if err := courseRepo.Create(ctx, c); err != nil {
		log.Fatalf("failed to seed course: %v", err)
	}
	if _, err := courseRepo.AddStudent(ctx, c.ID, ids[entity.RoleStudent]); err != nil {
		log.Fatalf("failed to enroll demo student: %v", err)
	}
	fmt.Printf("seeded course: id=%s title=%q with one enrolled student\n", c.ID, c.Title)
}
