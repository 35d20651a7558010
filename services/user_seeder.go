package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// UserSeeder handles seeding the roster with the default pool members
type UserSeeder struct {
	users database.UserRepository
	now   func() time.Time
}

// NewUserSeeder creates a new user seeder
func NewUserSeeder(users database.UserRepository) *UserSeeder {
	return &UserSeeder{
		users: users,
		now:   time.Now,
	}
}

// DefaultRoster is the demo pool
var DefaultRoster = []models.User{
	{ID: 0, Name: "ANDREW", Email: "andrew@pickem.local"},
	{ID: 1, Name: "BARDIA", Email: "bardia@pickem.local"},
	{ID: 2, Name: "COOPER", Email: "cooper@pickem.local"},
	{ID: 3, Name: "MICAH", Email: "micah@pickem.local"},
	{ID: 4, Name: "RYAN", Email: "ryan@pickem.local"},
	{ID: 5, Name: "TJ", Email: "tj@pickem.local"},
	{ID: 6, Name: "BRAD", Email: "brad@pickem.local"},
}

// SeedUsers creates any roster member not already stored
func (s *UserSeeder) SeedUsers(ctx context.Context, roster []models.User) error {
	var existingCount, createdCount int

	for _, userData := range roster {
		existing, err := s.users.FindByID(ctx, userData.ID)
		if err != nil {
			return fmt.Errorf("check user %d: %w", userData.ID, err)
		}
		if existing != nil {
			existingCount++
			continue
		}

		user := userData
		user.CreatedAt = s.now()
		if err := s.users.Upsert(ctx, &user); err != nil {
			logging.Errorf("Failed to create user %s: %v", userData.Email, err)
			continue
		}

		logging.Infof("Created user %s (%s) with ID %d", user.Name, user.Email, user.ID)
		createdCount++
	}

	if existingCount > 0 || createdCount > 0 {
		logging.Infof("Completed Seeding Users - %d existing, %d created", existingCount, createdCount)
	}
	return nil
}
