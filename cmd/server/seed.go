package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/enum"
)

type seedFood struct {
	name, foodType, category, unit string
	quantity, price                string
	calories, protein, carbs, fat  float64
	keywords                       string
}

var starterCatalog = []seedFood{
	{"Idli", "Veg", "Breakfast", "pcs", "2", "30", 78, 2, 17, 0.2, "idli steamed rice cake"},
	{"Upma", "Veg", "Breakfast", "bowl", "1", "35", 250, 6, 40, 7, "upma rava semolina"},
	{"Vegetable Soup", "Veg", "Brunch", "bowl", "1", "25", 80, 3, 12, 2, "soup vegetable clear"},
	{"Plain Rice", "Veg", "Lunch", "bowl", "1", "30", 205, 4, 45, 0.4, "rice white steamed"},
	{"Dal", "Veg", "Lunch", "bowl", "1", "40", 180, 9, 27, 4, "dal lentil curry"},
	{"Chapati", "Veg", "Dinner", "pcs", "2", "20", 240, 8, 36, 6, "chapati roti wheat"},
	{"Chicken Stew", "Non-Veg", "Dinner", "bowl", "1", "90", 320, 28, 10, 18, "chicken stew curry"},
	{"Fruit Salad", "Veg", "Evening", "bowl", "1", "45", 120, 1, 30, 0.5, "fruit salad fresh"},
}

func seedCmd() *cobra.Command {
	var username, password, fullName, role string
	var skipCatalog bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a staff user and the starter food catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Fall back to environment variables, then defaults.
			username = firstNonEmpty(username, os.Getenv("SEED_USERNAME"), "admin")
			fullName = firstNonEmpty(fullName, os.Getenv("SEED_NAME"), "Ward Administrator")
			role = firstNonEmpty(role, os.Getenv("SEED_ROLE"), enum.StaffRoleAdmin)
			password = firstNonEmpty(password, os.Getenv("SEED_PASSWORD"))
			if password == "" {
				password = "password123"
				log.Warn().Msg("using default password 'password123', change it immediately outside development")
			}
			if !slices.Contains([]string{
				enum.StaffRoleAdmin, enum.StaffRoleDietician, enum.StaffRoleNurse, enum.StaffRoleCanteen,
			}, role) {
				return fmt.Errorf("unknown role %q", role)
			}

			ctx := cmd.Context()
			pool, err := database.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			// Seed in one transaction: user and catalog or neither.
			tx, err := pool.Begin(ctx)
			if err != nil {
				return fmt.Errorf("begin transaction: %w", err)
			}
			defer tx.Rollback(ctx)
			qtx := database.New(tx)

			user, err := seedStaffUser(ctx, qtx, username, password, fullName, role)
			if err != nil {
				return err
			}

			created := 0
			if !skipCatalog {
				if created, err = seedCatalog(ctx, qtx); err != nil {
					return err
				}
			}

			if err := tx.Commit(ctx); err != nil {
				return fmt.Errorf("commit: %w", err)
			}

			log.Info().
				Str("user_id", user.ID.String()).
				Str("username", user.Username).
				Str("role", user.Role).
				Int("food_items_created", created).
				Msg("seed completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Staff username (env SEED_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Staff password (env SEED_PASSWORD)")
	cmd.Flags().StringVar(&fullName, "name", "", "Staff full name (env SEED_NAME)")
	cmd.Flags().StringVar(&role, "role", "", "ADMIN, DIETICIAN, NURSE or CANTEEN (env SEED_ROLE)")
	cmd.Flags().BoolVar(&skipCatalog, "skip-catalog", false, "Only seed the staff user")
	return cmd
}

// seedStaffUser creates the user or resets its password and role.
func seedStaffUser(ctx context.Context, q *database.Queries, username, password, fullName, role string) (database.StaffUser, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.StaffUser{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return database.StaffUser{}, fmt.Errorf("generate user id: %w", err)
	}

	user, err := q.UpsertStaffUser(ctx, database.UpsertStaffUserParams{
		ID:           id,
		Username:     username,
		PasswordHash: string(hashed),
		FullName:     fullName,
		Role:         role,
	})
	if err != nil {
		return database.StaffUser{}, fmt.Errorf("upsert staff user: %w", err)
	}
	return user, nil
}

// seedCatalog inserts the starter food items missing from the catalog by name.
func seedCatalog(ctx context.Context, q *database.Queries) (int, error) {
	existing, err := q.ListFoodItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list food items: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, f := range existing {
		names[f.Name] = true
	}

	created := 0
	for _, f := range starterCatalog {
		if names[f.name] {
			log.Debug().Str("name", f.name).Msg("food item exists, skipping")
			continue
		}

		id, err := uuid.NewV7()
		if err != nil {
			return created, fmt.Errorf("generate food item id: %w", err)
		}
		qty := decimal.RequireFromString(f.quantity)
		price := decimal.RequireFromString(f.price)

		_, err = q.CreateFoodItem(ctx, database.CreateFoodItemParams{
			ID:            id,
			Name:          f.name,
			FoodType:      f.foodType,
			Category:      f.category,
			Unit:          f.unit,
			Quantity:      database.DecimalToNumeric(qty),
			Calories:      f.calories,
			Protein:       f.protein,
			Carbohydrates: f.carbs,
			Fat:           f.fat,
			Price:         database.DecimalToNumeric(price),
			PricePerUnit:  database.DecimalToNumeric(price.Div(qty).Round(2)),
			Keywords:      f.keywords,
		})
		if err != nil {
			return created, fmt.Errorf("insert food item %s: %w", f.name, err)
		}
		created++
	}
	return created, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
