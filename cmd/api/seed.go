package main

import (
	"context"
	"fmt"
	"os"

	"shareit/internal/api"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Name     string        `yaml:"name"`
	Email    string        `yaml:"email"`
	Items    []seedItem    `yaml:"items"`
	Requests []seedRequest `yaml:"requests"`
}

type seedItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

type seedRequest struct {
	Description string `yaml:"description"`
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// applySeed populates an empty database. A database that already has users is left alone.
func applySeed(ctx context.Context, path string, deps api.Dependencies, logger *zerolog.Logger) error {
	existing, err := deps.Users.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info().Str("seed_path", path).Msg("Database not empty, skipping seed")
		return nil
	}

	seed, err := loadSeed(path)
	if err != nil {
		return err
	}

	var items int
	for _, su := range seed.Users {
		user, err := deps.Users.AddUser(ctx, models.UserInput{Name: su.Name, Email: su.Email})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		for _, si := range su.Items {
			in := models.ItemInput{Name: si.Name, Description: si.Description, Available: si.Available}
			if _, err := deps.Items.AddItem(ctx, user.ID, in); err != nil {
				return fmt.Errorf("seed item %s: %w", si.Name, err)
			}
			items++
		}
		for _, sr := range su.Requests {
			if _, err := deps.Requests.AddRequest(ctx, user.ID, models.RequestInput{Description: sr.Description}); err != nil {
				return fmt.Errorf("seed request for %s: %w", su.Email, err)
			}
		}
	}

	logger.Info().Int("users", len(seed.Users)).Int("items", items).Msg("Seed applied")
	return nil
}
