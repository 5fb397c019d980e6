package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"slices"

	"github.com/joho/godotenv"
	"github.com/kadro/pricing-estimator/internal/catalog"
	"github.com/kadro/pricing-estimator/internal/models"
	"github.com/kadro/pricing-estimator/internal/storage"
	"github.com/kadro/pricing-estimator/pkg/config"
)

// Loads demo resources and one sample project per template into the
// configured data directory. Safe to run more than once.
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to optional config file (env vars take precedence)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	backend, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	cat, err := catalog.Open(ctx, backend)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	people := []string{"John Doe", "Jane Smith", "Bob Wilson", "Alice Brown"}

	existing := cat.Resources.List()
	for i, role := range cat.Roles.List() {
		name := people[i%len(people)]
		if i >= len(people) {
			name = fmt.Sprintf("%s %d", name, i/len(people)+1)
		}
		if slices.ContainsFunc(existing, func(r models.Resource) bool { return r.Name == name }) {
			continue
		}

		// Loaded rates sit a little above the role's list rate.
		res, err := cat.Resources.Create(ctx, models.Resource{
			Name:       name,
			RoleID:     role.ID,
			LoadedRate: role.DefaultRate + float64(5+(i%4)*5),
		})
		if err != nil {
			log.Fatalf("Failed to add resource %s: %v", name, err)
		}
		log.Printf("Added resource %s (%s, %.2f/h)", res.Name, role.Name, res.LoadedRate)
	}

	if cat.Projects.Len() > 0 {
		log.Printf("Projects already present, skipping sample projects")
		return
	}

	for _, tmpl := range cat.Templates.List() {
		project, err := cat.Instantiate(ctx, tmpl.ID, "Sample "+tmpl.Name+" build")
		if err != nil {
			log.Fatalf("Failed to create sample project from %s: %v", tmpl.Name, err)
		}
		log.Printf("Added project %q: cost %.2f, price %.2f to %.2f",
			project.Name, project.TotalCost, project.MinPrice, project.MaxPrice)
	}
}
