// Command main runs the database seeder for Plateful.
package main

import (
	"flag"
	"log"

	"plateful/internal/config"
	"plateful/internal/database"
	"plateful/internal/seed"
)

func main() {
	// Parse command line flags
	numProfiles := flag.Int("profiles", 30, "Number of profiles to create")
	numPosts := flag.Int("posts", 150, "Number of meal posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d profiles, %d posts, clean=%v\n", *numProfiles, *numPosts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run seeder
	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	profiles, err := s.SeedProfiles(*numProfiles)
	if err != nil {
		log.Fatalf("Profile seeding failed: %v", err)
	}
	if _, err := s.SeedMeals(profiles, *numPosts); err != nil {
		log.Fatalf("Meal seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with demo data.")
}
