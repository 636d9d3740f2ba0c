package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"swadiq-lms/app/config"
	"swadiq-lms/app/models"
	"swadiq-lms/app/routes/auth"
)

// Issues a token in the identity provider's format for local testing of the API
func main() {
	id := flag.String("id", "", "user id (uuid); generated when empty")
	email := flag.String("email", "", "user email")
	first := flag.String("first", "", "first name")
	last := flag.String("last", "", "last name")
	roles := flag.String("roles", "teacher", "comma separated roles (admin, teacher, student)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	actor := &models.Actor{
		ID:        *id,
		Email:     *email,
		FirstName: *first,
		LastName:  *last,
	}
	if actor.ID == "" {
		actor.ID = uuid.NewString()
	} else if _, err := uuid.Parse(actor.ID); err != nil {
		log.Fatalf("Invalid user id %q: %v", actor.ID, err)
	}
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			actor.Roles = append(actor.Roles, models.Role(r))
		}
	}

	token, err := auth.GenerateJWT(cfg.Auth.JWTSecret, actor, *ttl)
	if err != nil {
		log.Fatalf("Error generating token: %v", err)
	}

	fmt.Printf("User %s (%s) roles=%v\n", actor.ID, actor.Email, actor.Roles)
	fmt.Println(token)
}
