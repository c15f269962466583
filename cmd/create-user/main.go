// create-user adds a login with a bcrypt-hashed password and a fresh auth
// token. Details and goals are filled in later through the API.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type newUser struct {
	Username string
	Email    string
	Password string
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer conn.Close(ctx)

	u, err := prompt(bufio.NewReader(os.Stdin))
	if err != nil {
		log.Fatal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	authToken := uuid.New().String()

	var userID int
	err = conn.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @authToken) RETURNING id`,
		pgx.NamedArgs{"username": u.Username, "email": u.Email, "password": string(hash), "authToken": authToken},
	).Scan(&userID)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Auth Token: %s\n", authToken)
	fmt.Println("Next: PUT /api/user-details, then POST /api/goals.")
}

// prompt reads username, email and password from r, one per line.
func prompt(r *bufio.Reader) (newUser, error) {
	var u newUser
	fields := []struct {
		label string
		dst   *string
	}{
		{"Username", &u.Username},
		{"Email", &u.Email},
		{"Password", &u.Password},
	}
	for _, f := range fields {
		fmt.Printf("%s: ", f.label)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return newUser{}, fmt.Errorf("read %s: %w", strings.ToLower(f.label), err)
		}
		*f.dst = strings.TrimSpace(line)
		if *f.dst == "" {
			return newUser{}, fmt.Errorf("%s is required", strings.ToLower(f.label))
		}
	}
	if len(u.Password) < 8 {
		return newUser{}, errors.New("password must be at least 8 characters")
	}
	return u, nil
}
