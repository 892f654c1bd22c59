package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/quizpay/quizpay-api/config"
	"github.com/quizpay/quizpay-api/pkg/helpers"
)

type seedQuestion struct {
	Category string
	Text     string
	Options  map[string]string
	Answer   string
}

var questions = []seedQuestion{
	{
		Category: "geography",
		Text:     "What is the capital of France?",
		Options:  map[string]string{"a": "Paris", "b": "London", "c": "Berlin", "d": "Madrid"},
		Answer:   "a",
	},
	{
		Category: "geography",
		Text:     "Which river flows through Cairo?",
		Options:  map[string]string{"a": "Danube", "b": "Nile", "c": "Amazon", "d": "Ganges"},
		Answer:   "b",
	},
	{
		Category: "science",
		Text:     "What is the chemical symbol for gold?",
		Options:  map[string]string{"a": "Ag", "b": "Fe", "c": "Au", "d": "Pb"},
		Answer:   "c",
	},
	{
		Category: "science",
		Text:     "How many planets orbit the Sun?",
		Options:  map[string]string{"a": "7", "b": "8", "c": "9", "d": "10"},
		Answer:   "b",
	},
	{
		Category: "history",
		Text:     "In which year did World War II end?",
		Options:  map[string]string{"a": "1943", "b": "1944", "c": "1945", "d": "1946"},
		Answer:   "c",
	},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@quizpay.dev"
	password := "password123"
	name := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d email=%s password=%s\n", id, email, password)

	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			log.Fatalf("failed to marshal options: %v", err)
		}
		var qid int64
		err = db.QueryRow(`
			INSERT INTO questions (category, question, options, answer)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (question) DO UPDATE SET category = EXCLUDED.category
			RETURNING id
		`, q.Category, q.Text, opts, q.Answer).Scan(&qid)
		if err != nil {
			log.Fatalf("failed to seed question: %v", err)
		}
		fmt.Printf("seeded question: id=%d category=%s\n", qid, q.Category)
	}
}
