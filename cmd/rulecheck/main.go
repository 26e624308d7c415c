package main

import (
	"log"

	"github.com/Hasstatas/MFA-scanner/internal/rules"
)

func main() {
	store, err := rules.LoadStore()
	if err != nil {
		log.Fatalf("rule pack: FAIL (%v)", err)
	}
	log.Println("rule pack: OK")

	log.Printf("strategies count: %d", len(store.All()))
	for _, r := range store.All() {
		log.Printf("- [%s] %s (keywords=%d, regex=%d, exclude=%d)",
			r.ID, r.Name, len(r.Keywords), len(r.RegexAny), len(r.Exclude))
	}
}
