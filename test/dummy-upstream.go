package main

import (
	"fmt"
	"log"
	"net/http"
)

// Stand-in webhook for manual gateway runs. Answers every POST the way
// the real automation upstream would answer a chat step.
func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"response": "Hello from dummy upstream", "currentStep": 1, "path": "%s"}`, r.URL.Path)
	})

	log.Println("Dummy upstream starting on :3001")
	if err := http.ListenAndServe(":3001", nil); err != nil {
		log.Fatal(err)
	}
}
