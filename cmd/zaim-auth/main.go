// Command zaim-auth runs the Zaim OAuth 1.0a out-of-band flow and prints
// the access token pair to put in ZAIM_ACCESS_TOKEN and
// ZAIM_ACCESS_TOKEN_SECRET.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"warikan/internal/cli"
	"warikan/internal/zaim"
)

func main() {
	cli.LoadEnvFile()

	key := os.Getenv("ZAIM_CONSUMER_KEY")
	secret := os.Getenv("ZAIM_CONSUMER_SECRET")
	if key == "" || secret == "" {
		log.Fatalf("set ZAIM_CONSUMER_KEY and ZAIM_CONSUMER_SECRET")
	}

	auth := zaim.NewAuthorizer(key, secret, zaim.Endpoint)
	rt, authURL, err := auth.Start()
	if err != nil {
		log.Fatalf("start authorization: %v", err)
	}

	fmt.Printf("Open this URL to authorize:\n%s\n\n", authURL)
	fmt.Print("Enter the verification code: ")

	verifier, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		log.Fatalf("read verifier: %v", err)
	}

	creds, err := auth.Complete(rt, strings.TrimSpace(verifier))
	if err != nil {
		log.Fatalf("complete authorization: %v", err)
	}

	fmt.Println()
	fmt.Printf("ZAIM_ACCESS_TOKEN=%s\n", creds.AccessToken)
	fmt.Printf("ZAIM_ACCESS_TOKEN_SECRET=%s\n", creds.AccessTokenSecret)
}
