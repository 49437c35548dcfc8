// Package main is a command-line client for the authentication server. The
// session cookie is kept in a local file so that consecutive invocations
// share one login.
package main

import (
	"cmp"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atinyakov/cookieauth/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and dispatches to a single API command.
func main() {
	var (
		cmd         string
		baseURL     string
		caFile      string
		sessionFile string
		creds       client.Credentials
		showVer     bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: signup | login | logout | me | users")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for HTTPS servers")
	flag.StringVar(&sessionFile, "session", client.DefaultSessionFile, "path to the session file")
	flag.StringVar(&creds.Name, "name", "", "display name for signup")
	flag.StringVar(&creds.Email, "email", "", "account email")
	flag.StringVar(&creds.Password, "password", "", "account password")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("cookieauth client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	httpClient, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	c := client.New(baseURL, httpClient, client.NewSessionStore(sessionFile))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "signup":
		creds, err = client.PromptCredentials(os.Stdin, os.Stdout, creds, true)
		if err != nil {
			log.Fatal(err)
		}
		msg, err := c.SignUp(ctx, creds.Name, creds.Email, creds.Password)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(msg)
	case "login":
		creds, err = client.PromptCredentials(os.Stdin, os.Stdout, creds, false)
		if err != nil {
			log.Fatal(err)
		}
		msg, err := c.Login(ctx, creds.Email, creds.Password)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(msg)
	case "logout":
		msg, err := c.Logout(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(msg)
	case "me":
		me, err := c.Me(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(me)
	case "users":
		users, err := c.Users(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(users)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
