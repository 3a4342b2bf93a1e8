// Command tokengen mints an access token the IdeaForge server accepts. It
// stands in for the identity provider during development.
//
//	tokengen -user alice -secret "$SECRET" -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/ideaforge/internal/server/auth"
	"github.com/dmitrijs2005/ideaforge/internal/server/config"
)

func main() {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	fs := flag.NewFlagSet("tokengen", flag.ExitOnError)
	userID := fs.String("user", "", "user id to put into the token subject")
	secret := fs.String("secret", defaults.SecretKey, "HMAC secret shared with the server")
	ttl := fs.Duration("ttl", defaults.AccessTokenValidityDuration, "token validity")
	_ = fs.Parse(os.Args[1:])

	if *userID == "" {
		fs.Usage()
		os.Exit(2)
	}

	token, err := auth.GenerateToken(*userID, []byte(*secret), *ttl)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(token)
}
