package zaim

import (
	"fmt"

	"github.com/dghubble/oauth1"
)

// Endpoint is the three-legged OAuth 1.0a endpoint set of Zaim.
var Endpoint = oauth1.Endpoint{
	RequestTokenURL: "https://api.zaim.net/v2/auth/request",
	AuthorizeURL:    "https://auth.zaim.net/users/auth",
	AccessTokenURL:  "https://api.zaim.net/v2/auth/access",
}

// Authorizer runs the out-of-band flow that yields access credentials.
type Authorizer struct {
	config *oauth1.Config
}

// RequestToken is the temporary credential pair of an authorisation in progress.
type RequestToken struct {
	Token  string
	Secret string
}

func NewAuthorizer(consumerKey, consumerSecret string, endpoint oauth1.Endpoint) *Authorizer {
	return &Authorizer{config: &oauth1.Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		CallbackURL:    "oob",
		Endpoint:       endpoint,
	}}
}

// Start obtains a request token and the URL the user must open.
func (a *Authorizer) Start() (RequestToken, string, error) {
	token, secret, err := a.config.RequestToken()
	if err != nil {
		return RequestToken{}, "", fmt.Errorf("request token: %w", err)
	}
	authURL, err := a.config.AuthorizationURL(token)
	if err != nil {
		return RequestToken{}, "", fmt.Errorf("authorization url: %w", err)
	}
	return RequestToken{Token: token, Secret: secret}, authURL.String(), nil
}

// Complete exchanges the verifier shown to the user for access credentials.
func (a *Authorizer) Complete(rt RequestToken, verifier string) (Credentials, error) {
	if verifier == "" {
		return Credentials{}, fmt.Errorf("empty verifier")
	}
	token, secret, err := a.config.AccessToken(rt.Token, rt.Secret, verifier)
	if err != nil {
		return Credentials{}, fmt.Errorf("access token: %w", err)
	}
	return Credentials{
		ConsumerKey:       a.config.ConsumerKey,
		ConsumerSecret:    a.config.ConsumerSecret,
		AccessToken:       token,
		AccessTokenSecret: secret,
	}, nil
}
