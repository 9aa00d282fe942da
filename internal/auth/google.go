package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt"
)

const googleCertsURL = "https://www.googleapis.com/oauth2/v1/certs"

// GoogleProfile is the subset of ID-token claims the backend cares about.
type GoogleProfile struct {
	Email string
	Name  string
}

// VerifyGoogleIDToken validates a Google-issued ID token against Google's
// published signing certificates and returns the profile claims. clientID,
// when non-empty, is enforced against the aud claim.
func VerifyGoogleIDToken(tokenString, clientID string) (*GoogleProfile, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		cert, err := getGooglePemCert(token)
		if err != nil {
			return nil, err
		}

		return jwt.ParseRSAPublicKeyFromPEM([]byte(cert))
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	issuer, _ := claims["iss"].(string)
	if issuer != "accounts.google.com" && issuer != "https://accounts.google.com" {
		return nil, fmt.Errorf("unexpected issuer: %s", issuer)
	}
	if clientID != "" {
		if aud, _ := claims["aud"].(string); aud != clientID {
			return nil, errors.New("token audience mismatch")
		}
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.New("token has no email claim")
	}
	name, _ := claims["name"].(string)

	return &GoogleProfile{Email: email, Name: name}, nil
}

func getGooglePemCert(token *jwt.Token) (string, error) {
	resp, err := http.Get(googleCertsURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// The endpoint serves a kid -> PEM certificate map.
	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return "", err
	}

	kid, _ := token.Header["kid"].(string)
	cert, ok := certs[kid]
	if !ok {
		return "", errors.New("unable to find appropriate key")
	}

	return cert, nil
}
