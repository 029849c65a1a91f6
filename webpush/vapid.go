// Package webpush wires the ece codec into a full Generic Event Delivery
// Using HTTP Push sender: VAPID request signing plus the HTTP transport
// the core codec deliberately leaves out of scope.
//
// Generic Event Delivery Using HTTP Push
// https://www.rfc-editor.org/rfc/rfc8030.html
//
// Voluntary Application Server Identification (VAPID) for Web Push
// https://www.rfc-editor.org/rfc/rfc8292
package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daaku/ece"
)

// Urgency directly impacts battery life.
//
// https://www.rfc-editor.org/rfc/rfc8030.html#section-5.3
type Urgency string

const (
	// UrgencyVeryLow targets "On power and Wi-Fi".
	UrgencyVeryLow Urgency = "very-low"
	// UrgencyLow targets "On either power or Wi-Fi".
	UrgencyLow Urgency = "low"
	// UrgencyNormal targets "On neither power nor Wi-Fi".
	UrgencyNormal Urgency = "normal"
	// UrgencyHigh targets any state including "Low battery".
	UrgencyHigh Urgency = "high"
)

func (u Urgency) isValid() bool {
	switch u {
	case UrgencyVeryLow, UrgencyLow, UrgencyNormal, UrgencyHigh:
		return true
	}
	return false
}

// GenerateVAPIDKey will create a private VAPID key in Base64 Raw URL Encoding.
// Generate a key and store it in your configuration. Use ParseVAPIDKey on
// application startup to parse it for use in the Config.
func GenerateVAPIDKey() (string, error) {
	private, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", err
	}
	privateKeyBytes, err := private.Bytes()
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(privateKeyBytes), nil
}

// ParseVAPIDKey parses a private key encoded in Base64 Raw URL Encoding.
// Use GenerateVAPIDKey to generate a key for use in your application.
func ParseVAPIDKey(privateKey string) (*ecdsa.PrivateKey, error) {
	raw, err := ece.DecodeBase64(privateKey)
	if err != nil {
		return nil, err
	}
	return ecdsa.ParseRawPrivateKey(elliptic.P256(), raw)
}

func makeAuthHeader(
	endpoint,
	subscriber string,
	vapidKey *ecdsa.PrivateKey,
	expiration time.Time,
) (string, error) {
	subURL, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if subURL.Scheme == "" || subURL.Host == "" {
		return "", fmt.Errorf("webpush: invalid endpoint: %q", endpoint)
	}

	// Google & Firefox allow for empty Subscriber, but Apple doesn't.
	if !strings.HasPrefix(subscriber, "https:") && !strings.HasPrefix(subscriber, "mailto:") {
		return "", fmt.Errorf("webpush: invalid subscriber: %q", subscriber)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"aud": subURL.Scheme + "://" + subURL.Host,
		"exp": expiration.Unix(),
		"sub": subscriber,
	})

	jwtString, err := token.SignedString(vapidKey)
	if err != nil {
		return "", err
	}

	publicKeyBytes, err := vapidKey.PublicKey.Bytes()
	if err != nil {
		return "", err
	}
	encodedPublicKey := base64.RawURLEncoding.EncodeToString(publicKeyBytes)

	return "vapid t=" + jwtString + ", k=" + encodedPublicKey, nil
}
