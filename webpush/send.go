package webpush

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/daaku/ece"
)

const (
	// Push services are not required to support more than this.
	// Apple for example does not.
	maxRecordSize = 4096

	// header: 86 (aes128gcm header + 65-byte keyId) + padding: minimum 1
	// + AEAD_AES_128_GCM expansion: 16.
	minOverhead = 86 + 1 + ece.TagLength
)

// Keys are the Base64 encoded values from the User Agent.
type Keys struct {
	Auth   string `json:"auth"`
	P256dh string `json:"p256dh"`
}

// Subscription represents a PushSubscription from the User Agent.
type Subscription struct {
	Endpoint string `json:"endpoint"`
	Keys     Keys   `json:"keys"`
}

// Config specifies required and optional aspects for sending a Push Notification.
type Config struct {
	Client          *http.Client      // Required http.Client.
	VAPIDKey        *ecdsa.PrivateKey // Required VAPID Private Key.
	Subscriber      string            // Required Subscriber, https URL or mailto: email address.
	TTL             time.Duration     // Required TTL on the endpoint POST request (truncated to whole seconds).
	Topic           string            // Optional Topic to collapse pending messages.
	Urgency         Urgency           // Optional Urgency for message priority.
	RecordSize      int               // Optional custom RecordSize, defaults to 4096.
	PadLen          uint64            // Optional aes128gcm/aesgcm padding length, defaults to 0.
	VAPIDExpiration time.Time         // Optional custom expiration for VAPID JWT token (defaults to now + 12 hours).
}

func validateSubscription(s *Subscription) (authSecret, recvPub []byte, err error) {
	if s.Endpoint == "" || s.Keys.Auth == "" || s.Keys.P256dh == "" {
		return nil, nil, fmt.Errorf("webpush: invalid subscription, missing endpoint or keys")
	}
	authSecret, err = ece.DecodeBase64(s.Keys.Auth)
	if err != nil {
		return nil, nil, fmt.Errorf("webpush: invalid auth in key: %w", err)
	}
	recvPub, err = ece.DecodeBase64(s.Keys.P256dh)
	if err != nil {
		return nil, nil, fmt.Errorf("webpush: invalid public key: %w", err)
	}
	return authSecret, recvPub, nil
}

func buildRequest(ctx context.Context, s *Subscription, conf *Config, body []byte, contentEncoding string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Encoding", contentEncoding)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("TTL", strconv.Itoa(int(conf.TTL.Seconds())))

	if conf.Topic != "" {
		req.Header.Set("Topic", conf.Topic)
	}
	if conf.Urgency != "" {
		if !conf.Urgency.isValid() {
			return nil, fmt.Errorf("webpush: invalid urgency %q", conf.Urgency)
		}
		req.Header.Set("Urgency", string(conf.Urgency))
	}

	expiration := conf.VAPIDExpiration
	if expiration.IsZero() {
		expiration = time.Now().Add(time.Hour * 12)
	}
	authHeader, err := makeAuthHeader(s.Endpoint, conf.Subscriber, conf.VAPIDKey, expiration)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authHeader)

	return req, nil
}

// Send a Push Notification to a Subscription using the standardized
// "aes128gcm" content encoding.
func Send(ctx context.Context, message []byte, s *Subscription, conf *Config) (*http.Response, error) {
	recordSize := conf.RecordSize
	if recordSize == 0 {
		recordSize = maxRecordSize
	}
	if len(message) > recordSize-minOverhead {
		return nil, fmt.Errorf(
			"webpush: message length of %v is too long for record size of %v",
			len(message), recordSize)
	}

	authSecret, recvPub, err := validateSubscription(s)
	if err != nil {
		return nil, err
	}

	payload, err := ece.EncryptAES128GCM(recvPub, authSecret, uint32(recordSize), conf.PadLen, message)
	if err != nil {
		return nil, fmt.Errorf("webpush: encrypt: %w", err)
	}

	req, err := buildRequest(ctx, s, conf, payload, "aes128gcm")
	if err != nil {
		return nil, err
	}
	return conf.Client.Do(req)
}

// SendLegacy sends a Push Notification using the older "aesgcm" content
// encoding, carrying key material in the Crypto-Key and Encryption
// headers instead of a binary payload prefix. Kept for push services
// that have not migrated to "aes128gcm".
func SendLegacy(ctx context.Context, message []byte, s *Subscription, conf *Config) (*http.Response, error) {
	recordSize := conf.RecordSize
	if recordSize == 0 {
		recordSize = maxRecordSize
	}

	authSecret, recvPub, err := validateSubscription(s)
	if err != nil {
		return nil, err
	}

	senderKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("webpush: generate sender key: %w", err)
	}

	salt := make([]byte, ece.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("webpush: generate salt: %w", err)
	}

	ciphertext, headers, err := ece.EncryptWebPushAESGCM(
		senderKey.Bytes(), authSecret, salt, recvPub, uint32(recordSize), conf.PadLen, message)
	if err != nil {
		return nil, fmt.Errorf("webpush: encrypt: %w", err)
	}

	req, err := buildRequest(ctx, s, conf, ciphertext, "aesgcm")
	if err != nil {
		return nil, err
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	return conf.Client.Do(req)
}
