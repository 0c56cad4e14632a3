package flash

import (
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

const (
	CookieName = "qrgen_flash"
	DefaultTTL = 5 * time.Minute

	issuer  = "qrgen"
	keyInfo = "qrgen flash cookie v1"
)

const (
	CategoryError   = "error"
	CategorySuccess = "success"
)

// Message is a one-shot notice shown on the next page render.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"message"`
}

type claims struct {
	Messages []Message `json:"msgs"`
	jwt.RegisteredClaims
}

// Store keeps pending messages in a signed cookie, so the server holds no session state.
type Store struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewStore(secret string) (*Store, error) {
	if secret == "" {
		return nil, errors.New("flash: secret key is required")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}
	return &Store{key: key, ttl: DefaultTTL, now: time.Now}, nil
}

// Add queues a message on top of whatever the request already carried.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, category, text string) {
	msgs := append(s.read(r), Message{Category: category, Text: text})

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign flash cookie")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and clears the cookie.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Message {
	msgs := s.read(r)
	if _, err := r.Cookie(CookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return msgs
}

func (s *Store) read(r *http.Request) []Message {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	var c claims
	_, err = jwt.ParseWithClaims(cookie.Value, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		log.Debug().Err(err).Msg("discarding invalid flash cookie")
		return nil
	}
	return c.Messages
}
