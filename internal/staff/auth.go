package staff

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

// ErrBadCredentials is returned on a failed login attempt.
var ErrBadCredentials = errors.New("staff: invalid username or password")

// ErrSessionInvalid is returned for tokens that are malformed, expired, or
// bound to a revoked device.
var ErrSessionInvalid = errors.New("staff: session invalid")

// Session is the authenticated context attached to staff requests.
type Session struct {
	DeviceID   string
	Remembered bool
}

// sessionClaims binds a token to its device registry entry.
type sessionClaims struct {
	DeviceID   string `json:"did"`
	Remembered bool   `json:"rem"`
	jwt.RegisteredClaims
}

// Gate is the shared-credential access gate for the staff dashboard.
//
// This is deliberately NOT an identity system: one static credential pair
// from the environment guards the whole surface. Anything beyond a single
// dentist's practice needs a real identity provider in front of this.
type Gate struct {
	username    string
	password    string
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
	devices     *DeviceStore
	logger      *logging.Logger
	now         func() time.Time
}

// NewGate builds the access gate.
func NewGate(username, password, secret string, sessionTTL, rememberTTL time.Duration, devices *DeviceStore, logger *logging.Logger) *Gate {
	if devices == nil {
		panic("staff: device store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		username:    username,
		password:    password,
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		devices:     devices,
		logger:      logger,
		now:         time.Now,
	}
}

// Login checks the credential pair and mints a token bound to a fresh device
// registry entry. rememberDevice extends the lifetime from hours to weeks.
func (g *Gate) Login(ctx context.Context, username, password string, rememberDevice bool, deviceLabel string) (string, Device, error) {
	if g.username == "" || g.password == "" || len(g.secret) == 0 {
		return "", Device{}, fmt.Errorf("staff: gate not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !userOK || !passOK {
		g.logger.Warn("staff login rejected", "username", username)
		return "", Device{}, ErrBadCredentials
	}

	now := g.now()
	ttl := g.sessionTTL
	if rememberDevice {
		ttl = g.rememberTTL
	}
	device := Device{
		ID:         uuid.NewString(),
		Label:      deviceLabel,
		Remembered: rememberDevice,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := g.devices.Register(ctx, device); err != nil {
		return "", Device{}, err
	}

	claims := sessionClaims{
		DeviceID:   device.ID,
		Remembered: rememberDevice,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "staff",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(device.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", Device{}, fmt.Errorf("staff: sign token: %w", err)
	}

	g.logger.Info("staff login", "device_id", device.ID, "remembered", rememberDevice)
	return token, device, nil
}

// Verify parses a bearer token and checks its device is still registered.
func (g *Gate) Verify(ctx context.Context, tokenString string) (*Session, error) {
	claims := sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid || claims.DeviceID == "" {
		return nil, ErrSessionInvalid
	}

	active, err := g.devices.Active(ctx, claims.DeviceID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrSessionInvalid
	}
	return &Session{DeviceID: claims.DeviceID, Remembered: claims.Remembered}, nil
}

// Logout revokes the session's device.
func (g *Gate) Logout(ctx context.Context, deviceID string) error {
	return g.devices.Revoke(ctx, deviceID)
}
