package app

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
	"golang.org/x/time/rate"
)

const (
	DefaultAuthFile = "auth.secret"
	authRealm       = `Basic realm="Beschikbaarheid"`
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Failed logins per client: a burst of 5, then one every 6 seconds.
const (
	failedAuthBurst = 5
	failedAuthEvery = 6 * time.Second
)

// Authenticator guards the widget with Basic Auth. The zero value lets every
// request through.
type Authenticator struct {
	User string
	hash []byte

	logger   *zap.Logger
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// ResolveAuthFile picks the auth file: the configured path, then $AUTH_FILE,
// then auth.secret next to the binary.
func ResolveAuthFile(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if env := os.Getenv("AUTH_FILE"); env != "" {
		return env, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(execPath), DefaultAuthFile), nil
}

// LoadAuthenticator reads "username:hash" from path. A missing file is not
// an error: the widget then runs unprotected.
func LoadAuthenticator(path string, logger *zap.Logger) (*Authenticator, error) {
	a := &Authenticator{logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("no auth file found, the widget is UNPROTECTED; for local development only",
				zap.String("expected_file", path),
				zap.String("hint", "create one with: beschikbaarheid hash-password"),
			)
			return a, nil
		}
		return nil, fmt.Errorf("failed to read auth file: %w", err)
	}

	// Parse auth file (format: username:hash)
	line := strings.TrimSpace(string(data))
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid auth file format (expected: username:hash)")
	}

	a.User = parts[0]
	a.hash = []byte(parts[1])

	logger.Info("basic auth enabled", zap.String("user", a.User), zap.String("file", path))
	return a, nil
}

// Enabled reports whether credentials were loaded.
func (a *Authenticator) Enabled() bool {
	return a != nil && a.hash != nil
}

// HashPassword creates an Argon2id hash of the password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// Encode as: $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads, b64Salt, b64Hash), nil
}

// VerifyPassword verifies a password against an Argon2id hash
func VerifyPassword(password, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("not an argon2id hash")
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(decodedHash)))

	return subtle.ConstantTimeCompare(decodedHash, computedHash) == 1, nil
}

// RequireAuth enforces Basic Auth when credentials are loaded. Clients that
// keep failing get 429 until their limiter refills.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		client := clientHost(r.RemoteAddr)
		limiter := a.limiter(client)
		if limiter.Tokens() < 1 {
			http.Error(w, "Too many failed attempts", http.StatusTooManyRequests)
			return
		}

		user, pass, ok := r.BasicAuth()
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(a.User)) == 1

		passMatch := false
		if ok && userMatch {
			var err error
			passMatch, err = VerifyPassword(pass, string(a.hash))
			if err != nil {
				a.logger.Error("verifying password", zap.Error(err))
				passMatch = false
			}
		}

		if !ok || !userMatch || !passMatch {
			limiter.Allow()
			a.logger.Warn("failed auth attempt", zap.String("client", client), zap.String("user", user))
			w.Header().Set("WWW-Authenticate", authRealm)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) limiter(client string) *rate.Limiter {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limiters == nil {
		a.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := a.limiters[client]
	if !ok {
		l = rate.NewLimiter(rate.Every(failedAuthEvery), failedAuthBurst)
		a.limiters[client] = l
	}
	return l
}

// SweepLimiters forgets clients whose failed-login budget has fully
// refilled and returns how many went.
func (a *Authenticator) SweepLimiters() int {
	return a.sweepLimitersAt(time.Now())
}

func (a *Authenticator) sweepLimitersAt(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	for client, l := range a.limiters {
		if l.TokensAt(now) >= failedAuthBurst {
			delete(a.limiters, client)
			removed++
		}
	}
	return removed
}

// Run sweeps idle limiters every interval until ctx is done.
func (a *Authenticator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.SweepLimiters(); n > 0 {
				a.logger.Debug("idle auth limiters removed", zap.Int("count", n))
			}
		}
	}
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// CreateAuthFile writes username and hashed password to path (mode 0400).
// An existing file is only replaced after confirmation on in, unless
// overwrite is set.
func CreateAuthFile(path, username, password string, overwrite bool, in io.Reader, out io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			fmt.Fprintf(out, "Auth file already exists: %s\n", path)
			fmt.Fprint(out, "Overwrite? (y/N): ")
			response, _ := bufio.NewReader(in).ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				return fmt.Errorf("aborted")
			}
		}
		// The file is read-only, so it has to go before rewriting
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	content := fmt.Sprintf("%s:%s\n", username, hash)
	if err := os.WriteFile(path, []byte(content), 0400); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}

	fmt.Fprintf(out, "Auth file created: %s (mode: 0400 read-only)\n", path)
	fmt.Fprintf(out, "   Username: %s\n", username)
	return nil
}
