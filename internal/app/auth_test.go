package app

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHashPassword(t *testing.T) {
	password := "MySecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	// Check hash format
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("Hash should start with $argon2id$v=19$, got: %s", hash)
	}

	// Hash should be different each time (different salt)
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() failed on second call: %v", err)
	}

	if hash == hash2 {
		t.Error("Two hashes of same password should be different (different salts)")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "MySecurePassword123"
	wrongPassword := "WrongPassword456"

	// Create hash
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{
			name:     "Correct password",
			password: password,
			hash:     hash,
			want:     true,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: wrongPassword,
			hash:     hash,
			want:     false,
			wantErr:  false,
		},
		{
			name:     "Invalid hash format",
			password: password,
			hash:     "invalid",
			want:     false,
			wantErr:  true,
		},
		{
			name:     "Wrong algorithm",
			password: password,
			hash:     "$bcrypt$v=1$m=65536,t=1,p=4$salt$hash",
			want:     false,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateAuthFile(t *testing.T) {
	tmpDir := t.TempDir()
	authFile := filepath.Join(tmpDir, "auth.secret")

	username := "testuser"
	password := "TestPassword123456"

	// Test creating new file
	t.Run("Create new file", func(t *testing.T) {
		var out bytes.Buffer
		err := CreateAuthFile(authFile, username, password, false, strings.NewReader(""), &out)
		if err != nil {
			t.Fatalf("CreateAuthFile() failed: %v", err)
		}

		// Verify file permissions
		info, err := os.Stat(authFile)
		if err != nil {
			t.Fatalf("Failed to stat auth file: %v", err)
		}
		if info.Mode().Perm() != 0400 {
			t.Errorf("Expected file mode 0400 (read-only), got %o", info.Mode().Perm())
		}

		// Verify content format
		content, err := os.ReadFile(authFile)
		if err != nil {
			t.Fatalf("Failed to read auth file: %v", err)
		}

		line := strings.TrimSpace(string(content))
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			t.Fatal("Auth file should contain username:hash")
		}

		if parts[0] != username {
			t.Errorf("Expected username %s, got %s", username, parts[0])
		}

		if !strings.HasPrefix(parts[1], "$argon2id$") {
			t.Error("Hash should be Argon2id format")
		}

		match, err := VerifyPassword(password, parts[1])
		if err != nil {
			t.Fatalf("VerifyPassword() failed: %v", err)
		}
		if !match {
			t.Error("Password verification failed for created hash")
		}
	})

	t.Run("Existing file, declined", func(t *testing.T) {
		var out bytes.Buffer
		err := CreateAuthFile(authFile, "other", password, false, strings.NewReader("n\n"), &out)
		if err == nil {
			t.Fatal("Expected error when overwrite is declined")
		}

		content, _ := os.ReadFile(authFile)
		if !strings.HasPrefix(string(content), username+":") {
			t.Error("File should be unchanged")
		}
	})

	t.Run("Existing file, confirmed", func(t *testing.T) {
		var out bytes.Buffer
		err := CreateAuthFile(authFile, "confirmed", password, false, strings.NewReader("y\n"), &out)
		if err != nil {
			t.Fatalf("CreateAuthFile() with confirmation failed: %v", err)
		}

		content, _ := os.ReadFile(authFile)
		if !strings.HasPrefix(string(content), "confirmed:") {
			t.Error("File should be overwritten after confirmation")
		}
	})

	// Test overwrite with flag
	t.Run("Overwrite with flag", func(t *testing.T) {
		var out bytes.Buffer
		err := CreateAuthFile(authFile, "newuser", "NewPassword123456", true, strings.NewReader(""), &out)
		if err != nil {
			t.Fatalf("CreateAuthFile() with overwrite failed: %v", err)
		}

		content, _ := os.ReadFile(authFile)
		if !strings.HasPrefix(string(content), "newuser:") {
			t.Error("File should be overwritten with new username")
		}
	})
}

func TestLoadAuthenticator(t *testing.T) {
	tests := []struct {
		name        string
		setupFile   func(string) error
		wantUser    string
		wantErr     bool
		wantEnabled bool
	}{
		{
			name: "Valid auth file",
			setupFile: func(path string) error {
				hash, _ := HashPassword("TestPassword123456")
				return os.WriteFile(path, []byte("testuser:"+hash), 0600)
			},
			wantUser:    "testuser",
			wantEnabled: true,
		},
		{
			name: "File not exists (dev mode)",
			setupFile: func(path string) error {
				return nil // Don't create file
			},
		},
		{
			name: "Invalid format (missing colon)",
			setupFile: func(path string) error {
				return os.WriteFile(path, []byte("invalidformat"), 0600)
			},
			wantErr: true,
		},
		{
			name: "Invalid format (empty)",
			setupFile: func(path string) error {
				return os.WriteFile(path, []byte(""), 0600)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authFile := filepath.Join(t.TempDir(), "auth.secret")

			if err := tt.setupFile(authFile); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}

			auth, err := LoadAuthenticator(authFile, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadAuthenticator() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}

			if auth.User != tt.wantUser {
				t.Errorf("User = %s, want %s", auth.User, tt.wantUser)
			}
			if auth.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", auth.Enabled(), tt.wantEnabled)
			}
		})
	}
}

func TestResolveAuthFile(t *testing.T) {
	t.Setenv("AUTH_FILE", "/etc/beschikbaarheid/auth.secret")

	got, err := ResolveAuthFile("custom.secret")
	if err != nil || got != "custom.secret" {
		t.Errorf("ResolveAuthFile(custom) = %q, %v", got, err)
	}

	got, err = ResolveAuthFile("")
	if err != nil || got != "/etc/beschikbaarheid/auth.secret" {
		t.Errorf("ResolveAuthFile(env) = %q, %v", got, err)
	}
}

func TestRequireAuth(t *testing.T) {
	// Setup test handler
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	})

	// Create a valid hash for testing
	password := "TestPassword123456"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to create test hash: %v", err)
	}

	protected := func() *Authenticator {
		return &Authenticator{User: "admin", hash: []byte(hash), logger: zap.NewNop()}
	}

	tests := []struct {
		name           string
		auth           *Authenticator
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Valid credentials",
			auth:           protected(),
			authHeader:     "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:"+password)),
			expectedStatus: http.StatusOK,
			expectedBody:   "success",
		},
		{
			name:           "Invalid password",
			auth:           protected(),
			authHeader:     "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:wrongpassword")),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Unauthorized\n",
		},
		{
			name:           "Invalid username",
			auth:           protected(),
			authHeader:     "Basic " + base64.StdEncoding.EncodeToString([]byte("wronguser:"+password)),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Unauthorized\n",
		},
		{
			name:           "No auth header",
			auth:           protected(),
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Unauthorized\n",
		},
		{
			name:           "Dev mode (no auth file)",
			auth:           &Authenticator{logger: zap.NewNop()},
			authHeader:     "",
			expectedStatus: http.StatusOK,
			expectedBody:   "success",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			tt.auth.RequireAuth(testHandler).ServeHTTP(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}

			body := w.Body.String()
			if body != tt.expectedBody {
				t.Errorf("Expected body %q, got %q", tt.expectedBody, body)
			}

			// Check WWW-Authenticate header on 401
			if tt.expectedStatus == http.StatusUnauthorized {
				if resp.Header.Get("WWW-Authenticate") == "" {
					t.Error("Expected WWW-Authenticate header on 401")
				}
			}
		})
	}
}

func TestRequireAuthThrottlesFailures(t *testing.T) {
	hash, err := HashPassword("TestPassword123456")
	if err != nil {
		t.Fatalf("Failed to create test hash: %v", err)
	}
	auth := &Authenticator{User: "admin", hash: []byte(hash), logger: zap.NewNop()}
	handler := auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	wrong := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:wrong"))
	for i := 0; i < failedAuthBurst; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", wrong)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", wrong)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after %d failures, got %d", failedAuthBurst, w.Code)
	}

	// Other clients are not affected
	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.9:4321"
	req.Header.Set("Authorization", wrong)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for another client, got %d", w.Code)
	}
}

func TestArgon2idParameters(t *testing.T) {
	// Test that our Argon2id parameters are reasonable
	if argon2Memory < 64*1024 {
		t.Error("Argon2id memory should be at least 64MB (OWASP recommendation)")
	}

	if argon2Time < 1 {
		t.Error("Argon2id time parameter should be at least 1")
	}

	if argon2Threads < 1 {
		t.Error("Argon2id threads should be at least 1")
	}

	if argon2KeyLen < 32 {
		t.Error("Argon2id key length should be at least 32 bytes")
	}

	if saltLen < 16 {
		t.Error("Salt length should be at least 16 bytes")
	}
}

func TestSweepLimiters(t *testing.T) {
	hash, err := HashPassword("TestPassword123456")
	if err != nil {
		t.Fatalf("Failed to create test hash: %v", err)
	}
	auth := &Authenticator{User: "admin", hash: []byte(hash), logger: zap.NewNop()}
	handler := auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:wrong")))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := len(auth.limiters); got != 2 {
		t.Fatalf("Expected 2 limiters, got %d", got)
	}

	// Budgets are still partly spent
	if n := auth.sweepLimitersAt(time.Now()); n != 0 {
		t.Errorf("Expected no limiter removed yet, got %d", n)
	}

	// One refill interval later both budgets are full again
	if n := auth.sweepLimitersAt(time.Now().Add(failedAuthEvery)); n != 2 {
		t.Errorf("Expected 2 limiters removed, got %d", n)
	}
	if got := len(auth.limiters); got != 0 {
		t.Errorf("Expected empty limiter map, got %d", got)
	}
}
