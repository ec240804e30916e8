package config

import (
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	secret := strings.Repeat("s", 32)

	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "valid config",
			config: Config{
				HTTPPort:    "8080",
				DatabaseDSN: "host=localhost dbname=projectfin",
				JWTSecret:   secret,
			},
		},
		{
			name: "missing jwt secret",
			config: Config{
				HTTPPort:    "8080",
				DatabaseDSN: "host=localhost dbname=projectfin",
			},
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "short jwt secret",
			config: Config{
				HTTPPort:    "8080",
				DatabaseDSN: "host=localhost dbname=projectfin",
				JWTSecret:   "too-short",
			},
			wantErr: "JWT_SECRET must be at least 32 characters",
		},
		{
			name: "missing port",
			config: Config{
				DatabaseDSN: "host=localhost dbname=projectfin",
				JWTSecret:   secret,
			},
			wantErr: "HTTP_PORT must not be empty",
		},
		{
			name: "missing dsn",
			config: Config{
				HTTPPort:  "8080",
				JWTSecret: secret,
			},
			wantErr: "DATABASE_DSN must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
