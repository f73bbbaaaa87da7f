package objectstore

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Region:    "us-east-1",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	invalid := valid
	invalid.Endpoint = "http://localhost:9000"
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for scheme in endpoint")
	}

	invalid = valid
	invalid.SecretKey = " "
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for blank secret")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		useSSL   bool
		wantHost string
		wantSSL  bool
	}{
		{raw: "http://localhost:9000/", useSSL: true, wantHost: "localhost:9000", wantSSL: false},
		{raw: "https://s3.eu-west-1.amazonaws.com", useSSL: false, wantHost: "s3.eu-west-1.amazonaws.com", wantSSL: true},
		{raw: "minio:9000", useSSL: false, wantHost: "minio:9000", wantSSL: false},
	}
	for _, tt := range tests {
		host, ssl := NormalizeEndpoint(tt.raw, tt.useSSL)
		if host != tt.wantHost || ssl != tt.wantSSL {
			t.Fatalf("NormalizeEndpoint(%q)=(%q,%v), want (%q,%v)", tt.raw, host, ssl, tt.wantHost, tt.wantSSL)
		}
	}
}

func TestNewMinIOClient(t *testing.T) {
	client, err := NewMinIOClient(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	if err != nil {
		t.Fatalf("NewMinIOClient() err=%v", err)
	}
	if client.EndpointURL().Host != "localhost:9000" {
		t.Fatalf("endpoint=%q", client.EndpointURL().Host)
	}
}

func TestNewTransportDialTimeout(t *testing.T) {
	if got := newTransport(0).TLSHandshakeTimeout; got != defaultDialTimeout {
		t.Fatalf("default TLSHandshakeTimeout=%v, want %v", got, defaultDialTimeout)
	}
	if got := newTransport(2 * time.Second).TLSHandshakeTimeout; got != 2*time.Second {
		t.Fatalf("TLSHandshakeTimeout=%v, want 2s", got)
	}
}

func TestConfigFromEnvSessionToken(t *testing.T) {
	t.Setenv("FAL_S3_ENDPOINT", "localhost:9000")
	t.Setenv("FAL_S3_ACCESS_KEY_ID", "a")
	t.Setenv("FAL_S3_ACCESS_KEY", "b")
	t.Setenv("FAL_S3_SESSION_TOKEN", "tok")
	t.Setenv("FAL_S3_DIAL_TIMEOUT", "3s")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.SessionToken != "tok" || cfg.DialTimeout != 3*time.Second {
		t.Fatalf("cfg=%+v", cfg)
	}

	t.Setenv("FAL_S3_DIAL_TIMEOUT", "soon")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("ConfigFromEnv() expected error for bad dial timeout")
	}
}
