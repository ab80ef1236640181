package outlay_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for Outlay end-to-end tests.
 * This includes container setup, account activation and assertions.
 */

const (
	testImageName = "outlay-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminEmail     = "admin@example.com"
	adminName      = "Administrator"
	adminPassword  = "Admin123!"
)

// TestMain builds the Docker image once before all tests and cleans it
// up after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Outlay Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Outlay Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/outlay/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run()
}

// setupOutlayContainer starts the service in a container and returns the
// base URL. Rate limits are raised so rapid test requests do not trip
// the production defaults.
func setupOutlayContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"OUTLAY_BOOTSTRAP_EMAIL": adminEmail,
			"OUTLAY_BOOTSTRAP_NAME":  adminName,
			"OUTLAY_BOOTSTRAP_TOKEN": bootstrapToken,
			"OUTLAY_DATABASE_FILE":   "/tmp/outlay.db",
			"OUTLAY_PEPPER_FILE":     "/tmp/pepper",
			"OUTLAY_ISSUER":          "outlay-test",
			"ENV":                    "test",
			"LOG_LEVEL":              "info",
			"LOG_FORMAT":             "json",

			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// activateAdmin walks the bootstrap admin through password setup and
// TOTP enrollment, returning a committed session store and the TOTP
// secret for later logins.
func activateAdmin(t *testing.T, client *outlaysdk.SDKClient) (*outlaysdk.MemorySessionStore, string) {
	t.Helper()
	ctx := t.Context()

	store := outlaysdk.NewMemorySessionStore()
	flow := client.NewEnrollmentFlow(nil, store)

	_, err := flow.SubmitPassword(ctx, outlaysdk.ActivationRef{Token: bootstrapToken}, adminPassword)
	require.NoError(t, err)

	material, err := flow.ChooseMethod(ctx, outlaysdk.MethodTOTP)
	require.NoError(t, err)
	require.NotEmpty(t, material.Secret)

	code, err := totp.GenerateCode(material.Secret, time.Now())
	require.NoError(t, err)

	session, err := flow.SubmitTOTPProof(ctx, code)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	return store, material.Secret
}

// loginWithTOTP performs a full two-step login and returns the session
// store holding the verified session.
func loginWithTOTP(t *testing.T, client *outlaysdk.SDKClient, email, password, secret string) *outlaysdk.MemorySessionStore {
	t.Helper()
	ctx := t.Context()

	store := outlaysdk.NewMemorySessionStore()
	flow := client.NewLoginFlow(nil, store)

	_, err := flow.Login(ctx, email, password)
	var mfaErr *outlaysdk.MFARequiredError
	require.ErrorAs(t, err, &mfaErr)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	session, err := flow.VerifyTOTP(ctx, code)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	return store
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *outlaysdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
