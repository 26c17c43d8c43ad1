package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/api"
	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/internal/repository/memory"
	"github.com/rugstore/storefront/internal/service"
)

type harness struct {
	t     *testing.T
	url   string
	state string
	repos *repository.Repositories
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		Session:     config.SessionConfig{TTL: time.Hour},
		Shipping: config.ShippingConfig{
			StandardRate:          decimal.RequireFromString("15.00"),
			ExpressRate:           decimal.RequireFromString("35.00"),
			FreeStandardThreshold: decimal.RequireFromString("200.00"),
		},
	}
	repos := memory.NewRepositories()
	server := httptest.NewServer(api.NewRouter(cfg, repos, zap.NewNop()))
	t.Cleanup(server.Close)

	return &harness{
		t:     t,
		url:   server.URL,
		state: filepath.Join(t.TempDir(), "state.json"),
		repos: repos,
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	app := newApp(&shop{})
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"shop", "--api", h.url, "--state", h.state}, args...))
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestShopperFlow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("register", "--email", "ana@example.com", "--password", "correct horse")
	assert.Contains(t, out, "Logged in as ana@example.com")

	h.mustRun("profile", "--name", "Ana", "--phone", "555-0100", "--address", "1 Loom St", "--city", "Springfield", "--zip", "12345")

	out = h.mustRun("cart", "add", "--product", "p1", "--name", "Kilim", "--price", "20.00", "--size", "M", "--qty", "2")
	assert.Contains(t, out, "subtotal 40.00")

	out = h.mustRun("checkout", "--from-profile", "--shipping", "express")
	assert.Contains(t, out, "Total:    75.00")
	assert.Contains(t, out, "Order #1001 placed")
	assert.Contains(t, out, "/orders/1001/confirmation")

	out = h.mustRun("cart")
	assert.Contains(t, out, "Your cart is empty")

	out = h.mustRun("order", "1001")
	assert.Contains(t, out, "Kilim")
	assert.Contains(t, out, "ana@example.com")
}

func TestCheckoutRequiresLogin(t *testing.T) {
	h := newHarness(t)

	h.mustRun("cart", "add", "--product", "p1", "--name", "Kilim", "--price", "20.00", "--size", "M")

	_, err := h.run("checkout", "--from-profile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log in")

	out := h.mustRun("register", "--email", "ana@example.com", "--password", "correct horse")
	assert.Contains(t, out, "Continue where you left off: /checkout")

	out = h.mustRun("cart")
	assert.Contains(t, out, "Kilim")
}

func TestCheckoutKeepsCartOnInvalidContact(t *testing.T) {
	h := newHarness(t)

	h.mustRun("register", "--email", "ana@example.com", "--password", "correct horse")
	h.mustRun("cart", "add", "--product", "p1", "--name", "Kilim", "--price", "20.00", "--size", "M")

	_, err := h.run("checkout", "--email", "ana@example.com")
	require.Error(t, err)

	out := h.mustRun("cart")
	assert.Contains(t, out, "Kilim")
}

func TestAdminFlow(t *testing.T) {
	h := newHarness(t)

	h.mustRun("register", "--email", "ana@example.com", "--password", "correct horse")
	h.mustRun("profile", "--name", "Ana", "--phone", "555-0100", "--address", "1 Loom St", "--city", "Springfield", "--zip", "12345")
	h.mustRun("cart", "add", "--product", "p1", "--name", "Kilim", "--price", "20.00", "--size", "M")
	h.mustRun("checkout", "--from-profile")

	_, err := h.run("admin", "orders")
	require.Error(t, err)

	hash, err := service.HashPassword("staff password")
	require.NoError(t, err)
	require.NoError(t, h.repos.User.Create(context.Background(), &domain.User{
		Email:        "staff@example.com",
		PasswordHash: hash,
		IsStaff:      true,
	}))
	h.mustRun("login", "--email", "staff@example.com", "--password", "staff password")

	out := h.mustRun("admin", "orders", "--all")
	assert.Contains(t, out, "#1001")
	assert.Contains(t, out, "1 order(s) match")

	out = h.mustRun("admin", "stage", "1001", "shipped")
	assert.Contains(t, out, "shipped")
	assert.NotContains(t, out, "(pending)")

	_, err = h.run("admin", "stage", "1001", "teleported")
	require.Error(t, err)

	out = h.mustRun("admin", "status", "1001", "processing")
	assert.Contains(t, out, "processing / shipped")

	out = h.mustRun("admin", "events", "1001")
	assert.Contains(t, out, "order_created")
	assert.Contains(t, out, "stage_change")
	assert.Contains(t, out, "status_change")
}
