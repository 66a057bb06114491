// Package testutils provides an HTTP end-to-end suite running the full app on
// a private in-memory database, a mock gateway and the in-memory event bus.
package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	infraeventbus "github.com/demonyhq/demony/infra/eventbus"
	infranotification "github.com/demonyhq/demony/infra/notification"
	"github.com/demonyhq/demony/infra/provider/mockpayment"
	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/app"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/service/ledger"
	pkgtestutils "github.com/demonyhq/demony/pkg/testutils"
	"github.com/demonyhq/demony/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// Envelope mirrors the success envelope with an undecoded payload.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Problem mirrors the problem details body.
type Problem struct {
	Title  string          `json:"title"`
	Status int             `json:"status"`
	Detail string          `json:"detail"`
	Errors json.RawMessage `json:"errors"`
}

// E2ETestSuite builds a fresh app per test.
type E2ETestSuite struct {
	suite.Suite
	DB       *gorm.DB
	App      *fiber.App
	Cfg      *config.App
	Gateway  *mockpayment.MockPaymentProvider
	Bus      *infraeventbus.MemoryEventBus
	Notifier *infranotification.LogNotifier
	Policy   ledger.Policy
}

// TestConfig is the configuration the suite runs with.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Auth:      &config.Auth{Strategy: "jwt", Jwt: &config.Jwt{Secret: "e2e-secret", Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: 10000, Window: time.Minute},
		PaymentProviders: &config.PaymentProviders{
			Provider: "mock",
			Paystack: &config.Paystack{CallbackURL: "http://localhost:3000/payment/callback"},
		},
	}
}

// SetupTest wires the app on a new database.
func (s *E2ETestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.DB = pkgtestutils.NewSQLiteDB(s.T())
	s.Cfg = TestConfig()
	s.Gateway = mockpayment.NewMockPaymentProvider()
	s.Bus = infraeventbus.NewWithMemory(logger)
	s.Notifier = infranotification.NewLogNotifier(logger)
	s.Policy = ledger.DefaultPolicy()

	a := app.New(&app.Deps{
		Uow:      infrarepo.NewUoW(s.DB),
		Gateway:  s.Gateway,
		EventBus: s.Bus,
		Notifier: s.Notifier,
		Policy:   s.Policy,
		Logger:   logger,
	}, s.Cfg)
	s.App = webapi.SetupApp(a)
}

// MakeRequest is a helper for making HTTP requests in tests. body may be a
// string or any JSON-encodable value.
func (s *E2ETestSuite) MakeRequest(method, path string, body any, token string, headers ...string) *http.Response {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// Decode reads the success envelope and unmarshals its data into out.
func (s *E2ETestSuite) Decode(resp *http.Response, out any) Envelope {
	defer resp.Body.Close() //nolint: errcheck
	var env Envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		s.Require().NoError(json.Unmarshal(env.Data, out))
	}
	return env
}

// DecodeProblem reads a problem details body.
func (s *E2ETestSuite) DecodeProblem(resp *http.Response) Problem {
	defer resp.Body.Close() //nolint: errcheck
	var p Problem
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&p))
	return p
}

// Signup registers a user over HTTP and returns the token and user id.
func (s *E2ETestSuite) Signup(role user.Role) (string, uuid.UUID) {
	email := fmt.Sprintf("e2e_%s@example.com", uuid.NewString()[:8])
	resp := s.MakeRequest(fiber.MethodPost, "/auth/signup", map[string]any{
		"name":     "E2E User",
		"email":    email,
		"password": pkgtestutils.Password,
		"role":     string(role),
	}, "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	s.Decode(resp, &out)
	s.Require().NotEmpty(out.Token)
	return out.Token, out.User.ID
}

// LoginUser logs a fixture user in and returns the token.
func (s *E2ETestSuite) LoginUser(u *user.User) string {
	resp := s.MakeRequest(fiber.MethodPost, "/auth/login", map[string]string{
		"email":    u.Email,
		"password": pkgtestutils.Password,
	}, "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	s.Decode(resp, &out)
	s.Require().NotEmpty(out.Token)
	return out.Token
}

// Admin creates an admin fixture and logs it in.
func (s *E2ETestSuite) Admin() (string, *user.User) {
	u := pkgtestutils.CreateUser(s.T(), s.DB, pkgtestutils.WithRole(user.RoleAdmin), pkgtestutils.Verified())
	return s.LoginUser(u), u
}

// Investor creates an investor fixture with opts and logs it in.
func (s *E2ETestSuite) Investor(opts ...pkgtestutils.UserOption) (string, *user.User) {
	u := pkgtestutils.CreateUser(s.T(), s.DB, opts...)
	return s.LoginUser(u), u
}
