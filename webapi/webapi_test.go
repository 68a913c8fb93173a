package webapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/infra/storage"
	"github.com/amirasaad/axeria/pkg/app"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/amirasaad/axeria/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type fixedTicker struct{}

func (fixedTicker) GetPrice(context.Context, string) (decimal.Decimal, error) {
	return decimal.NewFromInt(65000), nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Errors []struct {
		Field string `json:"field"`
		Rule  string `json:"rule"`
	} `json:"errors"`
}

type WebAPITestSuite struct {
	suite.Suite
	uow        repository.UnitOfWork
	bus        *infraeventbus.MemoryEventBus
	app        *app.App
	fiber      *fiber.App
	admin      *user.User
	adminToken string
}

func (s *WebAPITestSuite) SetupTest() {
	s.uow = testutils.NewTestUoW(s.T())
	s.bus = infraeventbus.NewWithMemory(testutils.DiscardLogger())
	store, err := storage.NewLocal(s.T().TempDir())
	s.Require().NoError(err)
	s.app = app.New(&app.Deps{
		Uow:         s.uow,
		EventBus:    s.bus,
		PriceTicker: fixedTicker{},
		Storage:     store,
		Logger:      testutils.DiscardLogger(),
	}, testConfig(1000))
	s.fiber = webapi.SetupApp(s.app)
	s.admin = testutils.CreateAdmin(s.T(), s.uow)
	s.adminToken = s.tokenFor(s.admin)
}

func testConfig(maxRequests int) *config.App {
	return &config.App{
		Env:       "test",
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: maxRequests, Window: time.Minute},
		Storage:   &config.Storage{MaxFileBytes: 1 << 20},
		Ledger:    &config.Ledger{},
		Site: &config.Site{
			Name:             "Axeria",
			WithdrawalCharge: decimal.NewFromInt(5),
			BotAmount:        decimal.NewFromInt(100),
		},
	}
}

func (s *WebAPITestSuite) tokenFor(u *user.User) string {
	token, err := s.app.AuthService.GenerateToken(context.Background(), u)
	s.Require().NoError(err)
	return token
}

func (s *WebAPITestSuite) do(method, path, body, token string, want int) envelope {
	resp := testutils.MakeRequest(s.T(), s.fiber, method, path, body, token)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().Equal(want, resp.StatusCode, "%s %s: %s", method, path, raw)
	var env envelope
	if len(raw) > 0 && resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		s.Require().NoError(json.Unmarshal(raw, &env))
	}
	return env
}

func (s *WebAPITestSuite) problem(method, path, body, token string, want int) problem {
	resp := testutils.MakeRequest(s.T(), s.fiber, method, path, body, token)
	defer func() { _ = resp.Body.Close() }()
	s.Require().Equal(want, resp.StatusCode)
	s.Equal("application/problem+json", resp.Header.Get("Content-Type"))
	var p problem
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&p))
	return p
}

func (s *WebAPITestSuite) TestHealthAndMetrics() {
	resp := testutils.MakeRequest(s.T(), s.fiber, http.MethodGet, "/", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = testutils.MakeRequest(s.T(), s.fiber, http.MethodGet, "/metrics", "", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "axeria_http_requests_total")
}

func (s *WebAPITestSuite) TestRegisterLoginAndProfile() {
	s.do(http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`, "", http.StatusCreated)
	s.problem(http.MethodPost, "/auth/register",
		`{"username":"alice","email":"other@example.com","password":"secret1"}`, "", http.StatusConflict)

	s.problem(http.MethodPost, "/auth/login", `{"identity":"alice","password":"wrong!"}`, "", http.StatusUnauthorized)
	env := s.do(http.MethodPost, "/auth/login", `{"identity":"alice@example.com","password":"secret1"}`, "", http.StatusOK)
	var login struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &login))
	s.Require().NotEmpty(login.Token)

	env = s.do(http.MethodPut, "/me", `{"first_name":"Alice","city":"Lisbon"}`, login.Token, http.StatusOK)
	var me user.User
	s.Require().NoError(json.Unmarshal(env.Data, &me))
	s.Equal("Alice", me.FirstName)
	s.Equal("Lisbon", me.City)

	env = s.do(http.MethodGet, "/me", "", login.Token, http.StatusOK)
	s.Require().NoError(json.Unmarshal(env.Data, &me))
	s.Equal("alice", me.Username)
	s.Equal(user.RoleTrader, me.Role)
}

func (s *WebAPITestSuite) TestValidationProblem() {
	p := s.problem(http.MethodPost, "/auth/register", `{"username":"al","email":"nope","password":"1"}`, "", http.StatusBadRequest)
	s.Equal("Validation failed", p.Title)
	fields := map[string]string{}
	for _, fe := range p.Errors {
		fields[fe.Field] = fe.Rule
	}
	s.Equal("min", fields["Username"])
	s.Equal("email", fields["Email"])
	s.Equal("min", fields["Password"])
}

func (s *WebAPITestSuite) TestAdminGuard() {
	trader := testutils.CreateUser(s.T(), s.uow, ledger.Balances{})
	s.problem(http.MethodGet, "/admin/dashboard", "", "", http.StatusBadRequest)
	s.problem(http.MethodGet, "/admin/dashboard", "", s.tokenFor(trader), http.StatusForbidden)
	s.problem(http.MethodGet, "/admin/dashboard", "", "not-a-token", http.StatusUnauthorized)
	s.do(http.MethodGet, "/admin/dashboard", "", s.adminToken, http.StatusOK)
	s.problem(http.MethodGet, "/admin/users/not-a-uuid", "", s.adminToken, http.StatusBadRequest)
}

func (s *WebAPITestSuite) TestFundingFlow() {
	trader := testutils.CreateUser(s.T(), s.uow, ledger.Balances{})
	token := s.tokenFor(trader)

	env := s.do(http.MethodPost, "/admin/payment-methods",
		`{"name":"USDT","wallet_address":"TXYZ1234567","active":true}`, s.adminToken, http.StatusCreated)
	var method struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &method))

	env = s.do(http.MethodPost, "/payments",
		fmt.Sprintf(`{"amount":"250.00","method_id":%q}`, method.ID), token, http.StatusCreated)
	var pay struct {
		ID     string `json:"id"`
		Ref    string `json:"ref"`
		Status string `json:"status"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &pay))
	s.Equal("pending", pay.Status)
	s.True(testutils.Balances(s.T(), s.uow, trader.ID).CurrentDeposit.IsZero())

	s.do(http.MethodGet, "/payments/"+pay.Ref, "", token, http.StatusOK)
	s.problem(http.MethodGet, "/payments/"+pay.Ref, "", s.tokenFor(testutils.CreateUser(s.T(), s.uow, ledger.Balances{})), http.StatusNotFound)

	s.do(http.MethodPost, "/admin/payments/"+pay.ID+"/approve", "", s.adminToken, http.StatusOK)
	s.problem(http.MethodPost, "/admin/payments/"+pay.ID+"/approve", "", s.adminToken, http.StatusConflict)
	s.True(testutils.Balances(s.T(), s.uow, trader.ID).CurrentDeposit.Equal(decimal.NewFromInt(250)))

	env = s.do(http.MethodGet, "/admin/users/"+trader.ID.String()+"/reconcile", "", s.adminToken, http.StatusOK)
	var rec struct {
		Clean bool `json:"clean"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &rec))
	s.True(rec.Clean)

	s.problem(http.MethodPost, "/withdrawals",
		`{"type":"deposit","amount":"1000","currency":"USDT","wallet_address":"TXYZ1234567"}`, token, http.StatusUnprocessableEntity)
	s.do(http.MethodPost, "/withdrawals",
		`{"type":"deposit","amount":"100","currency":"USDT","wallet_address":"TXYZ1234567"}`, token, http.StatusCreated)
}

func (s *WebAPITestSuite) TestKYCUploadAndReview() {
	trader := testutils.CreateUser(s.T(), s.uow, ledger.Balances{})
	png := []byte("\x89PNG\r\n\x1a\nfake-image")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="document"; filename="passport.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	s.Require().NoError(err)
	_, err = part.Write(png)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/kyc", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.tokenFor(trader))
	resp, err := s.fiber.Test(req, -1)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	var v struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &v))
	s.Equal("pending", v.Status)

	resp = testutils.MakeRequest(s.T(), s.fiber, http.MethodGet, "/admin/kyc/"+v.ID+"/document", "", s.adminToken)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("image/png", resp.Header.Get("Content-Type"))
	got, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal(png, got)

	s.do(http.MethodPost, "/admin/kyc/"+v.ID+"/reject", `{"reason":"blurry"}`, s.adminToken, http.StatusOK)
	s.problem(http.MethodPost, "/admin/kyc/"+v.ID+"/reject", `{"reason":"blurry"}`, s.adminToken, http.StatusConflict)
}

func (s *WebAPITestSuite) TestLiveTradeOpenAndSettle() {
	trader := testutils.CreateUser(s.T(), s.uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(500)})
	body := `{"ticker":"BTCUSDT","interval":"1ms","trade_type":"buy","category":"crypto","amount":"200","profit":"50"}`
	s.do(http.MethodPost, "/admin/users/"+trader.ID.String()+"/live-trades", body, s.adminToken, http.StatusCreated)
	s.problem(http.MethodPost, "/admin/users/"+trader.ID.String()+"/live-trades",
		`{"ticker":"BTCUSDT","interval":"soon","trade_type":"buy","category":"crypto","amount":"1","profit":"0"}`,
		s.adminToken, http.StatusBadRequest)

	time.Sleep(20 * time.Millisecond)
	s.do(http.MethodPost, "/admin/live-trades/settle", "", s.adminToken, http.StatusOK)

	b := testutils.Balances(s.T(), s.uow, trader.ID)
	s.True(b.CurrentDeposit.Equal(decimal.NewFromInt(300)), b.CurrentDeposit.String())
	s.True(b.Profit.Equal(decimal.NewFromInt(50)), b.Profit.String())

	env := s.do(http.MethodGet, "/live-trades", "", s.tokenFor(trader), http.StatusOK)
	var trades []struct {
		Outcome string `json:"outcome"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &trades))
	s.Require().Len(trades, 1)
	s.Equal("win", trades[0].Outcome)
}

func (s *WebAPITestSuite) TestMarketCatalog() {
	env := s.do(http.MethodPost, "/admin/market/categories", `{"name":"Crypto Currencies"}`, s.adminToken, http.StatusCreated)
	var cat struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &cat))
	s.Equal("crypto-currencies", cat.Slug)
	s.do(http.MethodPost, "/admin/market/categories/"+cat.ID+"/assets",
		`{"name":"Bitcoin","ticker":"BTC","percent_change_1d":"1.25"}`, s.adminToken, http.StatusCreated)

	env = s.do(http.MethodGet, "/market", "", "", http.StatusOK)
	var cats []struct {
		Assets []struct {
			Ticker string `json:"ticker"`
		} `json:"assets"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &cats))
	s.Require().Len(cats, 1)
	s.Require().Len(cats[0].Assets, 1)
	s.Equal("BTC", cats[0].Assets[0].Ticker)
}

func TestWebAPITestSuite(t *testing.T) {
	suite.Run(t, new(WebAPITestSuite))
}

func TestRateLimit(t *testing.T) {
	uow := testutils.NewTestUoW(t)
	a := app.New(&app.Deps{
		Uow:      uow,
		EventBus: infraeventbus.NewWithMemory(testutils.DiscardLogger()),
		Logger:   testutils.DiscardLogger(),
	}, testConfig(2))
	f := webapi.SetupApp(a)

	for i := 0; i < 2; i++ {
		resp := testutils.MakeRequest(t, f, http.MethodGet, "/", "", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: got %d", i, resp.StatusCode)
		}
	}
	resp := testutils.MakeRequest(t, f, http.MethodGet, "/", "", "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}
