package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"cryptosim/internal/adapter"
	"cryptosim/internal/domain"
	"cryptosim/internal/middleware"
	"cryptosim/internal/repository"
	"cryptosim/internal/service"
	"cryptosim/internal/usecase"
)

const testQuotes = `
quotes:
  - {symbol: BTC, name: Bitcoin, price_usd: 50000, market_cap_usd: 1000000000000, change_24h_pct: 1.5}
  - {symbol: ETH, name: Ethereum, price_usd: 2000, market_cap_usd: 240000000000, change_24h_pct: -3}
  - {symbol: DOGE, name: Dogecoin, price_usd: 0.1, market_cap_usd: 14000000000, change_24h_pct: 7}
`

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type RouterTestSuite struct {
	suite.Suite
	e      *echo.Echo
	market *service.MarketDataService
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	dir := s.T().TempDir()
	quotesPath := filepath.Join(dir, "quotes.yaml")
	s.Require().NoError(os.WriteFile(quotesPath, []byte(testQuotes), 0o644))

	repo, err := repository.NewFileAccountRepository(filepath.Join(dir, "accounts"), nil)
	s.Require().NoError(err)

	s.market = service.NewMarketDataService(adapter.NewStaticQuoteProvider(quotesPath), nil)
	_, err = s.market.Refresh(context.Background())
	s.Require().NoError(err)

	ledger := usecase.NewLedgerService(repo, s.market, service.PlainCredentials{}, domain.TradeExecutor{}, []string{"root"}, nil)
	jwt := middleware.NewJWTManager("test-secret")

	s.e = echo.New()
	SetupRoutes(s.e, &RouterConfig{
		AuthHandler:    NewAuthHandler(ledger, jwt),
		AccountHandler: NewAccountHandler(ledger),
		MarketHandler:  NewMarketHandler(ledger),
		AdminHandler:   NewAdminHandler(ledger, s.market),
		JWT:            jwt,
		Market:         s.market,
	})
}

func (s *RouterTestSuite) do(method, path, body, token string) (*httptest.ResponseRecorder, apiResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp apiResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func (s *RouterTestSuite) login(username string) string {
	rec, _ := s.do(http.MethodPost, "/api/auth/register", `{"username":"`+username+`","password":"pw"}`, "")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp := s.do(http.MethodPost, "/api/auth/login", `{"username":"`+username+`","password":"pw"}`, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &out))
	s.Require().NotEmpty(out.Token)
	return out.Token
}

func (s *RouterTestSuite) TestHealth() {
	rec, resp := s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(string(resp.Data), `"quotes":3`)
	s.Contains(string(resp.Data), `"provider":"static"`)
}

func (s *RouterTestSuite) TestRegister_Errors() {
	rec, _ := s.do(http.MethodPost, "/api/auth/register", `{"username":"","password":"pw"}`, "")
	s.Equal(http.StatusBadRequest, rec.Code)

	s.login("alice")
	rec, _ = s.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"x"}`, "")
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *RouterTestSuite) TestLogin_WrongPassword() {
	s.login("alice")
	rec, resp := s.do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"nope"}`, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("error", resp.Status)
}

func (s *RouterTestSuite) TestProtectedRoutesNeedToken() {
	for _, path := range []string{"/api/account", "/api/market", "/api/leaderboard", "/api/admin/accounts"} {
		rec, _ := s.do(http.MethodGet, path, "", "")
		s.Equal(http.StatusUnauthorized, rec.Code, path)
	}
}

func (s *RouterTestSuite) TestDepositTradeAndAccount() {
	token := s.login("alice")

	rec, _ := s.do(http.MethodPost, "/api/account/deposit", `{"amount":1000}`, token)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec, resp := s.do(http.MethodPost, "/api/account/trade",
		`{"symbol":"ETH","side":"buy","pay_amount":500,"receive_amount":0.25}`, token)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(string(resp.Data), "Bought 0.250000 ETH for $500.00 USD")

	rec, resp = s.do(http.MethodGet, "/api/account", "", token)
	s.Require().Equal(http.StatusOK, rec.Code)

	var acct struct {
		BalanceUSD  float64            `json:"balance_usd"`
		Holdings    map[string]float64 `json:"holdings"`
		NetWorthUSD *float64           `json:"net_worth_usd"`
		Activity    []struct {
			Description string `json:"description"`
			Kind        string `json:"kind"`
		} `json:"activity"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &acct))
	s.Equal(500.0, acct.BalanceUSD)
	s.Equal(0.25, acct.Holdings["ETH"])
	s.Require().NotNil(acct.NetWorthUSD)
	s.Equal(1000.0, *acct.NetWorthUSD)
	s.Require().Len(acct.Activity, 2)
	s.Equal("debit", acct.Activity[0].Kind)
	s.NotContains(rec.Body.String(), "password")
}

func (s *RouterTestSuite) TestLedgerErrorStatuses() {
	token := s.login("alice")

	cases := []struct {
		path, body string
		status     int
	}{
		{"/api/account/deposit", `{"amount":0}`, http.StatusBadRequest},
		{"/api/account/deposit", `{"amount":"ten"}`, http.StatusBadRequest},
		{"/api/account/withdraw", `{"amount":5}`, http.StatusUnprocessableEntity},
		{"/api/account/trade", `{"symbol":"BTC","side":"buy","pay_amount":10,"receive_amount":0.0002}`, http.StatusUnprocessableEntity},
		{"/api/account/trade", `{"symbol":"BTC","side":"sell","pay_amount":1,"receive_amount":50000}`, http.StatusUnprocessableEntity},
		{"/api/account/trade", `{"symbol":"LUNA","side":"buy","pay_amount":1,"receive_amount":1}`, http.StatusNotFound},
		{"/api/account/trade", `{"symbol":"BTC","side":"hold","pay_amount":1,"receive_amount":1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec, _ := s.do(http.MethodPost, tc.path, tc.body, token)
		s.Equal(tc.status, rec.Code, "%s %s: %s", tc.path, tc.body, rec.Body.String())
	}
}

func (s *RouterTestSuite) TestMarketListing() {
	token := s.login("alice")

	rec, resp := s.do(http.MethodGet, "/api/market?q=coin&sort=price&order=asc", "", token)
	s.Require().Equal(http.StatusOK, rec.Code)

	var listing struct {
		Quotes []domain.Quote `json:"quotes"`
		Count  int            `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &listing))
	s.Equal(2, listing.Count)
	s.Equal("DOGE", listing.Quotes[0].Symbol)
	s.Equal("BTC", listing.Quotes[1].Symbol)

	rec, _ = s.do(http.MethodGet, "/api/market?sort=volume", "", token)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/market/doge", "", token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Dogecoin")
}

func (s *RouterTestSuite) TestLeaderboard() {
	a := s.login("A")
	b := s.login("B")

	s.do(http.MethodPost, "/api/account/deposit", `{"amount":300}`, a)
	s.do(http.MethodPost, "/api/account/deposit", `{"amount":1299.5}`, b)
	rec, _ := s.do(http.MethodPost, "/api/account/trade", `{"symbol":"ETH","side":"BUY","pay_amount":999,"receive_amount":0.5}`, b)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec, resp := s.do(http.MethodGet, "/api/leaderboard", "", a)
	s.Require().Equal(http.StatusOK, rec.Code)

	var board struct {
		Entries []domain.RankEntry `json:"entries"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &board))
	s.Require().Len(board.Entries, 2)
	s.Equal("B", board.Entries[0].Username)
	s.Equal(1, board.Entries[0].Rank)
	s.Equal("A", board.Entries[1].Username)
}

func (s *RouterTestSuite) TestAdmin() {
	user := s.login("alice")
	root := s.login("root")

	rec, _ := s.do(http.MethodGet, "/api/admin/accounts", "", user)
	s.Equal(http.StatusForbidden, rec.Code)

	rec, resp := s.do(http.MethodGet, "/api/admin/accounts", "", root)
	s.Require().Equal(http.StatusOK, rec.Code)
	var accounts []map[string]interface{}
	s.Require().NoError(json.Unmarshal(resp.Data, &accounts))
	s.Len(accounts, 2)
	s.NotContains(rec.Body.String(), "password")

	rec, _ = s.do(http.MethodPost, "/api/admin/reset", `{"confirm":"yes"}`, root)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/admin/reset", `{"confirm":"RESET"}`, root)
	s.Equal(http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pw"}`, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec, resp = s.do(http.MethodPost, "/api/admin/market/refresh", "", root)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(string(resp.Data), `"quotes":3`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrSnapshotUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.ErrPersistence))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	require.Equal(t, http.StatusConflict, statusFor(domain.ErrDuplicateUsername))
}
