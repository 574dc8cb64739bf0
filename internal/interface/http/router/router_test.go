package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/library/internal/application/book"
	applending "github.com/xiebiao/library/internal/application/lending"
	appmember "github.com/xiebiao/library/internal/application/member"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/idgen"
)

const (
	testAPIKey = "test-api-key"
	baseURL    = "/api/v1"
)

// apiResponse 统一响应结构(data延迟解析)
type apiResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Kind    string                 `json:"kind"`
	Details []string               `json:"details"`
	Fields  map[string]interface{} `json:"fields"`
}

type listData struct {
	List  json.RawMessage `json:"list"`
	Total int             `json:"total"`
}

type bookData struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	ISBN            string `json:"isbn"`
	Copies          int    `json:"copies"`
	AvailableCopies int    `json:"availableCopies"`
}

type memberData struct {
	ID            uint   `json:"id"`
	Email         string `json:"email"`
	BorrowedBooks []uint `json:"borrowedBooks"`
}

type loanData struct {
	ID         uint    `json:"id"`
	MemberID   uint    `json:"memberId"`
	BookID     uint    `json:"bookId"`
	BorrowDate string  `json:"borrowDate"`
	DueDate    string  `json:"dueDate"`
	ReturnDate *string `json:"returnDate"`
	Status     string  `json:"status"`
	MemberName string  `json:"memberName"`
	BookTitle  string  `json:"bookTitle"`
}

type testServer struct {
	engine *gin.Engine
	clock  *clock.Fixed
}

// newTestServer 使用内存存储和演示数据组装完整的HTTP服务
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Auth:    config.AuthConfig{APIKey: testAPIKey, Header: "x-api-key"},
		Lending: config.LendingConfig{LoanPeriodDays: 14, FinePerDay: 5},
		Tracing: config.TracingConfig{ServiceName: "library-api"},
	}
	log := zap.NewNop()

	store := memory.Store{
		Books:   memory.NewBookRepository(idgen.NewSequence(0)),
		Members: memory.NewMemberRepository(idgen.NewSequence(0)),
		Loans:   memory.NewLoanRepository(idgen.NewSequence(0)),
	}
	clk := clock.NewFixed(time.Date(2024, time.October, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, memory.Seed(context.Background(), store, clk, cfg.Lending.LoanPeriodDays))

	tx := memory.NewTxManager()
	ledger := loan.NewLedger(store.Loans, cfg.Lending.LoanPeriodDays)
	books := book.NewService(store.Books, store.Loans, tx, clk)
	members := member.NewService(store.Members, tx, clk)
	engine := lending.NewEngine(store.Books, store.Members, ledger, tx, clk,
		lending.Policy{LoanPeriodDays: cfg.Lending.LoanPeriodDays, FinePerDay: cfg.Lending.FinePerDay}, log)

	cache := appbook.NoopCache{}
	events := messaging.NewNoopPublisher(log)
	listLoans := applending.NewListLoansUseCase(ledger, members, books)

	apiKey, err := middleware.NewAPIKeyMiddleware(cfg.Auth.APIKey, cfg.Auth.Header)
	require.NoError(t, err)

	r := router.New(cfg, log, apiKey,
		handler.NewBookHandler(
			appbook.NewAddBookUseCase(books),
			appbook.NewUpdateBookUseCase(books, cache, log),
			appbook.NewDeleteBookUseCase(books, cache, log),
			appbook.NewGetBookUseCase(books, cache, log),
			appbook.NewListBooksUseCase(books),
		),
		handler.NewMemberHandler(
			appmember.NewRegisterUseCase(members),
			appmember.NewUpdateMemberUseCase(members),
			appmember.NewDeleteMemberUseCase(members),
			appmember.NewGetMemberUseCase(members),
			appmember.NewListMembersUseCase(members),
			listLoans,
		),
		handler.NewLendingHandler(
			applending.NewBorrowBookUseCase(engine, events, cache, clk, log),
			applending.NewReturnBookUseCase(engine, events, cache, clk, log),
			listLoans,
		),
	)
	return &testServer{engine: r, clock: clk}
}

func (s *testServer) do(t *testing.T, method, url string, body interface{}, apiKey string) (int, *apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "JSON序列化失败")
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "解析JSON响应失败: %s", w.Body.String())
	return w.Code, &resp
}

// postJSON 发送带API Key的POST请求
func (s *testServer) postJSON(t *testing.T, path string, body interface{}) (int, *apiResponse) {
	return s.do(t, http.MethodPost, baseURL+path, body, testAPIKey)
}

// getJSON 发送带API Key的GET请求
func (s *testServer) getJSON(t *testing.T, path string) (int, *apiResponse) {
	return s.do(t, http.MethodGet, baseURL+path, nil, testAPIKey)
}

func decodeData(t *testing.T, resp *apiResponse, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, v), "解析data失败: %s", string(resp.Data))
}

func decodeList(t *testing.T, resp *apiResponse, v interface{}) int {
	t.Helper()
	var l listData
	decodeData(t, resp, &l)
	require.NoError(t, json.Unmarshal(l.List, v))
	return l.Total
}

// TestLendingFlow 借书 → 重复借阅 → 还书(逾期) → 再次还书
func TestLendingFlow(t *testing.T) {
	s := newTestServer(t)

	// 1. 注册会员
	status, resp := s.postJSON(t, "/members", map[string]string{
		"name": "Alice Walker", "email": "Alice@Example.com", "phone": "5551234567",
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	var alice memberData
	decodeData(t, resp, &alice)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.Equal(t, []uint{}, alice.BorrowedBooks)

	// 2. 借书
	status, resp = s.postJSON(t, "/borrow", map[string]uint{"memberId": alice.ID, "bookId": 2})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	var borrowed struct {
		Record  loanData `json:"record"`
		DueDate string   `json:"dueDate"`
	}
	decodeData(t, resp, &borrowed)
	assert.Equal(t, "2024-10-10", borrowed.Record.BorrowDate)
	assert.Equal(t, "2024-10-24", borrowed.DueDate)
	assert.Nil(t, borrowed.Record.ReturnDate)
	assert.Equal(t, "active", borrowed.Record.Status)

	// 3. 重复借阅
	status, resp = s.postJSON(t, "/borrow", map[string]uint{"memberId": alice.ID, "bookId": 2})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Conflict", resp.Kind)

	status, resp = s.getJSON(t, "/books/2")
	require.Equal(t, http.StatusOK, status)
	var b bookData
	decodeData(t, resp, &b)
	assert.Equal(t, b.Copies-1, b.AvailableCopies)

	// 4. 逾期2天归还
	s.clock.AdvanceDays(16)
	status, resp = s.postJSON(t, "/return", map[string]uint{"memberId": alice.ID, "bookId": 2})
	require.Equal(t, http.StatusOK, status, resp.Message)
	var returned struct {
		Record   loanData `json:"record"`
		IsLate   bool     `json:"isLate"`
		DaysLate int      `json:"daysLate"`
		Fine     int64    `json:"fine"`
	}
	decodeData(t, resp, &returned)
	require.NotNil(t, returned.Record.ReturnDate)
	assert.Equal(t, "2024-10-26", *returned.Record.ReturnDate)
	assert.Equal(t, "returned", returned.Record.Status)
	assert.True(t, returned.IsLate)
	assert.Equal(t, 2, returned.DaysLate)
	assert.Equal(t, int64(10), returned.Fine)

	// 5. 再次归还
	status, resp = s.postJSON(t, "/return", map[string]uint{"memberId": alice.ID, "bookId": 2})
	assert.Equal(t, http.StatusConflict, status)

	// 6. 借阅历史
	status, resp = s.getJSON(t, fmt.Sprintf("/members/%d/loans", alice.ID))
	require.Equal(t, http.StatusOK, status)
	var history []loanData
	assert.Equal(t, 1, decodeList(t, resp, &history))
	assert.Equal(t, "Alice Walker", history[0].MemberName)
	assert.Equal(t, "To Kill a Mockingbird", history[0].BookTitle)
}

// TestBorrow_Errors 借书失败的各类状态码
func TestBorrow_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"缺少参数", map[string]uint{"memberId": 1}, http.StatusUnprocessableEntity},
		{"非法JSON类型", map[string]string{"memberId": "abc", "bookId": "1"}, http.StatusBadRequest},
		{"会员不存在", map[string]uint{"memberId": 99, "bookId": 1}, http.StatusNotFound},
		{"图书不存在", map[string]uint{"memberId": 1, "bookId": 99}, http.StatusNotFound},
		{"已借阅", map[string]uint{"memberId": 1, "bookId": 1}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := s.postJSON(t, "/borrow", tt.body)
			assert.Equal(t, tt.status, status, resp.Message)
			assert.NotZero(t, resp.Code)
		})
	}
}

// TestBorrow_NoCopies 副本全部借出后返回409
func TestBorrow_NoCopies(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.postJSON(t, "/books", map[string]interface{}{
		"title": "Rare", "author": "Someone", "isbn": "isbn-rare",
		"category": "Misc", "publishYear": 2001, "copies": 1,
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	var rare bookData
	decodeData(t, resp, &rare)

	status, _ = s.postJSON(t, "/borrow", map[string]uint{"memberId": 1, "bookId": rare.ID})
	require.Equal(t, http.StatusCreated, status)

	status, resp = s.postJSON(t, "/borrow", map[string]uint{"memberId": 2, "bookId": rare.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Unavailable", resp.Kind)

	// 在借图书不能删除
	status, _ = s.do(t, http.MethodDelete, fmt.Sprintf("%s/books/%d", baseURL, rare.ID), nil, testAPIKey)
	assert.Equal(t, http.StatusConflict, status)
}

// TestValidation 一次返回全部违规项
func TestValidation(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.postJSON(t, "/books", map[string]interface{}{
		"title": "", "author": "", "isbn": "x", "category": "c", "publishYear": 999, "copies": 0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, resp.Details, 4)

	status, resp = s.postJSON(t, "/members", map[string]string{
		"name": "Bob", "email": "john.doe@EMAIL.com", "phone": "1234567890",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DuplicateKey", resp.Kind)

	status, _ = s.postJSON(t, "/members", map[string]string{
		"name": "Bob", "email": "bob@example.com", "phone": "123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.do(t, http.MethodGet, baseURL+"/books", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", resp.Kind)

	status, _ = s.do(t, http.MethodGet, baseURL+"/books", nil, "wrong")
	assert.Equal(t, http.StatusForbidden, status)

	// 健康检查不需要API Key
	status, _ = s.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestListEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Service   string            `json:"service"`
		Endpoints []router.Endpoint `json:"endpoints"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, "library-api", data.Service)
	assert.Contains(t, data.Endpoints, router.Endpoint{Method: http.MethodGet, Path: "/"})
	assert.Contains(t, data.Endpoints, router.Endpoint{Method: http.MethodPost, Path: "/api/v1/borrow"})
	assert.Contains(t, data.Endpoints, router.Endpoint{Method: http.MethodGet, Path: "/api/v1/members/:id/loans"})
	assert.Equal(t, "/", data.Endpoints[0].Path)
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.do(t, http.MethodGet, "/api/v2/books", nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "/api/v2/books", resp.Fields["path"])
}

func TestListBooksAndLoans(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.getJSON(t, "/books?category=fiction")
	require.Equal(t, http.StatusOK, status)
	var books []bookData
	assert.Equal(t, 2, decodeList(t, resp, &books))

	status, resp = s.getJSON(t, "/loans?status=active")
	require.Equal(t, http.StatusOK, status)
	var loans []loanData
	assert.Equal(t, 1, decodeList(t, resp, &loans))
	assert.Equal(t, "John Doe", loans[0].MemberName)

	status, _ = s.getJSON(t, "/borrow-records?status=lost")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.getJSON(t, "/members/abc")
	assert.Equal(t, http.StatusBadRequest, status)
}
