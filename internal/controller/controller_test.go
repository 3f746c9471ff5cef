package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pin-support-be/internal/dto"
	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/pkg/serverutils"
	"pin-support-be/internal/service"
	internalWS "pin-support-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeSupportService struct {
	lastChat *dto.ChatRequest
}

func (f *fakeSupportService) CreateSession(_ context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	return &dto.CreateSessionResponse{SessionId: "sess-" + req.UserId}, nil
}

func (f *fakeSupportService) SubmitMessage(_ context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.lastChat = req
	return &dto.ChatResponse{
		Type:         dto.ChatResponseQuestion,
		SessionId:    "sess-1",
		NextQuestion: "Which operating system are you on?",
		Collected:    map[string]any{},
	}, nil
}

func (f *fakeSupportService) GetSession(_ context.Context, id string) (*dto.SessionResponse, error) {
	if id != "sess-1" {
		return nil, service.ErrSessionNotFound
	}
	return &dto.SessionResponse{Id: id, Status: "open"}, nil
}

func (f *fakeSupportService) GetHistory(_ context.Context, id string) ([]*dto.MessageResponse, error) {
	return []*dto.MessageResponse{{Id: "m1", Role: "user", Content: "hi"}}, nil
}

type fakeHelpdeskService struct {
	tickets     map[uuid.UUID]*dto.TicketDetailResponse
	lastTickets *dto.ListTicketsRequest
	closed      []uuid.UUID
}

func (f *fakeHelpdeskService) ListOpenSessions(_ context.Context, req *dto.ListSessionsRequest) ([]*dto.SessionResponse, error) {
	return []*dto.SessionResponse{}, nil
}

func (f *fakeHelpdeskService) ListTickets(_ context.Context, req *dto.ListTicketsRequest) ([]*dto.TicketSummaryResponse, error) {
	f.lastTickets = req
	return []*dto.TicketSummaryResponse{}, nil
}

func (f *fakeHelpdeskService) GetTicket(_ context.Context, id uuid.UUID) (*dto.TicketDetailResponse, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, service.ErrTicketNotFound
	}
	return t, nil
}

func (f *fakeHelpdeskService) CloseTicket(ctx context.Context, id uuid.UUID) (*dto.TicketDetailResponse, error) {
	f.closed = append(f.closed, id)
	return f.GetTicket(ctx, id)
}

func newTestApp(support service.ISupportService, helpdesk service.IHelpdeskService) *fiber.App {
	log := logger.NewNopLogger()
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api")
	NewSupportController(support).RegisterRoutes(api)
	NewHelpdeskController(helpdesk, internalWS.NewHub(nil, log), testSecret, log).RegisterRoutes(api)
	return app
}

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, method, path string, body any, bearer string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestChatReturnsQuestion(t *testing.T) {
	support := &fakeSupportService{}
	app := newTestApp(support, &fakeHelpdeskService{})

	status, body := do(t, app, http.MethodPost, "/api/support/v1/chat", map[string]any{
		"org_id":  "acme",
		"user_id": "u1",
		"message": "vpn is broken",
		"context": map[string]any{"os": "Windows"},
	}, "")

	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "question", data["type"])
	assert.Equal(t, "Which operating system are you on?", data["next_question"])
	assert.Equal(t, "Windows", support.lastChat.Context["os"])
}

func TestChatRejectsMissingMessage(t *testing.T) {
	app := newTestApp(&fakeSupportService{}, &fakeHelpdeskService{})

	status, body := do(t, app, http.MethodPost, "/api/support/v1/chat", map[string]any{
		"org_id":  "acme",
		"user_id": "u1",
	}, "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestCreateSession(t *testing.T) {
	app := newTestApp(&fakeSupportService{}, &fakeHelpdeskService{})

	status, body := do(t, app, http.MethodPost, "/api/support/v1/session", map[string]any{
		"org_id":  "acme",
		"user_id": "u1",
	}, "")

	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "sess-u1", body["data"].(map[string]any)["session_id"])
}

func TestShowUnknownSessionIsNotFound(t *testing.T) {
	app := newTestApp(&fakeSupportService{}, &fakeHelpdeskService{})

	status, _ := do(t, app, http.MethodGet, "/api/support/v1/session/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodGet, "/api/support/v1/session/sess-1", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHelpdeskRequiresToken(t *testing.T) {
	app := newTestApp(&fakeSupportService{}, &fakeHelpdeskService{})

	status, _ := do(t, app, http.MethodGet, "/api/helpdesk/v1/tickets", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, http.MethodGet, "/api/helpdesk/v1/tickets", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHelpdeskScopesTicketsToAgentOrg(t *testing.T) {
	helpdesk := &fakeHelpdeskService{}
	app := newTestApp(&fakeSupportService{}, helpdesk)
	bearer := token(t, jwt.MapClaims{"user_id": "agent-1", "org_id": "acme"})

	status, _ := do(t, app, http.MethodGet, "/api/helpdesk/v1/tickets?org_id=globex&status=created", nil, bearer)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "acme", helpdesk.lastTickets.OrgId)
	assert.Equal(t, "created", helpdesk.lastTickets.Status)
}

func TestHelpdeskRejectsUnknownStatus(t *testing.T) {
	app := newTestApp(&fakeSupportService{}, &fakeHelpdeskService{})
	bearer := token(t, jwt.MapClaims{"user_id": "agent-1"})

	status, _ := do(t, app, http.MethodGet, "/api/helpdesk/v1/tickets?status=pending", nil, bearer)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCloseTicketHidesOtherOrganisations(t *testing.T) {
	id := uuid.New()
	helpdesk := &fakeHelpdeskService{tickets: map[uuid.UUID]*dto.TicketDetailResponse{
		id: {TicketSummaryResponse: dto.TicketSummaryResponse{Id: id.String(), OrgId: "globex", Status: "created"}},
	}}
	app := newTestApp(&fakeSupportService{}, helpdesk)

	acme := token(t, jwt.MapClaims{"user_id": "agent-1", "org_id": "acme"})
	status, _ := do(t, app, http.MethodPut, "/api/helpdesk/v1/tickets/"+id.String()+"/close", nil, acme)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Empty(t, helpdesk.closed)

	globex := token(t, jwt.MapClaims{"user_id": "agent-2", "org_id": "globex"})
	status, _ = do(t, app, http.MethodPut, "/api/helpdesk/v1/tickets/"+id.String()+"/close", nil, globex)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uuid.UUID{id}, helpdesk.closed)
}

func TestShowTicketRejectsMalformedID(t *testing.T) {
	app := newTestApp(&fakeSupportService{}, &fakeHelpdeskService{})
	bearer := token(t, jwt.MapClaims{"user_id": "agent-1"})

	status, _ := do(t, app, http.MethodGet, "/api/helpdesk/v1/tickets/not-a-uuid", nil, bearer)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWsWithoutUpgradeIsRejected(t *testing.T) {
	app := newTestApp(&fakeSupportService{}, &fakeHelpdeskService{})
	bearer := token(t, jwt.MapClaims{"user_id": "agent-1"})

	status, _ := do(t, app, http.MethodGet, "/api/helpdesk/v1/ws", nil, bearer)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
