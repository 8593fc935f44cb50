package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/glebarez/sqlite"
	"github.com/krakosik/reputation/internal/client"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/repository"
	"github.com/krakosik/reputation/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testClients struct {
	authClient client.AuthClient
}

func (c testClients) AuthClient() client.AuthClient {
	return c.authClient
}

func (testClients) RabbitMQClient() client.RabbitClient {
	return nil
}

func (testClients) RedisClient() *redis.Client {
	return nil
}

func (testClients) Close() {}

type fakeAuthClient struct{}

func (fakeAuthClient) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	var actorID int64
	if _, err := fmt.Sscanf(idToken, "actor-%d", &actorID); err != nil {
		return nil, errors.New("malformed token")
	}
	return &auth.Token{UID: idToken, Claims: map[string]interface{}{"actor_id": float64(actorID)}}, nil
}

func newTestServer(t *testing.T, clients client.Clients) *echo.Echo {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	services := service.NewServices(repository.NewRepositories(db), dto.Config{TimeZone: "UTC"}, clients)
	t.Cleanup(func() {
		_ = services.Close()
		_ = sqlDB.Close()
	})

	e := echo.New()
	NewControllers(services).Route(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("decode %q: %v", recorder.Body.String(), err)
	}
	return value
}

func as(actorID int64) map[string]string {
	return map[string]string{ActorIDHeader: fmt.Sprint(actorID)}
}

func register(t *testing.T, e *echo.Echo, actorID int64, handle string) {
	t.Helper()

	body := fmt.Sprintf(`{"handle":%q}`, handle)
	recorder := do(t, e, http.MethodPut, fmt.Sprintf("/actors/%d", actorID), body, as(actorID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("register %d: %d %s", actorID, recorder.Code, recorder.Body.String())
	}
}

func TestInfo(t *testing.T) {
	e := newTestServer(t, testClients{})

	recorder := do(t, e, http.MethodGet, "/", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if info := decode[infoResponse](t, recorder); info.Status != "ok" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestActorEndpoints(t *testing.T) {
	e := newTestServer(t, testClients{})
	register(t, e, 200, "@bob")

	recorder := do(t, e, http.MethodPut, "/actors/200", `{"handle":"mallory"}`, as(100))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when updating someone else, got %d", recorder.Code)
	}

	recorder = do(t, e, http.MethodGet, "/actors/200", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", recorder.Code, recorder.Body.String())
	}
	profile := decode[dto.ProfileResponse](t, recorder)
	if profile.Actor.Handle != "bob" || profile.Stats.Total != 0 {
		t.Fatalf("unexpected profile %+v", profile)
	}

	recorder = do(t, e, http.MethodGet, "/actors/search?q=%40BO", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("search: %d %s", recorder.Code, recorder.Body.String())
	}
	if found := decode[dto.ProfileResponse](t, recorder); found.Actor.ActorID != 200 {
		t.Fatalf("expected actor 200, got %+v", found.Actor)
	}

	tests := []struct {
		target string
		status int
	}{
		{"/actors/404", http.StatusNotFound},
		{"/actors/abc", http.StatusBadRequest},
		{"/actors/search?q=nobody", http.StatusNotFound},
		{"/actors/search?q=", http.StatusBadRequest},
		{"/actors/200/votes?filter=bogus", http.StatusBadRequest},
		{"/actors/200/votes?limit=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if recorder := do(t, e, http.MethodGet, tt.target, "", nil); recorder.Code != tt.status {
			t.Fatalf("GET %s: expected %d, got %d", tt.target, tt.status, recorder.Code)
		}
	}
}

func TestSubmitAndBrowseVotes(t *testing.T) {
	e := newTestServer(t, testClients{})
	register(t, e, 100, "alice")
	register(t, e, 101, "carol")
	register(t, e, 200, "bob")

	recorder := do(t, e, http.MethodPost, "/votes", `{"to_actor_id":200,"polarity":"+","comment":"great trade","evidence_ref":"ph1"}`, as(100))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", recorder.Code, recorder.Body.String())
	}
	first := decode[dto.VoteResponse](t, recorder)
	if first.FromHandle != "alice" || first.Polarity != "positive" || first.EvidenceRef != "ph1" {
		t.Fatalf("unexpected vote %+v", first)
	}

	recorder = do(t, e, http.MethodPost, "/votes", `{"to_actor_id":200,"polarity":"negative","evidence_ref":"ph2"}`, as(100))
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", recorder.Code)
	}
	if rejected := decode[dto.RejectedResponse](t, recorder); rejected.Reason != dto.ReasonDailyLimit {
		t.Fatalf("expected daily limit, got %+v", rejected)
	}

	recorder = do(t, e, http.MethodPost, "/votes", `{"target":"@bo","polarity":"negative","evidence_ref":"ph3"}`, as(101))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("submit by search: %d %s", recorder.Code, recorder.Body.String())
	}
	second := decode[dto.VoteResponse](t, recorder)

	recorder = do(t, e, http.MethodGet, "/actors/200", "", nil)
	stats := decode[dto.ProfileResponse](t, recorder).Stats
	if stats.Total != 2 || stats.PositivePercent != 50 || stats.NegativePercent != 50 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	recorder = do(t, e, http.MethodGet, "/actors/200/votes?filter=negative", "", nil)
	list := decode[dto.VoteListResponse](t, recorder)
	if list.Total != 1 || len(list.Votes) != 1 || list.Votes[0].VoteID != second.VoteID || list.Votes[0].FromHandle != "carol" {
		t.Fatalf("unexpected negative list %+v", list)
	}

	recorder = do(t, e, http.MethodGet, fmt.Sprintf("/votes/%d/position", second.VoteID), "", nil)
	position := decode[dto.PositionResponse](t, recorder)
	if position.Index != 0 || position.Total != 2 || position.Label != "1/2" || !position.HasNext {
		t.Fatalf("unexpected position %+v", position)
	}

	recorder = do(t, e, http.MethodGet, fmt.Sprintf("/votes/%d/navigate?direction=next", second.VoteID), "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("navigate: %d %s", recorder.Code, recorder.Body.String())
	}
	if next := decode[dto.PositionResponse](t, recorder); next.Vote.VoteID != first.VoteID || next.Label != "2/2" {
		t.Fatalf("unexpected next %+v", next)
	}

	tests := []struct {
		target string
		status int
	}{
		{fmt.Sprintf("/votes/%d", first.VoteID), http.StatusOK},
		{"/votes/9999", http.StatusNotFound},
		{"/votes/0", http.StatusBadRequest},
		{fmt.Sprintf("/votes/%d/navigate?direction=prev", second.VoteID), http.StatusNotFound},
		{fmt.Sprintf("/votes/%d/navigate?direction=sideways", second.VoteID), http.StatusBadRequest},
		{fmt.Sprintf("/votes/%d/position?filter=positive", second.VoteID), http.StatusNotFound},
	}
	for _, tt := range tests {
		if recorder := do(t, e, http.MethodGet, tt.target, "", nil); recorder.Code != tt.status {
			t.Fatalf("GET %s: expected %d, got %d", tt.target, tt.status, recorder.Code)
		}
	}
}

func TestSubmitRejectionsAndErrors(t *testing.T) {
	e := newTestServer(t, testClients{})
	register(t, e, 100, "alice")
	register(t, e, 200, "bob")

	rejections := []struct {
		body   string
		reason dto.RejectReason
	}{
		{`{"to_actor_id":100,"polarity":"positive","evidence_ref":"ph"}`, dto.ReasonSelfVote},
		{`{"to_actor_id":300,"polarity":"positive","evidence_ref":"ph"}`, dto.ReasonTargetNotFound},
		{`{"target":"nobody","polarity":"positive","evidence_ref":"ph"}`, dto.ReasonTargetNotFound},
		{`{"to_actor_id":200,"polarity":"meh","evidence_ref":"ph"}`, dto.ReasonInvalidPolarity},
		{`{"to_actor_id":200,"polarity":"positive"}`, dto.ReasonMissingEvidence},
	}
	for _, tt := range rejections {
		recorder := do(t, e, http.MethodPost, "/votes", tt.body, as(100))
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", tt.body, recorder.Code)
		}
		if rejected := decode[dto.RejectedResponse](t, recorder); rejected.Status != "rejected" || rejected.Reason != tt.reason {
			t.Fatalf("%s: expected %q, got %+v", tt.body, tt.reason, rejected)
		}
	}

	if recorder := do(t, e, http.MethodPost, "/votes", `{"polarity":"positive","evidence_ref":"ph"}`, as(100)); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a target, got %d", recorder.Code)
	}
	if recorder := do(t, e, http.MethodPost, "/votes", `{not json`, as(100)); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed body, got %d", recorder.Code)
	}
	if recorder := do(t, e, http.MethodPost, "/votes", `{"to_actor_id":200,"polarity":"positive","evidence_ref":"ph"}`, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without an acting actor, got %d", recorder.Code)
	}

	// an unseen voter is recorded on first contact
	recorder := do(t, e, http.MethodPost, "/votes", `{"to_actor_id":200,"polarity":"positive","evidence_ref":"ph"}`, as(555))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a new voter, got %d %s", recorder.Code, recorder.Body.String())
	}
}

func TestBearerAuth(t *testing.T) {
	e := newTestServer(t, testClients{authClient: fakeAuthClient{}})
	put := func(token string) int {
		headers := map[string]string{}
		if token != "" {
			headers[echo.HeaderAuthorization] = token
		}
		return do(t, e, http.MethodPut, "/actors/100", `{"handle":"alice"}`, headers).Code
	}

	if code := put("Bearer actor-100"); code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", code)
	}
	if code := put("Bearer actor-101"); code != http.StatusForbidden {
		t.Fatalf("expected 403 for another actor's token, got %d", code)
	}

	for _, token := range []string{"", "actor-100", "Bearer garbage"} {
		if code := put(token); code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, code)
		}
	}

	// the header is ignored once tokens are verified
	if code := do(t, e, http.MethodPut, "/actors/100", `{}`, as(100)).Code; code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bare header, got %d", code)
	}
}
