package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	. "github.com/prajyots60/myskill-agenda/apps/api/echo"
	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
	dummydb "github.com/prajyots60/myskill-agenda/storage/database/dummy"
)

var (
	testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fixture struct {
	app  Server
	repo interface {
		AddSession(rec timeline.Record, ownerID string)
		AddExam(rec timeline.Record, ownerID string)
	}
	conf *core.Config
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupIn(t, time.UTC)
}

func setupIn(t *testing.T, loc *time.Location) *fixture {
	t.Helper()

	conf := &core.Config{
		AppName:   "MySkill",
		SecretKey: "test-secret",
		TestMode:  true,
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Agenda.PageSize = 10
	conf.Agenda.RequestTimeout = 5 * time.Second

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewAgendaRepository(db)

	clock := fakeClock{testNow}
	engine := timeline.NewEngine(repo, nopLogger{},
		timeline.WithClock(clock),
		timeline.WithLocation(loc),
		timeline.WithPageSize(conf.Agenda.PageSize),
	)
	coordinator := timeline.NewCoordinator(engine, repo, stubExportService{})

	validate, translator := core.NewValidator()

	app := NewServer(
		&Options{
			Config:         conf,
			Logger:         nopLogger{},
			Engine:         engine,
			Coordinator:    coordinator,
			Clock:          clock,
			Location:       loc,
			Validate:       validate,
			Translator:     translator,
			SignalShutdown: func() {},
			DisableReqLogs: true,
		},
	)
	return &fixture{app: app, repo: repo, conf: conf}
}

type stubExportService struct{}

func (stubExportService) Link(_ context.Context, _ timeline.Entry, _ timeline.ExportProvider) (string, error) {
	return "https://calendar.test/add", nil
}

type httpErr struct {
	Error string `json:"error"`
}

func newAuthRequest(method, path, token string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, viewerID, email string, role timeline.Role) string {
	t.Helper()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   viewerID,
			IssuedAt:  testNow.Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		Email:     email,
		IsStudent: role == timeline.RoleStudent,
		IsCreator: role == timeline.RoleCreator,
	}
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decoding response %q failed: %v", rec.Body.String(), err)
	}
}
