package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/mohdshetty/grap/apps/api/echo"
	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/notice"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
	"github.com/mohdshetty/grap/services/logger"
	"github.com/mohdshetty/grap/services/metrics"
	"github.com/mohdshetty/grap/storage/database/dummy"
	"github.com/mohdshetty/grap/tests"
)

// seeded accounts
const (
	adminID   = 1
	deanMgtID = 2 // Faculty of Management (1)
	deanSciID = 3 // Faculty of Science (2)
	hodAccID  = 101
	hodSocID  = 106 // Sociology has no submission
	hodCscID  = 201
)

var (
	conf = core.NewTestConfig()

	usrRepo    user.Repository
	dirRepo    directory.Repository
	subRepo    submission.Repository
	noticeRepo notice.Repository
	policies   *policy.Store

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

// setup builds a server over a freshly seeded database.
func setup(t *testing.T) *Server {
	// set up DB & repos
	db := testutil.PrepareDB(t, true)
	usrRepo = dummydb.NewUserRepository(db)
	dirRepo = dummydb.NewDirectoryRepository(db)
	subRepo = dummydb.NewSubmissionRepository(db)
	noticeRepo = dummydb.NewNoticeRepository(db)
	policies = policy.NewStore()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up services
	dirSvc := directory.NewService(dirRepo)

	// set up server
	return NewServer(&Options{
		Conf:           conf,
		Logger:         logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf),
		Validate:       validate,
		Translator:     translator,
		Metrics:        metricsvc.New(),
		Policy:         policies,
		UserSvc:        user.NewService(usrRepo, dirSvc),
		DirectorySvc:   dirSvc,
		SubmissionSvc:  submission.NewService(subRepo, conf.AcademicYear),
		NoticeSvc:      notice.NewService(noticeRepo),
		DisableReqLogs: true,
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getUser(t *testing.T, id int) user.User {
	usr, err := usrRepo.GetUserByID(id)
	if err != nil {
		t.Fatalf("getUser(%d) failed: %v", id, err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func tokenOf(t *testing.T, id int) string {
	return getToken(t, getUser(t, id))
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runTests serves each case against app in order; cases may depend on earlier ones.
func runTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
