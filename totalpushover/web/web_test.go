package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/admin"
	"github.com/boogah/total-pushover/totalpushover/hook"
	"github.com/boogah/total-pushover/totalpushover/intercept"
	"github.com/boogah/total-pushover/totalpushover/notice"
	"github.com/boogah/total-pushover/totalpushover/pushover"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakePushover counts posts and answers with status.
func fakePushover(t *testing.T, status int) (*httptest.Server, *int32) {
	t.Helper()
	var posts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"status":1}`))
		} else {
			_, _ = w.Write([]byte(`{"status":0,"errors":["user identifier is invalid"]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &posts
}

func newAPI(creds totalpushover.Credentials, endpoint string) *API {
	cfg := totalpushover.Config{Credentials: creds, Endpoint: endpoint}
	client := pushover.NewClient(cfg.Endpoint, time.Second)
	store := notice.NewMemory()
	logger := zerolog.Nop()

	var d hook.Dispatcher
	d.Register(hook.DefaultPriority, intercept.New(cfg, client, logger))

	return &API{
		Logger:     logger,
		Hook:       &d,
		Tester:     &admin.Tester{Credentials: creds, Sender: client, Store: store, Logger: logger},
		Notices:    &admin.Notices{Store: store, Logger: logger},
		Configured: creds.Enabled(),
	}
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestTestTriggerSuccessScenario(t *testing.T) {
	srv, posts := fakePushover(t, http.StatusOK)
	h := newAPI(totalpushover.Credentials{APIToken: "tok123", UserKey: "usr456"}, srv.URL).Handler()

	w := get(h, "/admin/plugins?total_pushover_test=true")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, PluginsPath, w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "<table")
	assert.EqualValues(t, 1, atomic.LoadInt32(posts))

	w = get(h, PluginsPath)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="notice notice-success is-dismissible"`)
	assert.Contains(t, w.Body.String(), admin.SuccessNotice)

	w = get(h, PluginsPath)
	assert.NotContains(t, w.Body.String(), "notice-")
}

func TestTestTriggerTransportFailure(t *testing.T) {
	srv, posts := fakePushover(t, http.StatusBadRequest)
	h := newAPI(totalpushover.Credentials{APIToken: "tok123", UserKey: "bad"}, srv.URL).Handler()

	w := get(h, "/admin/plugins?total_pushover_test=true")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(posts))

	w = get(h, PluginsPath)
	assert.Contains(t, w.Body.String(), `class="notice notice-error is-dismissible"`)
	assert.Contains(t, w.Body.String(), admin.ErrorNotice)
}

func TestTestTriggerMissingCredentials(t *testing.T) {
	srv, posts := fakePushover(t, http.StatusOK)
	h := newAPI(totalpushover.Credentials{}, srv.URL).Handler()

	w := get(h, "/admin/plugins?total_pushover_test=true")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(posts))

	w = get(h, PluginsPath)
	assert.Contains(t, w.Body.String(), admin.ErrorNotice)
	assert.Contains(t, w.Body.String(), "(not configured)")
}

func TestTestTriggerIgnoresOtherValues(t *testing.T) {
	srv, posts := fakePushover(t, http.StatusOK)
	h := newAPI(totalpushover.Credentials{APIToken: "tok", UserKey: "usr"}, srv.URL).Handler()

	w := get(h, "/admin/plugins?total_pushover_test=1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(posts))
}

func TestPluginsListsTestLink(t *testing.T) {
	h := newAPI(totalpushover.Credentials{}, "http://127.0.0.1:0").Handler()

	body := get(h, PluginsPath).Body.String()
	test := strings.Index(body, `<a href="/admin/plugins?total_pushover_test=true">Test</a>`)
	deactivate := strings.Index(body, ">Deactivate</a>")
	require.NotEqual(t, -1, test)
	require.NotEqual(t, -1, deactivate)
	assert.Less(t, test, deactivate)
}

func postMail(h http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/hooks/mail", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestMailHookPassThrough(t *testing.T) {
	srv, posts := fakePushover(t, http.StatusOK)
	h := newAPI(totalpushover.Credentials{}, srv.URL).Handler()

	w := postMail(h, `{"to":["a@example.com"],"subject":"Reset your password","message":"<p>Click here</p>"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(posts))

	var reply totalpushover.InterceptReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.True(t, reply.Proceed)
	require.NotNil(t, reply.Mail)
	assert.Equal(t, totalpushover.Mail{
		To:      []string{"a@example.com"},
		Subject: "Reset your password",
		Message: "<p>Click here</p>",
	}, *reply.Mail)
}

func TestMailHookSuppresses(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
	}))
	defer srv.Close()
	h := newAPI(totalpushover.Credentials{APIToken: "tok123", UserKey: "usr456"}, srv.URL).Handler()

	w := postMail(h, `{"subject":"Alert","message":"<script>x</script>Server down"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, map[string]string{"token": "tok123", "user": "usr456", "title": "Alert", "message": "Server down"}, form)
}

func TestMailHookSuppressesOnPushoverFailure(t *testing.T) {
	srv, posts := fakePushover(t, http.StatusInternalServerError)
	h := newAPI(totalpushover.Credentials{APIToken: "tok", UserKey: "usr"}, srv.URL).Handler()

	w := postMail(h, `{"subject":"Alert","message":"down"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(posts))
}

func TestMailHookBadRequest(t *testing.T) {
	h := newAPI(totalpushover.Credentials{}, "http://127.0.0.1:0").Handler()
	assert.Equal(t, http.StatusBadRequest, postMail(h, `{not json`).Code)
}
