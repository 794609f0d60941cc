package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testHook = "TAAAAAAAA/BAAAAAAAA/123456789012345678901234"

type recorder struct {
	mu       sync.Mutex
	paths    []string
	bodies   []map[string]any
	status   int
	response string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, _ := io.ReadAll(req.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	r.paths = append(r.paths, req.URL.Path)
	r.bodies = append(r.bodies, body)

	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(r.response))
}

func newTestMessenger(t *testing.T, cfg Config) (*Messenger, *recorder, *errlog.Log) {
	t.Helper()

	rec := &recorder{response: "ok"}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	cfg.Host = srv.URL + "/services"
	if cfg.Webhook == "" {
		cfg.Webhook = testHook
	}

	log := errlog.New()
	m, err := NewMessenger(cfg, log, zaptest.NewLogger(t))
	require.NoError(t, err)

	return m, rec, log
}

func TestValidateWebhook(t *testing.T) {
	id, err := ValidateWebhook(DefaultHost, testHook)
	require.NoError(t, err)
	assert.Equal(t, WebhookID(testHook), id)

	id, err = ValidateWebhook(DefaultHost, DefaultHost+"/"+testHook)
	require.NoError(t, err)
	assert.Equal(t, WebhookID(testHook), id)

	for _, bad := range []string{
		"not-a-hook",
		"",
		"Taaaaaaaa/BAAAAAAAA/123456789012345678901234",
		"TAAAAAAAA/BAAAAAAAA/12345678901234567890123",
		"TAAAAAAAA-BAAAAAAAA-123456789012345678901234",
		"https://example.com/services/" + testHook,
	} {
		_, err := ValidateWebhook(DefaultHost, bad)
		assert.ErrorIs(t, err, ErrInvalidWebhook, "input %q", bad)
	}
}

func TestNewMessenger_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewMessenger(Config{Webhook: "not-a-hook"}, nil, logger)
	require.ErrorIs(t, err, ErrInvalidWebhook)

	_, err = NewMessenger(Config{Webhook: testHook, Channel: "#"}, nil, logger)
	require.ErrorIs(t, err, ErrInvalidChannel)

	_, err = NewMessenger(Config{Webhook: testHook, IconEmoji: ":)"}, nil, logger)
	require.ErrorIs(t, err, ErrInvalidIcon)

	_, err = NewMessenger(Config{Webhook: testHook, Username: "   "}, nil, logger)
	require.ErrorIs(t, err, ErrInvalidUsername)
}

func TestMessenger_NoticeOmitsAbsentFields(t *testing.T) {
	m, rec, _ := newTestMessenger(t, Config{Prefix: "acme/site"})

	require.NoError(t, m.Notice(context.Background(), "Deployment started"))

	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "/services/"+testHook, rec.paths[0])
	assert.Equal(t, map[string]any{"text": "acme/site: Deployment started."}, rec.bodies[0])
}

func TestMessenger_NoticeWithIdentity(t *testing.T) {
	m, rec, _ := newTestMessenger(t, Config{
		Username:  "deploybot",
		Channel:   "#deploys",
		IconEmoji: ":rocket:",
	})

	require.NoError(t, m.Notice(context.Background(), "Done"))

	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "deploybot", rec.bodies[0]["username"])
	assert.Equal(t, "#deploys", rec.bodies[0]["channel"])
	assert.Equal(t, ":rocket:", rec.bodies[0]["icon_emoji"])
	assert.Equal(t, "Done.", rec.bodies[0]["text"])
}

func TestMessenger_ErrorNotice(t *testing.T) {
	m, rec, _ := newTestMessenger(t, Config{Prefix: "site"})

	require.NoError(t, m.ErrorNotice(context.Background(), "Deployment failed", "exit status 5"))
	require.NoError(t, m.ErrorNotice(context.Background(), "Deployment failed", ""))

	require.Len(t, rec.bodies, 2)
	assert.Equal(t, "site: Deployment failed.\n*Error details:*\n```\nexit status 5```", rec.bodies[0]["text"])
	assert.Equal(t, "site: Deployment failed.", rec.bodies[1]["text"])
}

func TestMessenger_ErrorNoticeTruncates(t *testing.T) {
	m, rec, _ := newTestMessenger(t, Config{})

	require.NoError(t, m.ErrorNotice(context.Background(), "Failed", strings.Repeat("e", 20000)))

	text, ok := rec.bodies[0]["text"].(string)
	require.True(t, ok)
	assert.Contains(t, text, TruncatedMarker)
	assert.Less(t, len(text), 12000)
}

func TestMessenger_DeliveryFailures(t *testing.T) {
	m, rec, log := newTestMessenger(t, Config{})
	rec.status = http.StatusForbidden
	rec.response = "invalid_token"

	err := m.Notice(context.Background(), "hello")
	require.ErrorIs(t, err, ErrDelivery)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid_token")
	assert.True(t, log.Contains(ErrDelivery))
}

func TestMessenger_TransportFailure(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	host := srv.URL + "/services"
	srv.Close()

	log := errlog.New()
	m, err := NewMessenger(Config{Host: host, Webhook: testHook}, log, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = m.Notice(context.Background(), "hello")
	require.ErrorIs(t, err, ErrDelivery)
	assert.Equal(t, 1, log.Len())
}

func TestTruncateDetails(t *testing.T) {
	assert.Equal(t, "short", TruncateDetails("short"))

	exact := strings.Repeat("x", MaxDetails)
	assert.Equal(t, exact, TruncateDetails(exact))

	long := TruncateDetails(strings.Repeat("y", 20000))
	assert.True(t, strings.HasSuffix(long, TruncatedMarker))
	assert.Equal(t, MaxDetails, utf8.RuneCountInString(strings.TrimSuffix(long, TruncatedMarker)))

	multibyte := TruncateDetails(strings.Repeat("é", MaxDetails+5))
	assert.True(t, utf8.ValidString(multibyte))
	assert.Equal(t, MaxDetails, utf8.RuneCountInString(strings.TrimSuffix(multibyte, TruncatedMarker)))
}

func TestLinks(t *testing.T) {
	assert.Equal(t, "<https://example.com|site>", Link("https://example.com", "site"))
	assert.Equal(t, "https://github.com/acme/site", RepoURL("acme", "site"))
	assert.Equal(t, "<https://github.com/acme/site|acme/site>", RepoLink("acme", "site"))
	assert.Equal(t, "site", RepoLink("", "site"))
	assert.Equal(t, "<https://github.com/acme/site/tree/main|branch main>", BranchLink("acme", "site", "main"))
	assert.Equal(t,
		"<https://github.com/acme/site/actions/runs/42|Deployment #7>",
		DeployLink("acme", "site", "42", "7"))
	assert.Equal(t,
		"<https://github.com/acme/site/commit/9533bd09bb1f3aed1e70a9674ad7e2e818a890a1|9533bd0>",
		CommitLink("acme", "site", "9533bd09bb1f3aed1e70a9674ad7e2e818a890a1"))
}
