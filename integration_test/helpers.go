package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"pixelgram/internal/service"
	"pixelgram/pkg/pixeldrain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// TestEnvironment wires the real upload pipeline against an in-process store
// stub: aggregator, upload service, pending actions, decision handlers, and a
// pixeldrain client pointed at an httptest server. Only the messaging
// transport is replaced by a recording fake.
type TestEnvironment struct {
	t *testing.T

	Store      *storeStub
	Messenger  *recordingMessenger
	Pending    *service.PendingActions
	Aggregator *service.Aggregator
	Actions    *service.ActionService

	cleanup []func()
}

func NewTestEnvironment(t *testing.T, debounce time.Duration) *TestEnvironment {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	store := newStoreStub(t)
	client := pixeldrain.NewClientWithLogger(pixeldrain.ClientConfig{
		BaseURL:     store.server.URL,
		APIKey:      "integration-key",
		ListTimeout: 5 * time.Second,
	}, logger)

	msgr := newRecordingMessenger(t)
	pending := service.NewPendingActions(time.Hour)
	uploader := service.NewUploadService(msgr, client, logger)
	aggregator := service.NewAggregator(context.Background(), debounce, uploader, msgr, pending, client, logger)
	actions := service.NewActionService(pending, client, msgr, logger)

	env := &TestEnvironment{
		t:          t,
		Store:      store,
		Messenger:  msgr,
		Pending:    pending,
		Aggregator: aggregator,
		Actions:    actions,
	}
	env.cleanup = append(env.cleanup, aggregator.Stop, store.server.Close)
	return env
}

func (env *TestEnvironment) Cleanup() {
	for i := len(env.cleanup) - 1; i >= 0; i-- {
		env.cleanup[i]()
	}
}

// storeStub emulates the store's upload and list endpoints, assigning
// sequential file IDs and remembering the file IDs of each created list.
type storeStub struct {
	mu      sync.Mutex
	server  *httptest.Server
	uploads []string
	lists   [][]string

	failNames map[string]bool
	nextID    int
}

func newStoreStub(t *testing.T) *storeStub {
	t.Helper()

	stub := &storeStub{failNames: make(map[string]bool)}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/file/", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.URL.Path)
		body, _ := io.ReadAll(r.Body)

		stub.mu.Lock()
		defer stub.mu.Unlock()

		// Uploads arrive under temp-file names (attach_<rand>_<original>),
		// so failure injection matches on the original-name suffix.
		if stub.shouldFail(name) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "upload rejected"})
			return
		}

		stub.nextID++
		id := "f" + strconv.Itoa(stub.nextID)
		stub.uploads = append(stub.uploads, name+":"+string(body))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": id, "success": true})
	})
	mux.HandleFunc("/api/list", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Files []struct {
				ID string `json:"id"`
			} `json:"files"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)

		ids := make([]string, 0, len(payload.Files))
		for _, f := range payload.Files {
			ids = append(ids, f.ID)
		}

		stub.mu.Lock()
		stub.lists = append(stub.lists, ids)
		stub.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "L1", "success": true})
	})
	stub.server = httptest.NewServer(mux)
	return stub
}

func (s *storeStub) FailUploadsNamed(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNames[name] = true
}

// shouldFail expects s.mu to be held.
func (s *storeStub) shouldFail(uploadName string) bool {
	for failName := range s.failNames {
		if strings.HasSuffix(uploadName, failName) {
			return true
		}
	}
	return false
}

func (s *storeStub) Lists() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.lists))
	copy(out, s.lists)
	return out
}

func (s *storeStub) UploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

// recordingMessenger satisfies the service messenger surface. Downloads are
// served from a local temp directory; every send and edit is recorded and
// announced on Updated for test synchronization.
type recordingMessenger struct {
	t       *testing.T
	tempDir string

	mu         sync.Mutex
	nextMsgID  int
	texts      map[int]string
	batchIDs   map[int]string
	toasts     []string
	Updated    chan int
	downloaded int
}

func newRecordingMessenger(t *testing.T) *recordingMessenger {
	t.Helper()
	return &recordingMessenger{
		t:        t,
		tempDir:  t.TempDir(),
		texts:    make(map[int]string),
		batchIDs: make(map[int]string),
		Updated:  make(chan int, 32),
	}
}

func (m *recordingMessenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsgID++
	m.texts[m.nextMsgID] = text
	return m.nextMsgID, nil
}

func (m *recordingMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	m.mu.Lock()
	m.texts[messageID] = text
	delete(m.batchIDs, messageID)
	m.mu.Unlock()
	m.Updated <- messageID
	return nil
}

func (m *recordingMessenger) EditTextWithActions(ctx context.Context, chatID int64, messageID int, text, batchID string) error {
	m.mu.Lock()
	m.texts[messageID] = text
	m.batchIDs[messageID] = batchID
	m.mu.Unlock()
	m.Updated <- messageID
	return nil
}

func (m *recordingMessenger) DownloadAttachment(ctx context.Context, fileRef, fileName string) (string, error) {
	file, err := os.CreateTemp(m.tempDir, "attach_*_"+fileName)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.WriteString("content-of-" + fileRef); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.downloaded++
	m.mu.Unlock()
	return file.Name(), nil
}

func (m *recordingMessenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, text)
	return nil
}

func (m *recordingMessenger) Text(messageID int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texts[messageID]
}

func (m *recordingMessenger) BatchID(messageID int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchIDs[messageID]
}

func (m *recordingMessenger) Toasts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.toasts))
	copy(out, m.toasts)
	return out
}

func (m *recordingMessenger) WaitForUpdate(timeout time.Duration) int {
	m.t.Helper()
	select {
	case id := <-m.Updated:
		return id
	case <-time.After(timeout):
		require.FailNow(m.t, "timed out waiting for a message update")
		return 0
	}
}
