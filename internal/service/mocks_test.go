package service

import (
	"context"
	"strconv"
	"sync"

	"pixelgram/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock messaging transport
type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	args := m.Called(ctx, chatID, text)
	return args.Int(0), args.Error(1)
}

func (m *mockMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	args := m.Called(ctx, chatID, messageID, text)
	return args.Error(0)
}

func (m *mockMessenger) EditTextWithActions(ctx context.Context, chatID int64, messageID int, text, batchID string) error {
	args := m.Called(ctx, chatID, messageID, text, batchID)
	return args.Error(0)
}

func (m *mockMessenger) DownloadAttachment(ctx context.Context, fileRef, fileName string) (string, error) {
	args := m.Called(ctx, fileRef, fileName)
	return args.String(0), args.Error(1)
}

func (m *mockMessenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	args := m.Called(ctx, callbackID, text, alert)
	return args.Error(0)
}

// Fake store client with programmable behavior and deterministic links
type fakeStore struct {
	mu          sync.Mutex
	uploadFn    func(path string) (string, error)
	createFn    func(fileIDs []string, title string) (string, error)
	createCalls [][]string
}

func (f *fakeStore) UploadFile(ctx context.Context, path string) (string, error) {
	if f.uploadFn != nil {
		return f.uploadFn(path)
	}
	return "stored", nil
}

func (f *fakeStore) CreateList(ctx context.Context, fileIDs []string, title string) (string, error) {
	f.mu.Lock()
	ids := make([]string, len(fileIDs))
	copy(ids, fileIDs)
	f.createCalls = append(f.createCalls, ids)
	f.mu.Unlock()

	if f.createFn != nil {
		return f.createFn(fileIDs, title)
	}
	return "list", nil
}

func (f *fakeStore) FileURL(id string) string {
	return "https://pixeldrain.com/u/" + id
}

func (f *fakeStore) ListURL(id string) string {
	return "https://pixeldrain.com/l/" + id
}

func (f *fakeStore) CreateCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

// Fake uploader safe for concurrent fan-out
type fakeUploader struct {
	mu      sync.Mutex
	calls   []models.IncomingFile
	outcome func(file models.IncomingFile) models.UploadOutcome
}

func (f *fakeUploader) Upload(ctx context.Context, file models.IncomingFile) models.UploadOutcome {
	f.mu.Lock()
	f.calls = append(f.calls, file)
	f.mu.Unlock()

	if f.outcome != nil {
		return f.outcome(file)
	}
	return models.UploadOutcome{File: file, FileID: "id-" + strconv.Itoa(file.MessageID)}
}

func (f *fakeUploader) Calls() []models.IncomingFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]models.IncomingFile, len(f.calls))
	copy(calls, f.calls)
	return calls
}
