package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bloomforge/internal/config"
	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
	"bloomforge/internal/handler"
	"bloomforge/internal/logger"
	"bloomforge/internal/middleware"
	"bloomforge/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sessionID = "01HZX3J5Q8M8W7K4T2C9D6B1AF"

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		log.Fatalf("Failed to initialize logger for handler tests: %v", err)
	}
	exitCode := m.Run()
	_ = logger.Sync()
	os.Exit(exitCode)
}

// --- Mocks ---

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, upload domain.Upload) (*dto.UploadResponse, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UploadResponse), args.Error(1)
}

func (m *MockDocumentService) UploadMultiple(ctx context.Context, uploads []domain.Upload) (*dto.MultiUploadResponse, error) {
	args := m.Called(ctx, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MultiUploadResponse), args.Error(1)
}

func (m *MockDocumentService) AddDocument(ctx context.Context, id string, upload domain.Upload) (*dto.AddDocumentResponse, error) {
	args := m.Called(ctx, id, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AddDocumentResponse), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, id string) (*dto.DocumentListResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DocumentListResponse), args.Error(1)
}

type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) GenerateQuestions(ctx context.Context, id string, req domain.Requirements) (*domain.GenerationResult, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationResult), args.Error(1)
}

func (m *MockGenerationService) AIStatus(ctx context.Context) *dto.AIStatusResponse {
	return m.Called(ctx).Get(0).(*dto.AIStatusResponse)
}

func (m *MockGenerationService) ListQuestionSets(ctx context.Context, id string, limit int) ([]*domain.QuestionSet, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuestionSet), args.Error(1)
}

func (m *MockGenerationService) LatestQuestionSet(ctx context.Context, id string) (*domain.QuestionSet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuestionSet), args.Error(1)
}

type MockExamService struct {
	mock.Mock
}

func (m *MockExamService) GenerateExamPaper(ctx context.Context, req *dto.GenerateExamPaperRequest) (*dto.ExamPaperResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExamPaperResponse), args.Error(1)
}

func (m *MockExamService) ExportPDF(ctx context.Context, paper *domain.ExamPaper) (*service.Export, error) {
	args := m.Called(ctx, paper)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Export), args.Error(1)
}

func (m *MockExamService) ExportMarkdown(ctx context.Context, paper *domain.ExamPaper) (*service.Export, error) {
	args := m.Called(ctx, paper)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Export), args.Error(1)
}

// --- Helpers ---

type fixture struct {
	app  *fiber.App
	docs *MockDocumentService
	gen  *MockGenerationService
	exam *MockExamService
}

func setup() *fixture {
	f := &fixture{
		app:  fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()}),
		docs: &MockDocumentService{},
		gen:  &MockGenerationService{},
		exam: &MockExamService{},
	}
	handler.RegisterRoutes(f.app.Group("/api"), handler.Handlers{
		Documents:  handler.NewDocumentHandler(f.docs),
		Generation: handler.NewGenerationHandler(f.gen),
		Exam:       handler.NewExamHandler(f.exam),
	})
	return f
}

type filePart struct {
	name string
	data string
}

func multipartRequest(t *testing.T, target, field string, files ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// --- Documents ---

func TestDocumentHandler_Upload(t *testing.T) {
	f := setup()
	f.docs.On("Upload", mock.Anything, mock.MatchedBy(func(u domain.Upload) bool {
		return u.FileName == "notes.pdf" && string(u.Data) == "%PDF-1.4 body"
	})).Return(&dto.UploadResponse{SessionID: sessionID, Message: "Document uploaded successfully", ContentLength: 42}, nil)

	resp, err := f.app.Test(multipartRequest(t, "/api/upload", "document", filePart{"notes.pdf", "%PDF-1.4 body"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, sessionID, body["sessionId"])
	assert.EqualValues(t, 42, body["contentLength"])
	f.docs.AssertExpectations(t)
}

func TestDocumentHandler_UploadWithoutFile(t *testing.T) {
	f := setup()

	resp, err := f.app.Test(multipartRequest(t, "/api/upload", "other", filePart{"notes.pdf", "x"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, string(domain.CodeUploadRejected), body.Code)
	f.docs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDocumentHandler_UploadRejectedByService(t *testing.T) {
	f := setup()
	f.docs.On("Upload", mock.Anything, mock.Anything).
		Return(nil, domain.NewUploadRejectedError("Unsupported file type: application/x-msdownload"))

	resp, err := f.app.Test(multipartRequest(t, "/api/upload", "document", filePart{"virus.exe", "MZ"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocumentHandler_UploadMultiple(t *testing.T) {
	f := setup()
	f.docs.On("UploadMultiple", mock.Anything, mock.MatchedBy(func(u []domain.Upload) bool {
		return len(u) == 2 && u[0].FileName == "a.pdf" && u[1].FileName == "b.docx"
	})).Return(&dto.MultiUploadResponse{SessionID: sessionID, TotalDocuments: 2}, nil)

	resp, err := f.app.Test(multipartRequest(t, "/api/upload-multiple", "documents",
		filePart{"a.pdf", "one"}, filePart{"b.docx", "two"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.MultiUploadResponse
	decode(t, resp, &body)
	assert.Equal(t, 2, body.TotalDocuments)
	f.docs.AssertExpectations(t)
}

func TestDocumentHandler_AddDocumentValidatesSession(t *testing.T) {
	f := setup()

	resp, err := f.app.Test(multipartRequest(t, "/api/add-document/not-a-ulid", "document", filePart{"a.pdf", "x"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, string(domain.CodeValidation), body.Code)
	f.docs.AssertNotCalled(t, "AddDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentHandler_AddDocument(t *testing.T) {
	f := setup()
	f.docs.On("AddDocument", mock.Anything, sessionID, mock.Anything).
		Return(&dto.AddDocumentResponse{SessionID: sessionID, TotalDocuments: 2}, nil)

	resp, err := f.app.Test(multipartRequest(t, "/api/add-document/"+sessionID, "document", filePart{"c.pptx", "x"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	f.docs.AssertExpectations(t)
}

func TestDocumentHandler_ListDocumentsNotFound(t *testing.T) {
	f := setup()
	f.docs.On("ListDocuments", mock.Anything, sessionID).Return(nil, domain.NewSessionNotFoundError(sessionID))

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+sessionID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body middleware.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, string(domain.CodeSessionNotFound), body.Code)
}

// --- Generation ---

func TestGenerationHandler_GenerateQuestions(t *testing.T) {
	f := setup()
	f.gen.On("GenerateQuestions", mock.Anything, sessionID, mock.MatchedBy(func(r domain.Requirements) bool {
		return r.QuestionCount == 6 && r.UseAI && r.Difficulty == domain.Medium &&
			len(r.QuestionTypes) == 2 && r.QuestionTypes[0] == domain.MultipleChoice
	})).Return(&domain.GenerationResult{
		Questions:        []domain.Question{{Content: "Q", Answer: "A", Marks: 2}},
		TotalQuestions:   1,
		TotalMarks:       2,
		GenerationMethod: service.MethodRuleBased,
	}, nil)

	req := jsonRequest(t, http.MethodPost, "/api/generate-questions", map[string]interface{}{
		"sessionId": sessionID,
		"requirements": map[string]interface{}{
			"questionCount":     6,
			"questionTypes":     []string{"mcq", "essay", "multiple-choice"},
			"bloomDistribution": "balanced",
		},
	})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, sessionID, body["sessionId"])
	assert.Equal(t, "rule-based", body["generationMethod"])
	assert.EqualValues(t, 1, body["totalQuestions"])
	assert.Len(t, body["questions"], 1)
	f.gen.AssertExpectations(t)
}

func TestGenerationHandler_GenerateQuestionsValidation(t *testing.T) {
	f := setup()

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing session", map[string]interface{}{"requirements": map[string]interface{}{"questionCount": 5}}},
		{"count out of range", map[string]interface{}{"sessionId": sessionID, "requirements": map[string]interface{}{"questionCount": 101}}},
		{"unknown type", map[string]interface{}{"sessionId": sessionID, "requirements": map[string]interface{}{"questionTypes": []string{"riddle"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/generate-questions", tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	f.gen.AssertNotCalled(t, "GenerateQuestions", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerationHandler_GenerateQuestionsBadJSON(t *testing.T) {
	f := setup()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-questions", bytes.NewBufferString("{oops"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, string(domain.CodeInvalidInput), body.Code)
}

func TestGenerationHandler_GenerateQuestionsSessionNotFound(t *testing.T) {
	f := setup()
	f.gen.On("GenerateQuestions", mock.Anything, sessionID, mock.Anything).Return(nil, domain.NewSessionNotFoundError(sessionID))

	resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/generate-questions", map[string]interface{}{"sessionId": sessionID}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerationHandler_AIStatus(t *testing.T) {
	f := setup()
	f.gen.On("AIStatus", mock.Anything).Return(&dto.AIStatusResponse{Available: false, Message: "AI generation is not configured"})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/ai-status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.AIStatusResponse
	decode(t, resp, &body)
	assert.False(t, body.Available)
	assert.NotEmpty(t, body.Message)
}

func TestGenerationHandler_QuestionSets(t *testing.T) {
	f := setup()
	f.gen.On("ListQuestionSets", mock.Anything, sessionID, 5).Return([]*domain.QuestionSet{
		{ID: "set-1", SessionID: sessionID, Questions: []domain.Question{{Content: "Q"}}},
	}, nil)
	f.gen.On("LatestQuestionSet", mock.Anything, sessionID).Return(nil, domain.NewNotFoundError("No question set"))

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/question-sets/"+sessionID+"?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.QuestionSetListResponse
	decode(t, resp, &list)
	require.Len(t, list.QuestionSets, 1)
	assert.Equal(t, 1, list.QuestionSets[0].TotalQuestions)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/api/question-sets/"+sessionID+"/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- Exam ---

func samplePaper() *domain.ExamPaper {
	return &domain.ExamPaper{
		Header: domain.ExamConfig{ExamTitle: "Biology"},
		Parts:  []domain.ExamPart{{Name: "Part A", Questions: []domain.Question{{Content: "Q", Answer: "A", Marks: 2}}}},
	}
}

func TestExamHandler_GenerateExamPaper(t *testing.T) {
	f := setup()
	f.exam.On("GenerateExamPaper", mock.Anything, mock.MatchedBy(func(r *dto.GenerateExamPaperRequest) bool {
		return len(r.Questions) == 1 && r.ExamConfig.CourseCode == "BIO101"
	})).Return(&dto.ExamPaperResponse{ExamPaper: samplePaper(), Message: "Exam paper generated successfully"}, nil)

	resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/generate-exam-paper", map[string]interface{}{
		"questions":  []map[string]interface{}{{"content": "What is chlorophyll?", "bloomLevel": "REMEMBER"}},
		"examConfig": map[string]interface{}{"courseCode": "BIO101"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	f.exam.AssertExpectations(t)
}

func TestExamHandler_GenerateExamPaperRequiresQuestions(t *testing.T) {
	f := setup()

	resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/generate-exam-paper", map[string]interface{}{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExamHandler_ExportPDF(t *testing.T) {
	f := setup()
	f.exam.On("ExportPDF", mock.Anything, mock.Anything).
		Return(&service.Export{Data: []byte("%PDF-1.7"), ContentType: "application/pdf", FileName: "exam-paper.pdf"}, nil)

	resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/export-pdf", dto.ExportRequest{ExamPaper: samplePaper()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "exam-paper.pdf")
	assert.Empty(t, resp.Header.Get(handler.HeaderRenderFallback))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestExamHandler_ExportPDFFallback(t *testing.T) {
	f := setup()
	f.exam.On("ExportPDF", mock.Anything, mock.Anything).Return(&service.Export{
		Data:        []byte("<html></html>"),
		ContentType: "text/html; charset=utf-8",
		FileName:    "exam-paper.html",
		Fallback:    true,
		Suggestion:  "Download the HTML version and print it to PDF from a browser",
	}, nil)

	resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/export-pdf", dto.ExportRequest{ExamPaper: samplePaper()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "html", resp.Header.Get(handler.HeaderRenderFallback))
	assert.NotEmpty(t, resp.Header.Get(handler.HeaderRenderSuggestion))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "exam-paper.html")
}

func TestExamHandler_ExportRequiresPaper(t *testing.T) {
	f := setup()

	for _, path := range []string{"/api/export-pdf", "/api/export-markdown"} {
		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, path, map[string]interface{}{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestExamHandler_ExportMarkdown(t *testing.T) {
	f := setup()
	f.exam.On("ExportMarkdown", mock.Anything, mock.Anything).
		Return(&service.Export{Data: []byte("# Biology"), ContentType: "text/markdown; charset=utf-8", FileName: "exam-paper.md"}, nil)

	resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/export-markdown", dto.ExportRequest{ExamPaper: samplePaper()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/markdown")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "exam-paper.md")
}
