package processor

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/types"
)

// MockExtractor 模拟文档提取器
type MockExtractor struct {
	exts   []string
	text   string
	err    error
	panics bool

	mu    sync.Mutex
	calls int
}

func (m *MockExtractor) CanHandle(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range m.exts {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

func (m *MockExtractor) ExtractText(ctx context.Context, content []byte, fileName string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.panics {
		panic("extractor exploded")
	}
	return m.text, m.err
}

func (m *MockExtractor) SupportedExtensions() []string {
	return m.exts
}

// plainExtractor 不实现 ExtensionReporter
type plainExtractor struct{}

func (plainExtractor) CanHandle(string) bool { return false }
func (plainExtractor) ExtractText(context.Context, []byte, string) (string, error) {
	return "", nil
}

// MockAnalyzer 模拟文本分析器
type MockAnalyzer struct {
	resume *types.Resume
	err    error

	mu       sync.Mutex
	calls    int
	lastText string
	lastOpts AnalyzeOptions
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string, opts AnalyzeOptions) (*types.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastText = text
	m.lastOpts = opts
	return m.resume, m.err
}

func johnDoe() *types.Resume {
	return types.NewResume(types.ResumeFields{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john.doe@example.com",
		Experiences: []types.Experience{
			types.NewExperience("Software Development Engineer", "Built internal tools", nil, nil, nil),
		},
	})
}

func TestResumeService_Process_Success(t *testing.T) {
	extractor := &MockExtractor{exts: []string{"pdf"}, text: "John Doe\nSoftware Engineer\n"}
	analyzer := &MockAnalyzer{resume: johnDoe()}
	service := NewResumeService([]DocumentExtractor{extractor}, analyzer)

	resume, err := service.Process(context.Background(), []byte("%PDF"), "cv.pdf", AnalyzeOptions{IncludeRawText: true})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", resume.FullName())
	assert.Equal(t, "John Doe\nSoftware Engineer\n", analyzer.lastText, "提取的文本应原样传给分析器")
	assert.True(t, analyzer.lastOpts.IncludeRawText, "选项应透传给分析器")
	assert.Equal(t, 1, extractor.calls)
}

func TestResumeService_Process_UnsupportedFormat(t *testing.T) {
	extractor := &MockExtractor{exts: []string{"pdf"}, text: "x"}
	analyzer := &MockAnalyzer{resume: johnDoe()}
	service := NewResumeService([]DocumentExtractor{extractor}, analyzer)

	resume, err := service.Process(context.Background(), []byte("plain text"), "notes.txt", AnalyzeOptions{})
	require.Error(t, err)
	assert.Nil(t, resume)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Equal(t, KindUnsupportedFormat, KindOf(err))
	assert.Equal(t, "Unsupported file format: notes.txt", err.Error())

	// 没有文件名时同样是格式不支持
	resume, err = service.Process(context.Background(), []byte("%PDF"), "", AnalyzeOptions{})
	require.Error(t, err)
	assert.Nil(t, resume)
	assert.Equal(t, KindUnsupportedFormat, KindOf(err))
	assert.Equal(t, "Unsupported file format: ", err.Error())

	// 提取器和分析器都不应被调用
	assert.Equal(t, 0, extractor.calls)
	assert.Equal(t, 0, analyzer.calls)
}

func TestResumeService_Process_ExtractionFailure(t *testing.T) {
	extractor := &MockExtractor{
		exts: []string{"pdf"},
		err:  NewExtractionError("scan.pdf", "Could not extract text from PDF: scan.pdf"),
	}
	analyzer := &MockAnalyzer{resume: johnDoe()}
	service := NewResumeService([]DocumentExtractor{extractor}, analyzer)

	_, err := service.Process(context.Background(), []byte("%PDF"), "scan.pdf", AnalyzeOptions{})
	require.Error(t, err)
	assert.Equal(t, KindExtraction, KindOf(err))
	assert.Equal(t, "Could not extract text from PDF: scan.pdf", DetailOf(err))
	assert.Equal(t, 0, analyzer.calls, "提取失败时不应调用分析器")
}

func TestResumeService_Process_AnalysisFailurePassesThrough(t *testing.T) {
	analysisErr := NewAnalysisError("schema validation failed")
	extractor := &MockExtractor{exts: []string{"pdf"}, text: "text"}
	service := NewResumeService([]DocumentExtractor{extractor}, &MockAnalyzer{err: analysisErr})

	resume, err := service.Process(context.Background(), []byte("%PDF"), "cv.pdf", AnalyzeOptions{})
	assert.Nil(t, resume)
	assert.Same(t, analysisErr, err, "已分类的错误应原样返回")
}

func TestResumeService_Process_UnclassifiedErrorsBecomeUnexpected(t *testing.T) {
	cases := []struct {
		name      string
		extractor *MockExtractor
		analyzer  *MockAnalyzer
	}{
		{
			name:      "提取器返回普通错误",
			extractor: &MockExtractor{exts: []string{"pdf"}, err: errors.New("disk full")},
			analyzer:  &MockAnalyzer{resume: johnDoe()},
		},
		{
			name:      "分析器返回普通错误",
			extractor: &MockExtractor{exts: []string{"pdf"}, text: "text"},
			analyzer:  &MockAnalyzer{err: errors.New("boom")},
		},
		{
			name:      "分析器返回空结果",
			extractor: &MockExtractor{exts: []string{"pdf"}, text: "text"},
			analyzer:  &MockAnalyzer{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewResumeService([]DocumentExtractor{tc.extractor}, tc.analyzer)
			resume, err := service.Process(context.Background(), []byte("%PDF"), "cv.pdf", AnalyzeOptions{})
			require.Error(t, err)
			assert.Nil(t, resume)
			assert.Equal(t, KindUnexpected, KindOf(err))
			assert.True(t, errors.Is(err, ErrUnexpected))
		})
	}
}

func TestResumeService_Process_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	extractor := &MockExtractor{exts: []string{"pdf"}, panics: true}
	service := NewResumeService([]DocumentExtractor{extractor}, &MockAnalyzer{resume: johnDoe()},
		WithServiceLogger(log.New(&buf, "", 0)))

	resume, err := service.Process(context.Background(), []byte("%PDF"), "cv.pdf", AnalyzeOptions{})
	require.Error(t, err)
	assert.Nil(t, resume)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Contains(t, DetailOf(err), "extractor exploded")
	assert.Contains(t, buf.String(), "panic")
}

func TestSettings_LogErrorKeepsPercentInError(t *testing.T) {
	var buf bytes.Buffer
	settings := defaultSettings()
	WithServiceLogger(log.New(&buf, "", 0))(settings)

	settings.logError(errors.New("open cv%20final.pdf: 100% broken"), "处理文件 %s 失败", "cv.pdf")
	assert.Equal(t, "ERROR: open cv%20final.pdf: 100% broken - 处理文件 cv.pdf 失败\n", buf.String())

	buf.Reset()
	settings.logError(nil, "第 %d 次", 2)
	assert.Equal(t, "ERROR: 第 2 次\n", buf.String())
}

func TestResumeService_Process_NilAnalyzer(t *testing.T) {
	extractor := &MockExtractor{exts: []string{"pdf"}, text: "text"}
	service := NewResumeService([]DocumentExtractor{extractor}, nil)

	_, err := service.Process(context.Background(), []byte("%PDF"), "cv.pdf", AnalyzeOptions{})
	require.Error(t, err)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Contains(t, DetailOf(err), ErrAnalyzerNotInit.Error())
}

func TestResumeService_FirstMatchingExtractorWins(t *testing.T) {
	first := &MockExtractor{exts: []string{"pdf"}, text: "from first"}
	second := &MockExtractor{exts: []string{"pdf", "docx"}, text: "from second"}
	analyzer := &MockAnalyzer{resume: johnDoe()}
	service := NewResumeService([]DocumentExtractor{nil, first, second}, analyzer)

	_, err := service.Process(context.Background(), nil, "CV.PDF", AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from first", analyzer.lastText)
	assert.Equal(t, 0, second.calls)

	_, err = service.Process(context.Background(), nil, "cv.docx", AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from second", analyzer.lastText)
}

func TestResumeService_SupportedExtensions(t *testing.T) {
	service := NewResumeService([]DocumentExtractor{
		&MockExtractor{exts: []string{"pdf"}},
		plainExtractor{},
		&MockExtractor{exts: []string{"docx", "pdf"}},
	}, nil)
	assert.Equal(t, []string{"pdf", "docx"}, service.SupportedExtensions())

	assert.Empty(t, NewResumeService(nil, nil).SupportedExtensions())
}

func TestResumeService_ConcurrentUse(t *testing.T) {
	extractor := &MockExtractor{exts: []string{"pdf"}, text: "text"}
	analyzer := &MockAnalyzer{resume: johnDoe()}
	service := NewResumeService([]DocumentExtractor{extractor}, analyzer)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Process(context.Background(), []byte("%PDF"), "cv.pdf", AnalyzeOptions{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, analyzer.calls)
}

func TestErrorKinds(t *testing.T) {
	err := NewExtractionError("a.pdf", "bad xref")
	assert.Equal(t, "failed to extract text from document: bad xref", err.Error())
	assert.True(t, errors.Is(err, ErrExtractionFailed))
	assert.False(t, errors.Is(err, ErrAnalysisFailed))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "plain", DetailOf(errors.New("plain")))
	assert.Equal(t, "", DetailOf(nil))
}
