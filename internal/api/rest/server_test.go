package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "opd-scanner/internal/application"
	"opd-scanner/internal/domain/entity"
)

type fakeAnalyzer struct {
	result entity.AnalysisResult
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, frame entity.Frame) (*entity.AnalysisResult, error) {
	res := a.result
	res.Preview = frame
	return &res, nil
}

func (a *fakeAnalyzer) Decode(data []byte) (entity.Frame, error) {
	if !bytes.HasPrefix(data, []byte("img")) {
		return entity.Frame{}, errors.New("failed to decode image")
	}
	return entity.NewFrame(2, 2, make([]byte, 12))
}

type fakeAdvisor struct {
	reply string
}

func (a *fakeAdvisor) Advise(ctx context.Context, req entity.AdviceRequest) (string, error) {
	return a.reply, nil
}

func newTestRouter(result entity.AnalysisResult, advisor *fakeAdvisor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	var advisory *app.AdvisoryService
	if advisor != nil {
		advisory = app.NewAdvisoryService(advisor, time.Second, nil)
	} else {
		advisory = app.NewAdvisoryService(nil, 0, nil)
	}
	scans := app.NewScanService(&fakeAnalyzer{result: result}, advisory)
	return NewRouter(scans, nil)
}

func buildMultipartBody(t *testing.T, pain string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if pain != "" {
		require.NoError(t, writer.WriteField("pain", pain))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "injury.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func postScan(t *testing.T, router *gin.Engine, pain string, image []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := buildMultipartBody(t, pain, image)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(entity.AnalysisResult{}, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok","advisory":false}`, resp.Body.String())
}

func TestScan_LocalAdvice(t *testing.T) {
	router := newTestRouter(entity.AnalysisResult{Redness: 0.2, SwellingFraction: 0.1}, nil)

	resp := postScan(t, router, "4", []byte("img-data"))
	require.Equal(t, http.StatusOK, resp.Code)

	var got ScanResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, string(entity.ClassRedness), got.Label)
	assert.Equal(t, string(entity.SourceLocal), got.Source)
	assert.NotEmpty(t, got.Advice)
	assert.InDelta(t, 0.2, got.Redness, 1e-9)
	assert.InDelta(t, 0.1, got.SwellingFraction, 1e-9)
	assert.False(t, got.BruiseDetected)
}

func TestScan_WaitsForAdvisory(t *testing.T) {
	router := newTestRouter(entity.AnalysisResult{BruiseDetected: true, Redness: 0.1}, &fakeAdvisor{reply: "Apply a cold compress."})

	resp := postScan(t, router, "6", []byte("img-data"))
	require.Equal(t, http.StatusOK, resp.Code)

	var got ScanResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, string(entity.ClassBruise), got.Label)
	assert.Equal(t, string(entity.SourceAdvisory), got.Source)
	assert.Equal(t, "Apply a cold compress.", got.Advice)
}

func TestScan_BadRequests(t *testing.T) {
	router := newTestRouter(entity.AnalysisResult{}, nil)

	tests := []struct {
		name  string
		pain  string
		image []byte
	}{
		{name: "pain out of range", pain: "11", image: []byte("img-data")},
		{name: "pain not a number", pain: "a lot", image: []byte("img-data")},
		{name: "missing image", pain: "3"},
		{name: "undecodable image", pain: "3", image: []byte("not an image")},
		{name: "empty image", pain: "3", image: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postScan(t, router, tt.pain, tt.image)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Body.String(), "error")
		})
	}
}

func TestParsePain(t *testing.T) {
	p, err := parsePain("")
	require.NoError(t, err)
	assert.Equal(t, entity.MinPain, p)

	p, err = parsePain("10")
	require.NoError(t, err)
	assert.Equal(t, entity.MaxPain, p)

	_, err = parsePain("-1")
	assert.ErrorIs(t, err, entity.ErrInvalidPain)

	_, err = parsePain("x")
	assert.ErrorIs(t, err, entity.ErrInvalidPain)
}

func TestServe_StopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	router := newTestRouter(entity.AnalysisResult{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, listener, router, nil) }()

	url := "http://" + listener.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
