package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/controller"
	"github.com/pixai-app/pixai-api/model"
	"github.com/pixai-app/pixai-api/relay/channel"
	relaycontroller "github.com/pixai-app/pixai-api/relay/controller"
	relaymodel "github.com/pixai-app/pixai-api/relay/model"
)

const testSecret = "router-test-secret"

type stubProcessor struct {
	calls atomic.Int32
	err   error
}

func (p *stubProcessor) Process(ctx context.Context, request relaymodel.ImageRequest) (*relaymodel.ImageResult, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &relaymodel.ImageResult{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MimeType: "image/png"}, nil
}

func setup(t *testing.T, credit int64) (*gin.Engine, *stubProcessor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := model.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.Migrate(db))
	model.DB = db
	require.NoError(t, (&model.User{Id: "u1", Username: "alice", CreditBalance: credit}).Insert())

	previousSecret := config.JwtSecret
	config.JwtSecret = testSecret
	processor := &stubProcessor{}
	controller.ImageRelay = &relaycontroller.ImageRelay{Store: model.CreditStore{}, Processor: processor}
	t.Cleanup(func() {
		config.JwtSecret = previousSecret
		_ = sqlDB.Close()
	})

	engine := gin.New()
	SetRouter(engine)
	return engine, processor
}

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1", "exp": exp.Unix()}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func serve(engine *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func balance(t *testing.T) int64 {
	t.Helper()
	credit, err := model.GetUserCredit(context.Background(), "u1")
	require.NoError(t, err)
	return credit
}

func jsonRequest(path string, body string, auth string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req
}

func uploadRequest(t *testing.T, path string, fields map[string]string, auth string) *http.Request {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="in.png"`)
	h.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", auth)
	return req
}

func TestGenerateImage(t *testing.T) {
	engine, processor := setup(t, 3)

	w, body := serve(engine, jsonRequest("/api/image/generate-image", `{"prompt":"a red fox"}`, token(t, time.Now().Add(time.Hour))))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Image generated", body["message"])
	assert.Equal(t, float64(2), body["creditBalance"])
	assert.Equal(t, "data:image/png;base64,iVBORw==", body["resultImage"])
	assert.Equal(t, int64(2), balance(t))
	assert.Equal(t, int32(1), processor.calls.Load())
}

func TestGenerateImageBodyLimit(t *testing.T) {
	engine, processor := setup(t, 3)
	prompt := strings.Repeat("a", config.MaxRequestBodyKB<<10)

	_, body := serve(engine, jsonRequest("/api/image/generate-image", `{"prompt":"`+prompt+`"}`, token(t, time.Now().Add(time.Hour))))

	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "Request body too large")
	assert.Equal(t, int32(0), processor.calls.Load())
	assert.Equal(t, int64(3), balance(t))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	engine, processor := setup(t, 3)

	w, body := serve(engine, jsonRequest("/api/image/generate-image", `{"prompt":"a red fox"}`, token(t, time.Now().Add(-time.Minute))))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not Authorized. Login Again", body["message"])
	assert.Equal(t, int32(0), processor.calls.Load())
	assert.Equal(t, int64(3), balance(t))
}

func TestRemoveTextUpload(t *testing.T) {
	engine, _ := setup(t, 1)

	w, body := serve(engine, uploadRequest(t, "/api/image/remove-text", nil, token(t, time.Now().Add(time.Hour))))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Text removed", body["message"])
	assert.Equal(t, int64(0), balance(t))
}

func TestUpscaleOutOfRange(t *testing.T) {
	engine, processor := setup(t, 1)

	_, body := serve(engine, uploadRequest(t, "/api/image/upscale-image",
		map[string]string{"target_width": "5000", "target_height": "100"}, token(t, time.Now().Add(time.Hour))))

	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "Missing details")
	assert.Equal(t, int32(0), processor.calls.Load())
	assert.Equal(t, int64(1), balance(t))
}

func TestRemoteFailureKeepsCredit(t *testing.T) {
	engine, processor := setup(t, 1)
	processor.err = channel.NewRemoteError("clipdrop", http.StatusInternalServerError, "image service responded with status 500")

	_, body := serve(engine, jsonRequest("/api/image/generate-image", `{"prompt":"x"}`, token(t, time.Now().Add(time.Hour))))

	assert.Equal(t, false, body["success"])
	assert.Equal(t, "image service responded with status 500", body["message"])
	assert.Equal(t, int64(1), balance(t))
}

func TestNoCredit(t *testing.T) {
	engine, processor := setup(t, 0)

	_, body := serve(engine, jsonRequest("/api/image/generate-image", `{"prompt":"x"}`, token(t, time.Now().Add(time.Hour))))

	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No credit balance", body["message"])
	assert.Equal(t, float64(0), body["creditBalance"])
	assert.Equal(t, int32(0), processor.calls.Load())
}

func TestUserCredits(t *testing.T) {
	engine, _ := setup(t, 7)
	req := httptest.NewRequest(http.MethodGet, "/api/user/credits", nil)
	req.Header.Set("Authorization", token(t, time.Now().Add(time.Hour)))

	w, body := serve(engine, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["credits"])
	assert.Equal(t, "alice", body["user"].(map[string]any)["name"])
}

func TestPublicRoutes(t *testing.T) {
	engine, _ := setup(t, 0)

	w, body := serve(engine, httptest.NewRequest(http.MethodGet, "/api/credit/plans", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].(map[string]any)["list"], 3)

	w, _ = serve(engine, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = serve(engine, jsonRequest("/api/image/colorize", `{}`, token(t, time.Now().Add(time.Hour))))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}
