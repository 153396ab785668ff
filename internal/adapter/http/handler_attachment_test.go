package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/domain"
)

func uploadFile(t *testing.T, env *testEnv, path, auth, fileName, contentType string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", auth)

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestUploadAndDownloadAttachment(t *testing.T) {
	env := newTestEnv(t)
	dev := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	task := seedTask(t, env, dev.ID, nil)

	resp := uploadFile(t, env, "/api/v1/tasks/"+task.ID+"/attachments", bearerFor(dev),
		"notes.txt", "text/plain", []byte("stack trace attached"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeEnvelope(t, resp)

	attachmentID, _ := data["id"].(string)
	require.NotEmpty(t, attachmentID)
	assert.Equal(t, "notes.txt", data["file_name"])
	assert.Equal(t, dev.ID, data["uploader_id"])
	assert.NotContains(t, data, "storage_path")

	dl := env.do(t, http.MethodGet, "/api/v1/attachments/"+attachmentID, bearerFor(dev), nil)
	require.Equal(t, http.StatusOK, dl.StatusCode)
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "stack trace attached", string(body))
	assert.Equal(t, "text/plain", dl.Header.Get("Content-Type"))
}

func TestUploadAttachmentRejectsDisallowedType(t *testing.T) {
	env := newTestEnv(t)
	dev := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	task := seedTask(t, env, dev.ID, nil)

	resp := uploadFile(t, env, "/api/v1/tasks/"+task.ID+"/attachments", bearerFor(dev),
		"payload.bin", "application/octet-stream", []byte{0x00, 0x01})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadAttachmentMissingParent(t *testing.T) {
	env := newTestEnv(t)
	dev := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}

	resp := uploadFile(t, env, "/api/v1/tasks/"+uuid.NewString()+"/attachments", bearerFor(dev),
		"notes.txt", "text/plain", []byte("x"))
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteAttachmentPolicy(t *testing.T) {
	env := newTestEnv(t)
	uploader := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	task := seedTask(t, env, uploader.ID, nil)

	resp := uploadFile(t, env, "/api/v1/tasks/"+task.ID+"/attachments", bearerFor(uploader),
		"notes.txt", "text/plain", []byte("x"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeEnvelope(t, resp)
	attachmentID := data["id"].(string)

	// An unrelated developer cannot delete it.
	stranger := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	del := env.do(t, http.MethodDelete, "/api/v1/attachments/"+attachmentID, bearerFor(stranger), nil)
	del.Body.Close()
	assert.Equal(t, http.StatusForbidden, del.StatusCode)

	// The uploader can.
	del = env.do(t, http.MethodDelete, "/api/v1/attachments/"+attachmentID, bearerFor(uploader), nil)
	del.Body.Close()
	assert.Equal(t, http.StatusOK, del.StatusCode)

	_, err := env.attachmentRepo.FindByID(context.Background(), attachmentID)
	assert.ErrorIs(t, err, domain.ErrAttachmentNotFound)
}
