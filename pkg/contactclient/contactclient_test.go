package contactclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-backend/pkg/contactclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeResult(w http.ResponseWriter, code int, res contactclient.Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(res)
}

func newForm(t *testing.T, srv *httptest.Server) *contactclient.Form {
	t.Helper()
	c, err := contactclient.New(
		contactclient.WithServer(srv.URL),
		contactclient.WithHTTPClient(srv.Client()),
		contactclient.WithUserAgent("contactclient-test"),
	)
	require.NoError(t, err)

	form := contactclient.NewForm(c)
	form.Name = "Ada"
	form.Email = "ada@x.com"
	form.Subject = "Hi"
	form.Message = "Hello\nWorld"
	return form
}

func TestNew_RequiresServer(t *testing.T) {
	_, err := contactclient.New()
	assert.Error(t, err)

	_, err = contactclient.New(contactclient.WithServer("ftp://example.com"))
	assert.Error(t, err)

	_, err = contactclient.New(contactclient.WithServer("http://localhost:8080"), contactclient.WithHTTPClient(nil))
	assert.Error(t, err)
}

func TestForm_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got contactclient.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contact", r.URL.Path)
		assert.Equal(t, "contactclient-test", r.Header.Get("User-Agent"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeResult(w, http.StatusOK, contactclient.Result{
			Success: true,
			Message: "Message sent successfully! I'll get back to you soon.",
		})
	}))
	defer srv.Close()

	form := newForm(t, srv)
	assert.Equal(t, contactclient.StateIdle, form.State())
	_, ok := form.Result()
	assert.False(t, ok)

	res, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Message sent successfully! I'll get back to you soon.", res.Message)
	assert.Equal(t, contactclient.StateSucceeded, form.State())
	assert.False(t, form.Pending())
	assert.Equal(t, contactclient.Submission{Name: "Ada", Email: "ada@x.com", Subject: "Hi", Message: "Hello\nWorld"}, got)

	latest, ok := form.Result()
	assert.True(t, ok)
	assert.Equal(t, res, latest)
}

func TestForm_ServerRejection(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeResult(w, http.StatusBadRequest, contactclient.Result{Message: "Please fill in all fields."})
	}))
	defer srv.Close()

	form := newForm(t, srv)
	form.Name = ""

	res, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Please fill in all fields.", res.Message)
	assert.Equal(t, contactclient.StateFailed, form.State())
}

func TestForm_OnlyLatestResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			writeResult(w, http.StatusBadGateway, contactclient.Result{Message: "Failed to send message. Please try again."})
			return
		}
		writeResult(w, http.StatusOK, contactclient.Result{Success: true, Message: "Message sent successfully! I'll get back to you soon."})
	}))
	defer srv.Close()

	form := newForm(t, srv)

	_, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contactclient.StateFailed, form.State())

	_, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contactclient.StateSucceeded, form.State())

	latest, ok := form.Result()
	require.True(t, ok)
	assert.True(t, latest.Success)
	assert.EqualValues(t, 2, calls.Load())
}

func TestForm_PendingGate(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		close(arrived)
		<-release
		writeResult(w, http.StatusOK, contactclient.Result{Success: true, Message: "Message sent successfully! I'll get back to you soon."})
	}))
	defer srv.Close()

	form := newForm(t, srv)

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the server")
	}

	assert.True(t, form.Pending())
	assert.Equal(t, contactclient.StatePending, form.State())

	_, err := form.Submit(context.Background())
	assert.ErrorIs(t, err, contactclient.ErrSubmissionPending)

	close(release)
	require.NoError(t, <-done)

	assert.False(t, form.Pending())
	assert.Equal(t, contactclient.StateSucceeded, form.State())
	assert.EqualValues(t, 1, calls.Load())
}

func TestForm_TransportFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	form := newForm(t, srv)
	srv.Close()

	res, err := form.Submit(context.Background())
	assert.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to send message. Please try again.", res.Message)
	assert.Equal(t, contactclient.StateFailed, form.State())
}

func TestForm_UnexpectedResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	form := newForm(t, srv)

	res, err := form.Submit(context.Background())
	assert.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to send message. Please try again.", res.Message)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", contactclient.StateIdle.String())
	assert.Equal(t, "pending", contactclient.StatePending.String())
	assert.Equal(t, "succeeded", contactclient.StateSucceeded.String())
	assert.Equal(t, "failed", contactclient.StateFailed.String())
}
