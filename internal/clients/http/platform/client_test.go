package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	_, err = NewClient("/relative")
	require.Error(t, err)
}

func TestListBreeds_DecodesNumericAndStringIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/breeds", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"id":7,"name":"Poodle","animal_type":"dog","personality_traits":["smart"]},{"id":"b-2","name":"Siamese","animal_type":"cat"}]`)
	}, WithAPIKey("service-key"))

	breeds, err := client.ListBreeds(context.Background())
	require.NoError(t, err)
	require.Len(t, breeds, 2)
	require.Equal(t, FlexibleID("7"), breeds[0].ID)
	require.Equal(t, []string{"smart"}, breeds[0].PersonalityTraits)
	require.Equal(t, FlexibleID("b-2"), breeds[1].ID)
}

func TestBreedCoats_SendsBreedQueryAndReadsNestedCoat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/breed-coats", r.URL.Path)
		assert.Equal(t, "poodle 1", r.URL.Query().Get("breed_id"))
		_, _ = io.WriteString(w, `[{"breed_id":1,"coat_id":2,"coats":{"id":2,"name":"Black"}},{"breed_id":1,"coat_id":3,"coat":{"id":3,"name":"Cream"}},{"breed_id":1,"coat_id":4}]`)
	})

	rows, err := client.BreedCoats(context.Background(), "poodle 1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Black", rows[0].Nested().Name)
	require.Equal(t, "Cream", rows[1].Nested().Name)
	require.Nil(t, rows[2].Nested())
}

func TestCredits_ForwardsCustomerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer customer", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"credits":{"remaining":4}}`)
	}, WithAPIKey("service-key"))

	resp, err := client.Credits(context.Background(), "customer")
	require.NoError(t, err)
	require.Equal(t, 4, resp.Credits.Remaining)
}

func TestGenerateVariations_APIErrorCarriesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body GenerateVariationsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "img-1", body.OriginalImageID)
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"error":"Not enough credits"}`)
	})

	_, err := client.GenerateVariations(context.Background(), "customer", GenerateVariationsRequest{OriginalImageID: "img-1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	require.Equal(t, "Not enough credits", apiErr.Message)
}

func TestGenerateVariations_DecodeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":`)
	})

	_, err := client.GenerateVariations(context.Background(), "customer", GenerateVariationsRequest{})
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestDescribeImage_SendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate-description/file", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Poodle", r.FormValue("breed"))
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte{1, 2, 3}, data)
		assert.Equal(t, "v1.jpg", header.Filename)
		_, _ = io.WriteString(w, `{"description":"A curly poodle"}`)
	})

	desc, err := client.DescribeImage(context.Background(), []byte{1, 2, 3}, "v1.jpg", "Poodle")
	require.NoError(t, err)
	require.Equal(t, "A curly poodle", desc)
}

func TestUpdateGeneratedImageDescription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/customers/generated-images/v-9/description", r.URL.Path)
		var body DescriptionUpdate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "A curly poodle", body.Description)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.UpdateGeneratedImageDescription(context.Background(), "customer", "v-9", "A curly poodle"))
}

func TestRateLimitHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, WithRateLimit(0.001, 1))

	_, err := client.ListCoats(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.ListCoats(ctx)
	require.Error(t, err)
}

func TestGenerateVariations_UsesGenerationClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		if r.URL.Path == "/api/customers/generate-variations" {
			_, _ = io.WriteString(w, `{"success":true,"creditsRemaining":1,"variations":[]}`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL,
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
		WithGenerationHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	)
	require.NoError(t, err)

	_, err = client.ListCoats(context.Background())
	require.Error(t, err)

	resp, err := client.GenerateVariations(context.Background(), "customer", GenerateVariationsRequest{})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, 1, *resp.CreditsRemaining)
}
